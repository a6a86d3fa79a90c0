package repo

import "time"

// User é o usuário persistido na tabela users
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}
