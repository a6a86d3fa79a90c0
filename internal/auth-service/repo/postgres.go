package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/radieske/pick-control/internal/shared/db"
	"github.com/radieske/pick-control/internal/shared/errs"
)

// Postgres implementa o armazenamento de usuários
type Postgres struct{ db *sql.DB }

func NewPostgres(conn *sql.DB) *Postgres { return &Postgres{db: conn} }

const userColumns = `id, name, email, password_hash, role, is_active, created_at, last_login`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var (
		u    User
		last sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt, &last); err != nil {
		return User{}, err
	}
	if last.Valid {
		t := last.Time
		u.LastLogin = &t
	}
	return u, nil
}

// NormalizeEmail é aplicado na gravação e na busca
func NormalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// Create insere um usuário; e-mail duplicado vira errs.ErrConflict
func (p *Postgres) Create(ctx context.Context, u User) (User, error) {
	u.ID = uuid.NewString()
	if u.Role == "" {
		u.Role = "user"
	}
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+userColumns,
		u.ID, strings.TrimSpace(u.Name), NormalizeEmail(u.Email), u.PasswordHash, u.Role)
	out, err := scanUser(row)
	return out, db.MapError("create user", err)
}

// ByEmail busca o usuário pelo e-mail normalizado
func (p *Postgres) ByEmail(ctx context.Context, email string) (User, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email))
	u, err := scanUser(row)
	return u, db.MapError("user by email", err)
}

// TouchLogin registra o último login com a linha do usuário travada; um usuário
// desativado depois do ByEmail recebe ErrUnauthorized
func (p *Postgres) TouchLogin(ctx context.Context, id string) (User, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, db.MapError("touch login", err)
	}
	defer tx.Rollback()

	var active bool
	if err = tx.QueryRowContext(ctx, `SELECT is_active FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&active); err != nil {
		return User{}, db.MapError("touch login", err)
	}
	if !active {
		return User{}, fmt.Errorf("touch login %s: user inactive: %w", id, errs.ErrUnauthorized)
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE users SET last_login = NOW() WHERE id = $1
		RETURNING `+userColumns, id)
	u, err := scanUser(row)
	if err != nil {
		return User{}, db.MapError("touch login", err)
	}

	if err = tx.Commit(); err != nil {
		return User{}, db.MapError("touch login", err)
	}
	return u, nil
}
