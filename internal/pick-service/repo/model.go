package repo

import (
	"database/sql"
	"time"

	"github.com/radieske/pick-control/internal/pick"
)

// Scope restringe as consultas aos picks do dono; All libera tudo (admin)
type Scope struct {
	OwnerID string
	All     bool
}

// InformantCount é uma linha do quadro de informantes
type InformantCount struct {
	Informant string
	Total     int
}

// Changes são os campos editáveis de um pick; nil mantém o valor atual
type Changes struct {
	Outcome  *pick.Outcome
	PlacedAt *time.Time
}

// Empty indica que nada seria alterado
func (c Changes) Empty() bool { return c.Outcome == nil && c.PlacedAt == nil }

const pickColumns = `id, owner_id, description, informant, bet_type, bookmaker, outcome, stake, odds, placed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPick lê uma linha na ordem de pickColumns
func scanPick(row rowScanner) (pick.Pick, error) {
	var (
		p       pick.Pick
		betType string
		outcome string
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Description, &p.Informant, &betType, &p.Bookmaker,
		&outcome, &p.Stake, &p.Odds, &p.PlacedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return pick.Pick{}, err
	}
	p.BetType = pick.BetType(betType)
	p.Outcome = pick.FromStorage(outcome)
	return p, nil
}

func scanPicks(rows *sql.Rows) ([]pick.Pick, error) {
	defer rows.Close()
	out := make([]pick.Pick, 0)
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
