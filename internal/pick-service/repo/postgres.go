package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/radieske/pick-control/internal/pick"
	"github.com/radieske/pick-control/internal/shared/db"
	"github.com/radieske/pick-control/internal/shared/errs"
)

// Postgres implementa o armazenamento de picks
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de picks
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// scopeClause é usada com $1 = all, $2 = owner
const scopeClause = `($1::boolean OR owner_id = $2::uuid)`

// List retorna os picks do escopo em ordem de data
func (p *Postgres) List(ctx context.Context, s Scope) ([]pick.Pick, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+pickColumns+` FROM picks
		WHERE `+scopeClause+`
		ORDER BY placed_at, created_at, id`, s.All, ownerParam(s))
	if err != nil {
		return nil, db.MapError("list picks", err)
	}
	ps, err := scanPicks(rows)
	return ps, db.MapError("list picks", err)
}

// ListByInformant retorna os picks de um informante; lista vazia não é erro
func (p *Postgres) ListByInformant(ctx context.Context, s Scope, informant string) ([]pick.Pick, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+pickColumns+` FROM picks
		WHERE `+scopeClause+` AND informant = $3
		ORDER BY placed_at, created_at, id`, s.All, ownerParam(s), informant)
	if err != nil {
		return nil, db.MapError("list picks by informant", err)
	}
	ps, err := scanPicks(rows)
	return ps, db.MapError("list picks by informant", err)
}

// Get busca um pick pelo id dentro do escopo
func (p *Postgres) Get(ctx context.Context, s Scope, id string) (pick.Pick, error) {
	if _, err := uuid.Parse(id); err != nil {
		return pick.Pick{}, fmt.Errorf("get pick %q: %w", id, errs.ErrNotFound)
	}
	row := p.db.QueryRowContext(ctx, `
		SELECT `+pickColumns+` FROM picks
		WHERE `+scopeClause+` AND id = $3`, s.All, ownerParam(s), id)
	out, err := scanPick(row)
	return out, db.MapError("get pick", err)
}

// Insert grava um pick novo; id e timestamps são definidos aqui
func (p *Postgres) Insert(ctx context.Context, in pick.Pick) (pick.Pick, error) {
	if err := in.Validate(); err != nil {
		return pick.Pick{}, err
	}
	in.ID = uuid.NewString()
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO picks (id, owner_id, description, informant, bet_type, bookmaker, outcome, stake, odds, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING `+pickColumns,
		in.ID, in.OwnerID, in.Description, in.Informant, string(in.BetType), in.Bookmaker,
		in.Outcome.Storage(), in.Stake, in.Odds, in.PlacedAt,
	)
	out, err := scanPick(row)
	return out, db.MapError("insert pick", err)
}

// Update aplica resultado e/ou data numa única instrução
func (p *Postgres) Update(ctx context.Context, s Scope, id string, c Changes) (pick.Pick, error) {
	if _, err := uuid.Parse(id); err != nil {
		return pick.Pick{}, fmt.Errorf("update pick %q: %w", id, errs.ErrNotFound)
	}
	if c.Empty() {
		return pick.Pick{}, errs.Invalid("Acierto", "nothing to update")
	}
	var (
		outcome  any
		placedAt any
	)
	if c.Outcome != nil {
		outcome = c.Outcome.Storage()
	}
	if c.PlacedAt != nil {
		placedAt = *c.PlacedAt
	}
	row := p.db.QueryRowContext(ctx, `
		UPDATE picks SET
			outcome    = COALESCE($4::text, outcome),
			placed_at  = COALESCE($5::timestamptz, placed_at),
			updated_at = NOW()
		WHERE `+scopeClause+` AND id = $3
		RETURNING `+pickColumns, s.All, ownerParam(s), id, outcome, placedAt)
	out, err := scanPick(row)
	return out, db.MapError("update pick", err)
}

// Delete remove o pick e devolve o registro apagado
func (p *Postgres) Delete(ctx context.Context, s Scope, id string) (pick.Pick, error) {
	if _, err := uuid.Parse(id); err != nil {
		return pick.Pick{}, fmt.Errorf("delete pick %q: %w", id, errs.ErrNotFound)
	}
	row := p.db.QueryRowContext(ctx, `
		DELETE FROM picks
		WHERE `+scopeClause+` AND id = $3
		RETURNING `+pickColumns, s.All, ownerParam(s), id)
	out, err := scanPick(row)
	return out, db.MapError("delete pick", err)
}

// Informants lista os informantes distintos com a contagem de picks
func (p *Postgres) Informants(ctx context.Context, s Scope) ([]InformantCount, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT informant, COUNT(*) FROM picks
		WHERE `+scopeClause+`
		GROUP BY informant
		ORDER BY informant`, s.All, ownerParam(s))
	if err != nil {
		return nil, db.MapError("list informants", err)
	}
	defer rows.Close()

	out := make([]InformantCount, 0)
	for rows.Next() {
		var ic InformantCount
		if err := rows.Scan(&ic.Informant, &ic.Total); err != nil {
			return nil, db.MapError("list informants", err)
		}
		out = append(out, ic)
	}
	return out, db.MapError("list informants", rows.Err())
}

// ownerParam evita cast de string vazia para uuid quando All está ligado
func ownerParam(s Scope) any {
	if s.OwnerID == "" {
		return nil
	}
	return s.OwnerID
}
