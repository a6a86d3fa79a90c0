package db

import (
	"context"
	"database/sql"
	"fmt"
)

// migration é um passo de schema aplicado uma única vez
type migration struct {
	version int
	stmt    string
}

// migrations em ordem; nunca altere uma versão já publicada, adicione outra
var migrations = []migration{
	{1, `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user','admin')),
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login    TIMESTAMPTZ
);`},
	{2, `
CREATE TABLE IF NOT EXISTS picks (
    id          UUID PRIMARY KEY,
    owner_id    UUID NOT NULL REFERENCES users(id),
    description TEXT NOT NULL,
    informant   TEXT NOT NULL,
    bet_type    TEXT NOT NULL DEFAULT '',
    bookmaker   TEXT NOT NULL,
    outcome     TEXT NOT NULL DEFAULT 'PENDING' CHECK (outcome IN ('PENDING','WON','LOST')),
    stake       NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (stake >= 0),
    odds        NUMERIC(10,3) NOT NULL DEFAULT 1 CHECK (odds >= 1),
    placed_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_picks_owner_informant ON picks(owner_id, informant);
CREATE INDEX IF NOT EXISTS idx_picks_owner_placed ON picks(owner_id, placed_at);`},
	// stake e odds sem escala fixa: o arredondamento só acontece na exibição
	{3, `
ALTER TABLE picks ALTER COLUMN stake TYPE NUMERIC;
ALTER TABLE picks ALTER COLUMN odds TYPE NUMERIC;`},
}

// Migrate aplica as migrações pendentes, cada uma na sua transação
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
		    version    INTEGER PRIMARY KEY,
		    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range pending(current) {
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}

// pending retorna as migrações com versão maior que current
func pending(current int) []migration {
	var out []migration
	for _, m := range migrations {
		if m.version > current {
			out = append(out, m)
		}
	}
	return out
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version(version) VALUES($1)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}
