package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/radieske/pick-control/internal/shared/errs"
)

// Códigos SQLSTATE tratados explicitamente
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

// MapError traduz erros do driver para as categorias de errs.
// Sem linha vira ErrNotFound; violações de integridade viram ErrConflict/ErrValidation;
// o resto que não for do Postgres (rede, pool) é tratado como indisponibilidade.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, errs.ErrConflict, pqErr.Constraint)
		case codeForeignKeyViolation:
			return errs.Invalid("owner", "unknown owner")
		case codeCheckViolation:
			return errs.Invalid(pqErr.Column, "violates "+pqErr.Constraint)
		case codeInvalidText:
			return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		if pqErr.Code.Class() == "08" || pqErr.Code.Class() == "57" { // conexão / operador
			return errs.Unavailable(op, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return errs.Unavailable(op, err)
}
