package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode     = "23505"
	pgCheckViolationCode   = "23514"
	pgNotNullViolationCode = "23502"
)

// ErrConstraint indicates a row violated a CHECK or NOT NULL constraint.
var ErrConstraint = errors.New("constraint violation")

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr and PostgreSQL unique violation (23505)
// to duplicateErr. CHECK and NOT NULL violations wrap ErrConstraint.
// Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateKeyCode:
			return duplicateErr
		case pgCheckViolationCode, pgNotNullViolationCode:
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
		}
	}

	return err
}
