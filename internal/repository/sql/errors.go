package sql

import (
	"errors"

	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgreSQL error codes. See https://www.postgresql.org/docs/16/errcodes-appendix.html
const (
	pgUniqueViolationErrCode     = "23505"
	pgForeignKeyViolationErrCode = "23503"
)

// translateError maps constraint violations raised by either driver to repository errors.
// Other errors are returned unchanged.
func translateError(err error) error {
	var code, constraint, detail string

	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code, constraint, detail = pgErr.Code, pgErr.ConstraintName, pgErr.Detail
	case errors.As(err, &pqErr):
		code, constraint, detail = string(pqErr.Code), pqErr.Constraint, pqErr.Detail
	default:
		return err
	}

	switch code {
	case pgUniqueViolationErrCode:
		return &repository.UniqueConstraintError{Detail: detail}
	case pgForeignKeyViolationErrCode:
		return &repository.ForeignKeyError{Constraint: constraint, Detail: detail}
	default:
		return err
	}
}
