package repository

import (
	"errors"

	"inplayrs/backoffice/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
)

// Errors returned by the repositories. They are the models sentinels so
// callers outside this package can match them without importing pgx.
var (
	ErrNotFound  = models.ErrNotFound
	ErrDuplicate = models.ErrDuplicate
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
