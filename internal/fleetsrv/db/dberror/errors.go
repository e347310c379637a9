package dberror

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
	"github.com/jackc/pgconn"
)

var (
	ErrDatabase      apperrors.Error = apperrors.New("db error").SetStatusCode(http.StatusInternalServerError)
	ErrAlreadyExists apperrors.Error = ErrDatabase.New("already exists").SetStatusCode(http.StatusConflict)
	ErrNotFound      apperrors.Error = ErrDatabase.New("not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidInput  apperrors.Error = ErrDatabase.New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrUnavailable   apperrors.Error = ErrDatabase.New("database unavailable").SetStatusCode(http.StatusServiceUnavailable)
)

// Postgres error codes the stores act on.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Map converts a driver error into the dberror hierarchy. Errors that are
// already application errors are returned unchanged.
func Map(err error) error {
	if err == nil {
		return nil
	}
	var appErr apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable.Err(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrAlreadyExists.Err(err)
		case pgForeignKeyViolation:
			return ErrInvalidInput.Msg("referenced record does not exist").Err(err)
		case pgCheckViolation:
			return ErrInvalidInput.Err(err)
		}
	}
	return ErrDatabase.Err(err)
}
