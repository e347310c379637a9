package dberror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	assert.NoError(t, Map(nil))
	assert.ErrorIs(t, Map(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, Map(fmt.Errorf("get: %w", sql.ErrNoRows)), ErrNotFound)
	assert.ErrorIs(t, Map(&pgconn.PgError{Code: "23505"}), ErrAlreadyExists)
	assert.ErrorIs(t, Map(&pgconn.PgError{Code: "23503"}), ErrInvalidInput)
	assert.ErrorIs(t, Map(context.DeadlineExceeded), ErrUnavailable)

	other := errors.New("connection reset")
	mapped := Map(other)
	assert.ErrorIs(t, mapped, ErrDatabase)
	assert.ErrorIs(t, mapped, other)

	already := ErrNotFound.Msg("equipment not found")
	assert.Equal(t, already, Map(already))

	var appErr interface{ StatusCode() int }
	assert.True(t, errors.As(Map(&pgconn.PgError{Code: "23505"}), &appErr))
	assert.Equal(t, http.StatusConflict, appErr.StatusCode())
}
