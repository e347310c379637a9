package dbmanager

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, "pgx"), mock
}

func TestBeginScopedRejectsInvalidScope(t *testing.T) {
	p, mock := newMockPool(t)
	_, err := p.BeginScoped(context.Background(), tenancy.Scope{})
	assert.ErrorIs(t, err, tenancy.ErrMissingTenantContext)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxTenantScope(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	p, mock := newMockPool(t)
	id := tenancy.NewTenantID()
	scope, err := tenancy.ForTenant(id)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT set_config").WithArgs(ScopeCurrentTenant, id.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE equipment").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = p.WithTx(ctx, scope, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE equipment SET display_name = 'x'")
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	p, mock := newMockPool(t)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT set_config").WithArgs(ScopeBypassFilter, "on").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := p.WithTx(ctx, tenancy.Unscoped("test"), func(tx *sqlx.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	p, mock := newMockPool(t)
	scope, _ := tenancy.ForTenant(tenancy.NewTenantID())

	mock.ExpectBegin()
	mock.ExpectExec("SELECT set_config").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = p.WithTx(ctx, scope, func(tx *sqlx.Tx) error {
			panic("handler bug")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnscopedTransactionLogsReason(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).Level(zerolog.DebugLevel).WithContext(context.Background())
	p, mock := newMockPool(t)

	scope := tenancy.Unscoped("billing event checkout.session.completed")
	assert.Zero(t, buf.Len())

	mock.ExpectBegin()
	mock.ExpectExec("SELECT set_config").WithArgs(ScopeBypassFilter, "on").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, p.WithTx(ctx, scope, func(tx *sqlx.Tx) error { return nil }))

	assert.Contains(t, buf.String(), `"level":"debug"`)
	assert.Contains(t, buf.String(), "unscoped:billing event checkout.session.completed")
	assert.NoError(t, mock.ExpectationsWereMet())

	buf.Reset()
	quiet := zerolog.New(&buf).Level(zerolog.InfoLevel).WithContext(context.Background())
	mock.ExpectBegin()
	mock.ExpectExec("SELECT set_config").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, p.WithTx(quiet, scope, func(tx *sqlx.Tx) error { return nil }))
	assert.Zero(t, buf.Len())
}
