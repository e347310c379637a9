package postgresql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dbmanager"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tenantColumnNames = []string{
	"id", "name", "email", "phone", "industry_id", "lifecycle", "billing_status",
	"billing_customer_id", "subscription_id", "price_id", "plan_key", "trial_ends_at", "current_period_end",
	"onboarding_completed_at", "suspended_at", "suspension_reason", "deactivated_at", "last_activity_at",
	"notes", "created_at", "updated_at",
}

func tenantRow(t *tenant.Tenant) *sqlmock.Rows {
	return sqlmock.NewRows(tenantColumnNames).AddRow(
		t.ID.String(), t.Name, nil, nil, nil, string(t.Lifecycle), string(t.BillingStatus),
		nil, nil, nil, nil, nil, nil,
		nil, nil, nil, nil, nil,
		nil, t.CreatedAt, t.UpdatedAt,
	)
}

func newMockStore(t *testing.T) (context.Context, *Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return log.Logger.WithContext(context.Background()), NewStore(dbmanager.New(db, "pgx")), mock
}

func TestSessionRequiresScope(t *testing.T) {
	_, store, mock := newMockStore(t)
	_, err := store.Session(tenancy.Scope{})
	assert.ErrorIs(t, err, tenancy.ErrMissingTenantContext)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionCreateStampsTenant(t *testing.T) {
	ctx, store, mock := newMockStore(t)
	tid := tenancy.NewTenantID()
	scope, err := tenancy.ForTenant(tid)
	require.NoError(t, err)
	sess, err := store.Session(scope)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT set_config").WithArgs(dbmanager.ScopeCurrentTenant, tid.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO equipment").
		WithArgs(sqlmock.AnyArg(), nil, nil, sqlmock.AnyArg(), nil, nil, models.EquipmentInService, tid.String(), "T-100", sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e := &models.Equipment{UnitNumber: "T-100", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	err = sess.Tx(ctx, func(tx *Tx) error {
		return tx.Equipment().Insert(ctx, e)
	})
	require.NoError(t, err)
	assert.Equal(t, tid, e.TenantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterTenantIsAtomic(t *testing.T) {
	ctx, store, mock := newMockStore(t)
	tn, err := tenant.New("Acme", "ops@acme.test", time.Now())
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "Owner@Acme.test", PasswordHash: "h", FullName: "Owner", Role: models.RoleAdmin, CreatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectExec("SELECT set_config").WithArgs(dbmanager.ScopeBypassFilter, "on").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tenants").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID.String(), tn.ID.String(), "owner@acme.test", "h", "Owner", models.RoleAdmin, sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err = store.RegisterTenant(ctx, tn, user)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)
	assert.Equal(t, tn.ID, user.TenantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterTenantCommits(t *testing.T) {
	ctx, store, mock := newMockStore(t)
	tn, err := tenant.New("Acme", "", time.Now())
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "a@b.test", Role: models.RoleAdmin}

	mock.ExpectBegin()
	mock.ExpectExec("SELECT set_config").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tenants").
		WithArgs(tn.ID.String(), "Acme", nil, nil, nil, "pending", "inactive", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.RegisterTenant(ctx, tn, user))
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.ErrorIs(t, store.RegisterTenant(ctx, tn, &models.User{TenantID: tenancy.NewTenantID()}), tenancy.ErrTenantMismatch)
}

func TestGetTenant(t *testing.T) {
	ctx, store, mock := newMockStore(t)
	tn, _ := tenant.New("Acme", "", time.Now())

	mock.ExpectQuery("FROM tenants WHERE id = \\$1").WithArgs(tn.ID.String()).WillReturnRows(tenantRow(tn))
	got, err := store.GetTenant(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, tn.ID, got.ID)
	assert.Equal(t, tenant.Pending, got.Lifecycle)
	assert.Equal(t, tenant.BillingInactive, got.BillingStatus)

	mock.ExpectQuery("FROM tenants WHERE id = \\$1").WillReturnRows(sqlmock.NewRows(tenantColumnNames))
	_, err = store.GetTenant(ctx, tenancy.NewTenantID())
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	mock.ExpectQuery("FROM tenants WHERE id = \\$1").WillReturnError(errors.New("connection refused"))
	_, err = store.GetTenant(ctx, tenancy.NewTenantID())
	assert.ErrorIs(t, err, dberror.ErrDatabase)
	assert.NotErrorIs(t, err, dberror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyBillingEvent(t *testing.T) {
	now := time.Now()
	t.Run("applies once", func(t *testing.T) {
		ctx, store, mock := newMockStore(t)
		tn, _ := tenant.New("Acme", "", now)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT set_config").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM tenants WHERE id = \\$1 FOR UPDATE").WithArgs(tn.ID.String()).WillReturnRows(tenantRow(tn))
		mock.ExpectExec("INSERT INTO processed_billing_events").
			WithArgs("evt_1", "checkout.session.completed", tn.ID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE tenants SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		applied, err := store.ApplyBillingEvent(ctx, "evt_1", "checkout.session.completed", tenant.Locator{TenantID: tn.ID},
			func(t *tenant.Tenant) error {
				return t.ApplyCheckoutCompleted(tenant.CheckoutCompleted{SubscriptionID: "sub_1"}, now)
			})
		require.NoError(t, err)
		assert.True(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate is a no-op", func(t *testing.T) {
		ctx, store, mock := newMockStore(t)
		tn, _ := tenant.New("Acme", "", now)

		mock.ExpectBegin()
		mock.ExpectExec("SELECT set_config").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM tenants WHERE billing_customer_id = \\$1 FOR UPDATE").WithArgs("cus_9").WillReturnRows(tenantRow(tn))
		mock.ExpectExec("INSERT INTO processed_billing_events").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		called := false
		applied, err := store.ApplyBillingEvent(ctx, "evt_1", "customer.subscription.updated", tenant.Locator{CustomerID: "cus_9"},
			func(*tenant.Tenant) error { called = true; return nil })
		require.NoError(t, err)
		assert.False(t, applied)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown tenant", func(t *testing.T) {
		ctx, store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("SELECT set_config").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows(tenantColumnNames))
		mock.ExpectRollback()

		_, err := store.ApplyBillingEvent(ctx, "evt_2", "customer.subscription.updated", tenant.Locator{CustomerID: "cus_x"},
			func(*tenant.Tenant) error { return nil })
		assert.ErrorIs(t, err, dberror.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTouchActivity(t *testing.T) {
	ctx, store, mock := newMockStore(t)
	id := tenancy.NewTenantID()
	at := time.Now()
	mock.ExpectExec("UPDATE tenants SET last_activity_at").WithArgs(at, id.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, store.TouchActivity(ctx, id, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
