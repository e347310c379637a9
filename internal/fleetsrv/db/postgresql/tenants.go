package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// The tenants table is the registry of tenants itself and is not tenant
// owned, so it is read and written without a scope.

const tenantColumns = `id, name, email, phone, industry_id, lifecycle, billing_status,
	billing_customer_id, subscription_id, price_id, plan_key, trial_ends_at, current_period_end,
	onboarding_completed_at, suspended_at, suspension_reason, deactivated_at, last_activity_at,
	notes, created_at, updated_at`

var ErrTenantNotFound = dberror.ErrNotFound.Msg("tenant not found")

func (s *Store) GetTenant(ctx context.Context, id tenancy.TenantID) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := s.pool.DB().GetContext(ctx, &t, "SELECT "+tenantColumns+" FROM tenants WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		log.Ctx(ctx).Error().Err(err).Str("tenant_id", id.String()).Msg("failed to load tenant")
		return nil, dberror.Map(err)
	}
	return &t, nil
}

// ListTenants returns tenants, optionally only those in lifecycle.
func (s *Store) ListTenants(ctx context.Context, lifecycle tenant.Lifecycle) ([]tenant.Tenant, error) {
	query := "SELECT " + tenantColumns + " FROM tenants"
	var args []any
	if lifecycle != "" {
		query += " WHERE lifecycle = $1"
		args = append(args, lifecycle)
	}
	query += " ORDER BY created_at"
	tenants := []tenant.Tenant{}
	if err := s.pool.DB().SelectContext(ctx, &tenants, query, args...); err != nil {
		return nil, dberror.Map(err)
	}
	return tenants, nil
}

// RegisterTenant creates a tenant together with its first user. Either both
// rows are stored or neither is.
func (s *Store) RegisterTenant(ctx context.Context, t *tenant.Tenant, owner *models.User) error {
	if owner.TenantID.IsNil() {
		owner.TenantID = t.ID
	} else if owner.TenantID != t.ID {
		return tenancy.ErrTenantMismatch
	}
	return s.pool.WithTx(ctx, tenancy.Unscoped("tenant registration"), func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tenants (id, name, email, phone, industry_id, lifecycle, billing_status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.Name, t.Email, t.Phone, t.IndustryID, t.Lifecycle, t.BillingStatus, t.CreatedAt, t.UpdatedAt); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to insert tenant")
			return dberror.Map(err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, tenant_id, email, password_hash, full_name, role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			owner.ID, owner.TenantID, strings.ToLower(owner.Email), owner.PasswordHash, owner.FullName, owner.Role, owner.CreatedAt); err != nil {
			mapped := dberror.Map(err)
			if errors.Is(mapped, dberror.ErrAlreadyExists) {
				return dberror.ErrAlreadyExists.Msg("email is already registered")
			}
			log.Ctx(ctx).Error().Err(err).Msg("failed to insert user")
			return mapped
		}
		return nil
	})
}

// UpdateTenant locks the tenant, applies mutate and stores the result.
func (s *Store) UpdateTenant(ctx context.Context, id tenancy.TenantID, mutate func(*tenant.Tenant) error) (*tenant.Tenant, error) {
	var out *tenant.Tenant
	err := s.pool.WithTx(ctx, tenancy.Unscoped("tenant administration"), func(tx *sqlx.Tx) error {
		t, err := lockTenant(ctx, tx, tenant.Locator{TenantID: id})
		if err != nil {
			return err
		}
		if err := mutate(t); err != nil {
			return err
		}
		if err := saveTenant(ctx, tx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// ApplyBillingEvent records eventID and applies mutate to the tenant located
// by loc, in one transaction. It reports false when the event was recorded
// before, in which case nothing is changed.
func (s *Store) ApplyBillingEvent(ctx context.Context, eventID, eventType string, loc tenant.Locator, mutate func(*tenant.Tenant) error) (bool, error) {
	applied := false
	err := s.pool.WithTx(ctx, tenancy.Unscoped("billing event "+eventType), func(tx *sqlx.Tx) error {
		t, err := lockTenant(ctx, tx, loc)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO processed_billing_events (event_id, event_type, tenant_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (event_id) DO NOTHING`, eventID, eventType, t.ID)
		if err != nil {
			return dberror.Map(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return dberror.Map(err)
		} else if n == 0 {
			return errDuplicateEvent
		}
		if err := mutate(t); err != nil {
			return err
		}
		if err := saveTenant(ctx, tx, t); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if errors.Is(err, errDuplicateEvent) {
		log.Ctx(ctx).Info().Str("event_id", eventID).Msg("billing event already processed")
		return false, nil
	}
	return applied, err
}

var errDuplicateEvent = errors.New("duplicate billing event")

// TouchActivity moves last_activity_at forward to at.
func (s *Store) TouchActivity(ctx context.Context, id tenancy.TenantID, at time.Time) error {
	_, err := s.pool.DB().ExecContext(ctx, `
		UPDATE tenants SET last_activity_at = $1
		WHERE id = $2 AND (last_activity_at IS NULL OR last_activity_at < $1)`, at, id)
	return dberror.Map(err)
}

func lockTenant(ctx context.Context, tx *sqlx.Tx, loc tenant.Locator) (*tenant.Tenant, error) {
	var (
		query = "SELECT " + tenantColumns + " FROM tenants WHERE "
		arg   any
	)
	switch {
	case !loc.TenantID.IsNil():
		query += "id = $1"
		arg = loc.TenantID
	case loc.CustomerID != "":
		query += "billing_customer_id = $1"
		arg = loc.CustomerID
	default:
		return nil, ErrTenantNotFound
	}
	var t tenant.Tenant
	if err := tx.GetContext(ctx, &t, query+" FOR UPDATE", arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, dberror.Map(err)
	}
	return &t, nil
}

func saveTenant(ctx context.Context, tx *sqlx.Tx, t *tenant.Tenant) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tenants SET
			name = $2, email = $3, phone = $4, industry_id = $5, lifecycle = $6, billing_status = $7,
			billing_customer_id = $8, subscription_id = $9, price_id = $10, plan_key = $11,
			trial_ends_at = $12, current_period_end = $13, onboarding_completed_at = $14,
			suspended_at = $15, suspension_reason = $16, deactivated_at = $17, notes = $18, updated_at = $19
		WHERE id = $1`,
		t.ID, t.Name, t.Email, t.Phone, t.IndustryID, t.Lifecycle, t.BillingStatus,
		t.BillingCustomerID, t.SubscriptionID, t.PriceID, t.PlanKey,
		t.TrialEndsAt, t.CurrentPeriodEnd, t.OnboardingCompletedAt,
		t.SuspendedAt, t.SuspensionReason, t.DeactivatedAt, t.Notes, t.UpdatedAt)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("tenant_id", t.ID.String()).Msg("failed to save tenant")
		return dberror.Map(err)
	}
	return nil
}
