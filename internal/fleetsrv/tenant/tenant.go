// Package tenant holds the tenant aggregate: its lifecycle, its billing
// state and the rules that move them.
package tenant

import (
	"strings"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
)

// Tenant is the aggregate root for a customer organization.
type Tenant struct {
	ID                    tenancy.TenantID `db:"id" json:"id"`
	Name                  string           `db:"name" json:"name"`
	Email                 *string          `db:"email" json:"email,omitempty"`
	Phone                 *string          `db:"phone" json:"phone,omitempty"`
	IndustryID            *int             `db:"industry_id" json:"industryId,omitempty"`
	Lifecycle             Lifecycle        `db:"lifecycle" json:"lifecycle"`
	BillingStatus         BillingStatus    `db:"billing_status" json:"billingStatus"`
	BillingCustomerID     *string          `db:"billing_customer_id" json:"-"`
	SubscriptionID        *string          `db:"subscription_id" json:"-"`
	PriceID               *string          `db:"price_id" json:"priceId,omitempty"`
	PlanKey               *string          `db:"plan_key" json:"planKey,omitempty"`
	TrialEndsAt           *time.Time       `db:"trial_ends_at" json:"trialEndsAt,omitempty"`
	CurrentPeriodEnd      *time.Time       `db:"current_period_end" json:"currentPeriodEnd,omitempty"`
	OnboardingCompletedAt *time.Time       `db:"onboarding_completed_at" json:"onboardingCompletedAt,omitempty"`
	SuspendedAt           *time.Time       `db:"suspended_at" json:"suspendedAt,omitempty"`
	SuspensionReason      *string          `db:"suspension_reason" json:"suspensionReason,omitempty"`
	DeactivatedAt         *time.Time       `db:"deactivated_at" json:"deactivatedAt,omitempty"`
	LastActivityAt        *time.Time       `db:"last_activity_at" json:"lastActivityAt,omitempty"`
	Notes                 *string          `db:"notes" json:"-"`
	CreatedAt             time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time        `db:"updated_at" json:"updatedAt"`
}

// New returns a pending tenant with no billing.
func New(name string, email string, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTenant.Msg("tenant name is required")
	}
	t := &Tenant{
		ID:            tenancy.NewTenantID(),
		Name:          name,
		Lifecycle:     Pending,
		BillingStatus: BillingInactive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if email = strings.TrimSpace(email); email != "" {
		t.Email = &email
	}
	return t, nil
}

func (t *Tenant) transition(to Lifecycle, now time.Time) error {
	if !t.Lifecycle.CanTransitionTo(to) {
		return ErrIllegalTransition.Msg("cannot move tenant from " + string(t.Lifecycle) + " to " + string(to))
	}
	t.Lifecycle = to
	t.UpdatedAt = now
	return nil
}

// CompleteOnboarding activates a pending tenant. It is a no-op for a tenant
// that already completed onboarding.
func (t *Tenant) CompleteOnboarding(now time.Time) error {
	if t.Lifecycle != Pending {
		if t.OnboardingCompletedAt != nil {
			return nil
		}
		return ErrIllegalTransition.Msg("onboarding can only be completed for a pending tenant")
	}
	if err := t.transition(Active, now); err != nil {
		return err
	}
	if t.OnboardingCompletedAt == nil {
		t.OnboardingCompletedAt = &now
	}
	return nil
}

func (t *Tenant) Suspend(reason string, now time.Time) error {
	if err := t.transition(Suspended, now); err != nil {
		return err
	}
	t.SuspendedAt = &now
	if reason = strings.TrimSpace(reason); reason != "" {
		t.SuspensionReason = &reason
	}
	return nil
}

func (t *Tenant) Reinstate(now time.Time) error {
	if err := t.transition(Active, now); err != nil {
		return err
	}
	t.SuspendedAt = nil
	t.SuspensionReason = nil
	t.DeactivatedAt = nil
	return nil
}

func (t *Tenant) Close(now time.Time) error {
	if err := t.transition(Closed, now); err != nil {
		return err
	}
	t.DeactivatedAt = &now
	return nil
}

// IsBlocked reports whether the tenant may not be served at all.
func (t *Tenant) IsBlocked() bool {
	return t.Lifecycle == Suspended || t.Lifecycle == Closed || t.DeactivatedAt != nil
}

// CanMutate reports whether billing allows state changing requests at now.
// A trial without an end date is treated as open.
func (t *Tenant) CanMutate(now time.Time) bool {
	switch t.BillingStatus {
	case BillingActive:
		return true
	case BillingTrialing:
		return t.TrialEndsAt == nil || t.TrialEndsAt.After(now)
	}
	return false
}

// CheckoutCompleted is the outcome of a successful checkout with the payment provider.
type CheckoutCompleted struct {
	CustomerID     string
	SubscriptionID string
}

// ApplyCheckoutCompleted records the subscription and, for a pending tenant,
// completes onboarding.
func (t *Tenant) ApplyCheckoutCompleted(c CheckoutCompleted, now time.Time) error {
	if c.SubscriptionID != "" {
		t.SubscriptionID = &c.SubscriptionID
	}
	if c.CustomerID != "" && t.BillingCustomerID == nil {
		t.BillingCustomerID = &c.CustomerID
	}
	t.BillingStatus = BillingActive
	t.UpdatedAt = now
	if t.Lifecycle == Pending {
		return t.CompleteOnboarding(now)
	}
	return nil
}

// SubscriptionUpdate is a change of subscription state reported by the payment provider.
type SubscriptionUpdate struct {
	SubscriptionID   string
	Status           BillingStatus
	TrialEndsAt      *time.Time
	CurrentPeriodEnd *time.Time
	PriceID          string
}

// ApplySubscriptionUpdate mirrors the subscription state. A pending tenant
// whose subscription became active or trialing completes onboarding.
func (t *Tenant) ApplySubscriptionUpdate(u SubscriptionUpdate, now time.Time) error {
	if !u.Status.IsValid() {
		return ErrInvalidBillingStatus.Msg("unknown billing status: " + string(u.Status))
	}
	t.BillingStatus = u.Status
	t.TrialEndsAt = u.TrialEndsAt
	if u.CurrentPeriodEnd != nil {
		t.CurrentPeriodEnd = u.CurrentPeriodEnd
	}
	if u.PriceID != "" {
		t.PriceID = &u.PriceID
	}
	if u.SubscriptionID != "" {
		t.SubscriptionID = &u.SubscriptionID
	}
	t.UpdatedAt = now
	if t.Lifecycle == Pending && (u.Status == BillingActive || u.Status == BillingTrialing) {
		return t.CompleteOnboarding(now)
	}
	return nil
}

// Profile holds the tenant details its own users may change.
type Profile struct {
	Name       string
	Email      *string
	Phone      *string
	IndustryID *int
}

func (t *Tenant) UpdateProfile(p Profile, now time.Time) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrInvalidTenant.Msg("tenant name is required")
	}
	t.Name = name
	t.Email = p.Email
	t.Phone = p.Phone
	t.IndustryID = p.IndustryID
	t.UpdatedAt = now
	return nil
}

// Locator identifies the tenant a billing event refers to: by id when the
// event carries our reference, otherwise by the provider's customer id.
type Locator struct {
	TenantID   tenancy.TenantID
	CustomerID string
}

func (l Locator) IsZero() bool {
	return l.TenantID.IsNil() && l.CustomerID == ""
}
