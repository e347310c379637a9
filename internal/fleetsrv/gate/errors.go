package gate

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
)

var (
	ErrGate = apperrors.New("tenant gate error").SetStatusCode(http.StatusForbidden)

	ErrTenantNotFound     = ErrGate.New("Tenant not found.").SetReason("tenant_not_found")
	ErrTenantSuspended    = ErrGate.New("Tenant is not active.").SetReason("tenant_suspended")
	ErrTenantClosed       = ErrGate.New("Tenant is not active.").SetReason("tenant_closed")
	ErrOnboardingRequired = ErrGate.New("Complete onboarding to continue.").SetReason("onboarding_required")
	ErrBillingInactive    = ErrGate.New("Billing inactive or trial expired. Please update payment.").SetReason("billing_inactive")
	ErrTenantUnavailable  = ErrGate.New("Unable to load tenant.").
				SetStatusCode(http.StatusServiceUnavailable).SetReason("tenant_unavailable")
)
