package apis

import (
	"net/http"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/rs/zerolog/log"
)

type onboardingRsp struct {
	Lifecycle     tenant.Lifecycle     `json:"lifecycle"`
	BillingStatus tenant.BillingStatus `json:"billingStatus"`
	Completed     bool                 `json:"completed"`
	CompletedAt   *time.Time           `json:"completedAt,omitempty"`
	CanMutate     bool                 `json:"canMutate"`
}

func (a *API) onboardingView(t *tenant.Tenant) onboardingRsp {
	return onboardingRsp{
		Lifecycle:     t.Lifecycle,
		BillingStatus: t.BillingStatus,
		Completed:     t.OnboardingCompletedAt != nil,
		CompletedAt:   t.OnboardingCompletedAt,
		CanMutate:     t.CanMutate(a.now()),
	}
}

func (a *API) onboardingStatus(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := currentTenant(ctx)
	if err != nil {
		return nil, err
	}
	t, err := a.tenants.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: a.onboardingView(t)}, nil
}

// completeOnboarding activates a pending tenant. Repeating it after
// completion is accepted.
func (a *API) completeOnboarding(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := currentTenant(ctx)
	if err != nil {
		return nil, err
	}
	now := a.now().UTC()
	t, err := a.tenants.UpdateTenant(ctx, id, func(t *tenant.Tenant) error {
		return t.CompleteOnboarding(now)
	})
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("lifecycle", string(t.Lifecycle)).Msg("onboarding completed")
	return &httpx.Response{StatusCode: http.StatusOK, Response: a.onboardingView(t)}, nil
}
