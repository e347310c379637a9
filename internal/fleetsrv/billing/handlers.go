package billing

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/rs/zerolog/log"
)

const maxWebhookBody = 1 << 20

type TenantReader interface {
	GetTenant(ctx context.Context, id tenancy.TenantID) (*tenant.Tenant, error)
}

type Handler struct {
	processor *Processor
	tenants   TenantReader
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewHandler(p *Processor, tenants TenantReader, webhookSecret string, tolerance time.Duration) *Handler {
	return &Handler{
		processor: p,
		tenants:   tenants,
		secret:    webhookSecret,
		tolerance: tolerance,
		now:       time.Now,
	}
}

type webhookRsp struct {
	Received bool    `json:"received"`
	Outcome  Outcome `json:"outcome"`
}

// webhook acknowledges every event it could read and verify, including
// duplicates and events for unknown tenants. Only storage failures are
// reported as errors so that the provider redelivers.
func (h *Handler) webhook(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return nil, httpx.ErrUnableToReadRequest()
	}
	if err := VerifySignature(payload, r.Header.Get(SignatureHeader), h.secret, h.tolerance, h.now()); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("rejected billing webhook")
		return nil, err
	}
	ev, err := ParseEvent(payload)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("unreadable billing webhook")
		return nil, err
	}
	outcome, err := h.processor.Process(ctx, ev)
	if err != nil {
		return nil, ErrBilling.Err(err)
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   webhookRsp{Received: true, Outcome: outcome},
	}, nil
}

type statusRsp struct {
	Lifecycle           tenant.Lifecycle     `json:"lifecycle"`
	BillingStatus       tenant.BillingStatus `json:"billingStatus"`
	TrialEndsAt         *time.Time           `json:"trialEndsAt,omitempty"`
	CurrentPeriodEnd    *time.Time           `json:"currentPeriodEnd,omitempty"`
	PriceID             *string              `json:"priceId,omitempty"`
	HasSubscription     bool                 `json:"hasSubscription"`
	CanMutate           bool                 `json:"canMutate"`
	OnboardingCompleted bool                 `json:"onboardingCompleted"`
}

func (h *Handler) status(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	id, _ := scope.TenantID()
	t, err := h.tenants.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: statusRsp{
			Lifecycle:           t.Lifecycle,
			BillingStatus:       t.BillingStatus,
			TrialEndsAt:         t.TrialEndsAt,
			CurrentPeriodEnd:    t.CurrentPeriodEnd,
			PriceID:             t.PriceID,
			HasSubscription:     t.SubscriptionID != nil,
			CanMutate:           t.CanMutate(h.now()),
			OnboardingCompleted: t.OnboardingCompletedAt != nil,
		},
	}, nil
}
