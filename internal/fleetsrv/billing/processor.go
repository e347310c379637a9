package billing

import (
	"context"
	"errors"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/metrics"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/rs/zerolog/log"
)

// Store applies a billing event to a tenant exactly once. It reports false
// when eventID was applied before.
type Store interface {
	ApplyBillingEvent(ctx context.Context, eventID, eventType string, loc tenant.Locator, mutate func(*tenant.Tenant) error) (bool, error)
}

type Outcome string

const (
	OutcomeApplied        Outcome = "applied"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeIgnored        Outcome = "ignored"
	OutcomeTenantNotFound Outcome = "tenant_not_found"
	// OutcomeConflict marks an event whose billing ids already belong to
	// another tenant. Redelivery cannot succeed, so it is acknowledged.
	OutcomeConflict Outcome = "conflict"
)

type Processor struct {
	store   Store
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewProcessor(store Store, m *metrics.Metrics) *Processor {
	return &Processor{store: store, metrics: m, now: time.Now}
}

// Process applies ev. Only storage failures are returned as errors; every
// other outcome is final and safe to acknowledge.
func (p *Processor) Process(ctx context.Context, ev *Event) (Outcome, error) {
	outcome, err := p.process(ctx, ev)
	if err != nil {
		p.metrics.BillingEvent(ev.Type, "error")
		return outcome, err
	}
	p.metrics.BillingEvent(ev.Type, string(outcome))
	return outcome, nil
}

func (p *Processor) process(ctx context.Context, ev *Event) (Outcome, error) {
	logger := log.Ctx(ctx).With().Str("event_id", ev.ID).Str("event_type", ev.Type).Logger()

	mutate := p.mutation(ctx, ev)
	if mutate == nil {
		logger.Debug().Msg("billing event ignored")
		return OutcomeIgnored, nil
	}
	loc := ev.Locator()
	if loc.IsZero() {
		logger.Warn().Msg("billing event names no tenant")
		return OutcomeTenantNotFound, nil
	}

	applied, err := p.store.ApplyBillingEvent(ctx, ev.ID, ev.Type, loc, mutate)
	switch {
	case errors.Is(err, dberror.ErrNotFound):
		logger.Warn().Str("customer_id", loc.CustomerID).Str("tenant_ref", ev.TenantRef).Msg("billing event for unknown tenant")
		return OutcomeTenantNotFound, nil
	case errors.Is(err, dberror.ErrAlreadyExists):
		logger.Error().Err(err).Str("customer_id", ev.CustomerID).Str("subscription_id", ev.SubscriptionID).
			Msg("billing ids of event belong to another tenant")
		return OutcomeConflict, nil
	case err != nil:
		logger.Error().Err(err).Msg("failed to apply billing event")
		return "", err
	case !applied:
		return OutcomeDuplicate, nil
	}
	logger.Info().Msg("billing event applied")
	return OutcomeApplied, nil
}

// mutation returns the change ev makes to a tenant, or nil for events that
// do not concern tenants.
func (p *Processor) mutation(ctx context.Context, ev *Event) func(*tenant.Tenant) error {
	now := p.now()
	switch ev.Type {
	case EventCheckoutCompleted:
		c := tenant.CheckoutCompleted{CustomerID: ev.CustomerID, SubscriptionID: ev.SubscriptionID}
		return func(t *tenant.Tenant) error {
			return t.ApplyCheckoutCompleted(c, now)
		}
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		status := tenant.BillingCanceled
		if ev.Type != EventSubscriptionDeleted || ev.Status != "" {
			parsed, err := tenant.ParseBillingStatus(ev.Status)
			if err != nil {
				log.Ctx(ctx).Warn().Str("event_id", ev.ID).Str("status", ev.Status).Msg("unknown subscription status, treating as inactive")
				parsed = tenant.BillingInactive
			}
			status = parsed
		}
		u := tenant.SubscriptionUpdate{
			SubscriptionID:   ev.SubscriptionID,
			Status:           status,
			TrialEndsAt:      ev.TrialEnd,
			CurrentPeriodEnd: ev.CurrentPeriodEnd,
			PriceID:          ev.PriceID,
		}
		return func(t *tenant.Tenant) error {
			return t.ApplySubscriptionUpdate(u, now)
		}
	}
	return nil
}
