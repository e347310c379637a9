// Package gate decides, before any business handler runs, whether the tenant
// of a request may proceed.
package gate

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/auth"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/metrics"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/rs/zerolog/log"
)

type TenantReader interface {
	GetTenant(ctx context.Context, id tenancy.TenantID) (*tenant.Tenant, error)
}

type ActivityRecorder interface {
	Touch(id tenancy.TenantID)
}

// Resolver produces the request context from an incoming request's context.
type Resolver func(ctx context.Context) (tenancy.RequestContext, error)

type Gate struct {
	tenants  TenantReader
	activity ActivityRecorder
	resolve  Resolver
	policy   Policy
	now      func() time.Time
	metrics  *metrics.Metrics
}

type Option func(*Gate)

func WithPolicy(p Policy) Option { return func(g *Gate) { g.policy = p } }

func WithClock(now func() time.Time) Option { return func(g *Gate) { g.now = now } }

func WithMetrics(m *metrics.Metrics) Option { return func(g *Gate) { g.metrics = m } }

func WithResolver(r Resolver) Option { return func(g *Gate) { g.resolve = r } }

func New(tenants TenantReader, activity ActivityRecorder, opts ...Option) *Gate {
	g := &Gate{
		tenants:  tenants,
		activity: activity,
		resolve:  auth.Resolve,
		policy:   DefaultPolicy,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate applies the tenant state checks to a request, in priority order:
// administrative blocks, then onboarding, then billing for mutations.
// It returns nil when the request may proceed.
func Evaluate(t *tenant.Tenant, method, path string, policy Policy, now time.Time) apperrors.Error {
	switch {
	case t.Lifecycle == tenant.Closed:
		return ErrTenantClosed
	case t.IsBlocked():
		return ErrTenantSuspended
	}
	if t.Lifecycle == tenant.Pending && !policy.IsOnboarding(path) {
		return ErrOnboardingRequired
	}
	if isMutating(method) && !policy.IsBilling(path) && !t.CanMutate(now) {
		return ErrBillingInactive
	}
	return nil
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if r.Method == http.MethodOptions || g.policy.IsPublic(path) {
			g.metrics.GateDecision("public")
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		rc, err := g.resolve(ctx)
		if err != nil {
			log.Ctx(ctx).Info().Err(err).Msg("request without valid tenant context")
			g.reject(w, tenancy.ErrMissingTenantContext, "unresolved")
			return
		}
		if !rc.Authenticated {
			g.metrics.GateDecision("anonymous")
			next.ServeHTTP(w, r)
			return
		}

		t, err := g.tenants.GetTenant(ctx, rc.TenantID)
		if err != nil {
			if errors.Is(err, dberror.ErrNotFound) {
				log.Ctx(ctx).Warn().Str("tenant_id", rc.TenantID.String()).Msg("token names unknown tenant")
				g.reject(w, ErrTenantNotFound, ErrTenantNotFound.Reason())
				return
			}
			log.Ctx(ctx).Error().Err(err).Str("tenant_id", rc.TenantID.String()).Msg("failed to load tenant")
			g.reject(w, ErrTenantUnavailable, "unavailable")
			return
		}

		if blocked := Evaluate(t, r.Method, path, g.policy, g.now()); blocked != nil {
			log.Ctx(ctx).Info().Str("tenant_id", t.ID.String()).Str("reason", blocked.Reason()).Msg("request blocked")
			g.reject(w, blocked, blocked.Reason())
			return
		}

		g.metrics.GateDecision("allowed")
		ctx = tenancy.WithRequestContext(ctx, rc)
		ctx = log.Ctx(ctx).With().Str("tenant_id", rc.TenantID.String()).Logger().WithContext(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))

		if g.activity != nil {
			g.activity.Touch(rc.TenantID)
		}
	})
}

func (g *Gate) reject(w http.ResponseWriter, err apperrors.Error, outcome string) {
	g.metrics.GateDecision(outcome)
	httpx.SendError(w, err)
}
