// Package tenancy carries the tenant identity of a unit of work: the
// resolved RequestContext of an HTTP request and the Scope handed to the
// persistence layer.
package tenancy

import (
	"context"
)

type ctxKeyType string

const ctxRequestContextKey ctxKeyType = "FleetRequestContext"

// RequestContext is the identity resolved for a single request. It is built
// once per request and never shared between requests.
type RequestContext struct {
	TenantID      TenantID
	UserID        string
	Authenticated bool
}

// Anonymous is the context of a request without credentials.
var Anonymous = RequestContext{}

// Scope returns the tenant scope for the request.
func (rc RequestContext) Scope() (Scope, error) {
	if !rc.Authenticated {
		return Scope{}, ErrMissingTenantContext
	}
	return ForTenant(rc.TenantID)
}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, ctxRequestContextKey, rc)
}

func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(ctxRequestContextKey).(RequestContext)
	return rc, ok
}

// ScopeFromContext returns the tenant scope of the request in ctx.
func ScopeFromContext(ctx context.Context) (Scope, error) {
	rc, ok := FromContext(ctx)
	if !ok {
		return Scope{}, ErrMissingTenantContext
	}
	return rc.Scope()
}
