package auth

import (
	"context"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
)

// Identity holds the claims of a verified bearer token.
type Identity struct {
	Subject     string
	TenantClaim string
	Email       string
	Role        string
}

type ctxKeyType string

const ctxIdentityKey ctxKeyType = "FleetIdentity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey).(Identity)
	return id, ok
}

// Resolve turns the verified identity in ctx into the request context of a
// tenant. A request without identity resolves to the anonymous context.
// An identity without a usable tenant claim is an error, never anonymous.
func Resolve(ctx context.Context) (tenancy.RequestContext, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return tenancy.Anonymous, nil
	}
	tenantID, err := tenancy.ParseTenantID(id.TenantClaim)
	if err != nil {
		return tenancy.Anonymous, tenancy.ErrMissingTenantContext
	}
	return tenancy.RequestContext{
		TenantID:      tenantID,
		UserID:        id.Subject,
		Authenticated: true,
	}, nil
}
