package auth

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
)

// RequireTenant rejects requests that reach tenant scoped routes without a
// resolved tenant.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, ok := tenancy.FromContext(r.Context())
		if !ok || !rc.Authenticated {
			httpx.SendError(w, tenancy.ErrMissingTenantContext)
			return
		}
		next.ServeHTTP(w, r)
	})
}
