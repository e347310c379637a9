package tenancy

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
)

var (
	ErrTenancy = apperrors.New("tenancy error").SetStatusCode(http.StatusInternalServerError)
	// ErrMissingTenantContext is returned when tenant scoped work is attempted
	// without a resolved tenant.
	ErrMissingTenantContext = ErrTenancy.New("Missing or invalid tenant context.").
				SetStatusCode(http.StatusUnauthorized).SetReason("missing_tenant_context")
	ErrTenantMismatch = ErrTenancy.New("record belongs to another tenant").
				SetStatusCode(http.StatusForbidden).SetReason("tenant_mismatch")
	ErrMissingOwner = ErrTenancy.New("unscoped write requires an explicit owning tenant")
)
