package tenant

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
)

var (
	ErrTenant               = apperrors.New("tenant error").SetStatusCode(http.StatusInternalServerError)
	ErrIllegalTransition    = ErrTenant.New("illegal tenant lifecycle transition").SetStatusCode(http.StatusConflict).SetReason("illegal_transition")
	ErrInvalidLifecycle     = ErrTenant.New("invalid tenant lifecycle state").SetStatusCode(http.StatusBadRequest)
	ErrInvalidBillingStatus = ErrTenant.New("invalid billing status").SetStatusCode(http.StatusBadRequest)
	ErrInvalidTenant        = ErrTenant.New("invalid tenant").SetStatusCode(http.StatusBadRequest)
)
