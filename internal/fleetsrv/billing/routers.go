package billing

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/auth"
	"github.com/go-chi/chi/v5"
)

// Router serves /api/billing. The webhook is called by the payment provider
// and carries no user credentials.
func (h *Handler) Router() chi.Router {
	router := chi.NewRouter()
	router.Method(http.MethodPost, "/webhook", httpx.WrapHttpRsp(h.webhook))

	tenantHandlers := []httpx.ResponseHandlerParam{
		{
			Method:  http.MethodGet,
			Path:    "/status",
			Handler: h.status,
		},
	}
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireTenant)
		for _, handler := range tenantHandlers {
			r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
		}
	})
	return router
}
