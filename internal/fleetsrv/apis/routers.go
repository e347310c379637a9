package apis

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/auth"
	"github.com/go-chi/chi/v5"
)

func (a *API) publicHandlers() []httpx.ResponseHandlerParam {
	return []httpx.ResponseHandlerParam{
		{
			Method:  http.MethodPost,
			Path:    "/auth/register",
			Handler: a.register,
		},
		{
			Method:  http.MethodPost,
			Path:    "/auth/login",
			Handler: a.login,
		},
		{
			Method:  http.MethodGet,
			Path:    "/auth/me",
			Handler: a.me,
		},
		{
			Method:  http.MethodGet,
			Path:    "/industries",
			Handler: a.listIndustries,
		},
		{
			Method:  http.MethodGet,
			Path:    "/fleetcategories",
			Handler: a.listFleetCategories,
		},
		{
			Method:  http.MethodGet,
			Path:    "/equipmenttypes",
			Handler: a.listEquipmentTypes,
		},
	}
}

func (a *API) tenantHandlers() []httpx.ResponseHandlerParam {
	return []httpx.ResponseHandlerParam{
		{
			Method:  http.MethodGet,
			Path:    "/onboarding/status",
			Handler: a.onboardingStatus,
		},
		{
			Method:  http.MethodPost,
			Path:    "/onboarding/complete",
			Handler: a.completeOnboarding,
		},
		{
			Method:  http.MethodGet,
			Path:    "/tenants/current",
			Handler: a.getCurrentTenant,
		},
		{
			Method:  http.MethodPut,
			Path:    "/tenants/current",
			Handler: a.updateCurrentTenant,
		},
		{
			Method:  http.MethodGet,
			Path:    "/equipment",
			Handler: a.listEquipment,
		},
		{
			Method:  http.MethodPost,
			Path:    "/equipment",
			Handler: a.createEquipment,
		},
		{
			Method:  http.MethodGet,
			Path:    "/equipment/{equipmentId}",
			Handler: a.getEquipment,
		},
		{
			Method:  http.MethodPut,
			Path:    "/equipment/{equipmentId}",
			Handler: a.updateEquipment,
		},
		{
			Method:  http.MethodDelete,
			Path:    "/equipment/{equipmentId}",
			Handler: a.deleteEquipment,
		},
		{
			Method:  http.MethodGet,
			Path:    "/workorders",
			Handler: a.listWorkOrders,
		},
		{
			Method:  http.MethodPost,
			Path:    "/workorders",
			Handler: a.createWorkOrder,
		},
		{
			Method:  http.MethodGet,
			Path:    "/workorders/{workOrderId}",
			Handler: a.getWorkOrder,
		},
		{
			Method:  http.MethodDelete,
			Path:    "/workorders/{workOrderId}",
			Handler: a.deleteWorkOrder,
		},
		{
			Method:  http.MethodGet,
			Path:    "/servicepartners",
			Handler: a.listServicePartners,
		},
		{
			Method:  http.MethodPost,
			Path:    "/servicepartners",
			Handler: a.createServicePartner,
		},
		{
			Method:  http.MethodPost,
			Path:    "/servicepartners/{servicePartnerId}/ratings",
			Handler: a.rateServicePartner,
		},
		{
			Method:  http.MethodGet,
			Path:    "/documents",
			Handler: a.listDocuments,
		},
		{
			Method:  http.MethodPost,
			Path:    "/documents",
			Handler: a.createDocument,
		},
		{
			Method:  http.MethodGet,
			Path:    "/documents/{documentId}",
			Handler: a.getDocument,
		},
		{
			Method:  http.MethodGet,
			Path:    "/documents/{documentId}/links",
			Handler: a.listDocumentLinks,
		},
		{
			Method:  http.MethodPost,
			Path:    "/documents/{documentId}/links",
			Handler: a.linkDocument,
		},
		{
			Method:  http.MethodDelete,
			Path:    "/documents/{documentId}/links/{linkId}",
			Handler: a.unlinkDocument,
		},
	}
}

// Router serves /api. Gating by tenant state happens before the router is
// reached; here tenant routes only insist that a tenant was resolved.
func (a *API) Router() chi.Router {
	router := chi.NewRouter()
	for _, handler := range a.publicHandlers() {
		router.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
	}
	if a.billing != nil {
		router.Mount("/billing", a.billing)
	}
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireTenant)
		for _, handler := range a.tenantHandlers() {
			r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
		}
	})
	return router
}
