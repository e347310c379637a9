package apis

import (
	"net/http"
	"strings"

	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
)

type updateTenantReq struct {
	Name       string  `json:"name" validate:"required,notBlank"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone"`
	IndustryID *int    `json:"industryId" validate:"omitempty,gt=0"`
}

func (a *API) getCurrentTenant(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := currentTenant(ctx)
	if err != nil {
		return nil, err
	}
	t, err := a.tenants.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: t}, nil
}

func (a *API) updateCurrentTenant(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := currentTenant(ctx)
	if err != nil {
		return nil, err
	}
	var req updateTenantReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	now := a.now().UTC()
	t, err := a.tenants.UpdateTenant(ctx, id, func(t *tenant.Tenant) error {
		return t.UpdateProfile(tenant.Profile{
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			IndustryID: req.IndustryID,
		}, now)
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: t}, nil
}
