package apis

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
)

// Reference data is shared by all tenants and readable without credentials.

func (a *API) listIndustries(r *http.Request) (*httpx.Response, error) {
	out, err := a.reference.ListIndustries(r.Context())
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: out}, nil
}

func (a *API) listFleetCategories(r *http.Request) (*httpx.Response, error) {
	industryID, err := intQuery(r, "industryId")
	if err != nil {
		return nil, err
	}
	out, err := a.reference.ListFleetCategories(r.Context(), industryID)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: out}, nil
}

func (a *API) listEquipmentTypes(r *http.Request) (*httpx.Response, error) {
	industryID, err := intQuery(r, "industryId")
	if err != nil {
		return nil, err
	}
	categoryID, err := intQuery(r, "fleetCategoryId")
	if err != nil {
		return nil, err
	}
	out, err := a.reference.ListEquipmentTypes(r.Context(), industryID, categoryID)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: out}, nil
}
