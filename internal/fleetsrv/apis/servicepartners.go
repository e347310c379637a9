package apis

import (
	"net/http"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/common/uuid"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/postgresql"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/scoped"
	"github.com/lib/pq"
)

type servicePartnerReq struct {
	Name        string   `json:"name" validate:"required,notBlank"`
	Phone       *string  `json:"phone"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	Specialties []string `json:"specialties" validate:"omitempty,dive,notBlank"`
}

type ratingReq struct {
	Rating      int        `json:"rating" validate:"required,gte=1,lte=5"`
	Comment     *string    `json:"comment"`
	WorkOrderID *uuid.UUID `json:"workOrderId"`
}

func (a *API) listServicePartners(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	limit, offset, err := pageParams(r)
	if err != nil {
		return nil, err
	}
	opts := scoped.ListOptions{Limit: limit, Offset: offset}
	if r.URL.Query().Get("active") == "true" {
		opts.Where = sq.Eq{"is_active": true}
	}
	var out []models.ServicePartner
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		out, err = tx.ServicePartners().List(ctx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: out}, nil
}

func (a *API) createServicePartner(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	var req servicePartnerReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	sp := &models.ServicePartner{
		Name:        strings.TrimSpace(req.Name),
		Phone:       req.Phone,
		City:        req.City,
		State:       req.State,
		Specialties: pq.StringArray(req.Specialties),
		IsActive:    true,
		CreatedAt:   a.now().UTC(),
	}
	err := a.withTx(ctx, func(tx *postgresql.Tx) error {
		return tx.ServicePartners().Insert(ctx, sp)
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/api/servicepartners/" + sp.ID.String(),
		Response:   sp,
	}, nil
}

// rateServicePartner records a rating of a partner, optionally for one of
// the tenant's work orders.
func (a *API) rateServicePartner(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	partnerID, err := idParam(r, "servicePartnerId")
	if err != nil {
		return nil, err
	}
	var req ratingReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	rating := &models.ServicePartnerRating{
		ServicePartnerID: partnerID,
		WorkOrderID:      req.WorkOrderID,
		Rating:           req.Rating,
		Comment:          req.Comment,
		CreatedBy:        currentUser(ctx),
		CreatedAt:        a.now().UTC(),
	}
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		ok, err := tx.ServicePartners().Exists(ctx, partnerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrServicePartnerNotFound
		}
		if req.WorkOrderID != nil {
			ok, err := tx.WorkOrders().Exists(ctx, *req.WorkOrderID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrUnknownReference.Msg("work order does not exist")
			}
		}
		return tx.ServicePartnerRatings().Insert(ctx, rating)
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusCreated, Response: rating}, nil
}
