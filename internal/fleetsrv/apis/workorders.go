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
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const workOrderAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

type workOrderReq struct {
	EquipmentID      uuid.UUID  `json:"equipmentId" validate:"required"`
	ServicePartnerID *uuid.UUID `json:"servicePartnerId"`
	Title            string     `json:"title" validate:"required,notBlank"`
	Description      *string    `json:"description"`
}

func newWorkOrderNumber() (string, error) {
	id, err := gonanoid.Generate(workOrderAlphabet, 8)
	if err != nil {
		return "", err
	}
	return "WO-" + id, nil
}

func (a *API) listWorkOrders(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	limit, offset, err := pageParams(r)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	where := sq.And{}
	if v := q.Get("equipmentId"); v != "" {
		equipmentID, err := uuid.Parse(v)
		if err != nil {
			return nil, ErrInvalidQuery.Msg("invalid equipmentId")
		}
		where = append(where, sq.Eq{"equipment_id": equipmentID.String()})
	}
	if v := q.Get("status"); v != "" {
		where = append(where, sq.Eq{"status": v})
	}
	opts := scoped.ListOptions{Limit: limit, Offset: offset}
	if len(where) > 0 {
		opts.Where = where
	}
	var out []models.WorkOrder
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		out, err = tx.WorkOrders().List(ctx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: out}, nil
}

func (a *API) getWorkOrder(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := idParam(r, "workOrderId")
	if err != nil {
		return nil, err
	}
	var wo *models.WorkOrder
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		wo, err = tx.WorkOrders().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, notFoundAs(err, ErrWorkOrderNotFound)
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: wo}, nil
}

// createWorkOrder opens a work order against equipment of the same tenant.
func (a *API) createWorkOrder(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	var req workOrderReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	number, err := newWorkOrderNumber()
	if err != nil {
		return nil, err
	}
	now := a.now().UTC()
	wo := &models.WorkOrder{
		EquipmentID:      req.EquipmentID,
		ServicePartnerID: req.ServicePartnerID,
		Number:           number,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		OpenedAt:         now,
		CreatedBy:        currentUser(ctx),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		ok, err := tx.Equipment().Exists(ctx, req.EquipmentID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnknownReference.Msg("equipment does not exist")
		}
		if req.ServicePartnerID != nil {
			ok, err := tx.ServicePartners().Exists(ctx, *req.ServicePartnerID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrUnknownReference.Msg("service partner does not exist")
			}
		}
		return tx.WorkOrders().Insert(ctx, wo)
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/api/workorders/" + wo.ID.String(),
		Response:   wo,
	}, nil
}

func (a *API) deleteWorkOrder(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := idParam(r, "workOrderId")
	if err != nil {
		return nil, err
	}
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		return tx.WorkOrders().SoftDelete(ctx, id, currentUser(ctx))
	})
	if err != nil {
		return nil, notFoundAs(err, ErrWorkOrderNotFound)
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
