package apis

import (
	"errors"
	"net/http"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/postgresql"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/scoped"
)

type equipmentReq struct {
	UnitNumber      string  `json:"unitNumber" validate:"required,notBlank"`
	DisplayName     *string `json:"displayName"`
	EquipmentTypeID *int    `json:"equipmentTypeId" validate:"omitempty,gt=0"`
	VIN             *string `json:"vin" validate:"omitempty,max=17,noSpaces"`
	Make            *string `json:"make"`
	Model           *string `json:"model"`
	Year            *int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Status          string  `json:"status" validate:"omitempty,oneof=in_service out_of_service retired"`
}

type equipmentUpdateReq struct {
	UnitNumber      *string `json:"unitNumber" validate:"omitempty,notBlank"`
	DisplayName     *string `json:"displayName"`
	EquipmentTypeID *int    `json:"equipmentTypeId" validate:"omitempty,gt=0"`
	VIN             *string `json:"vin" validate:"omitempty,max=17,noSpaces"`
	Make            *string `json:"make"`
	Model           *string `json:"model"`
	Year            *int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Status          *string `json:"status" validate:"omitempty,oneof=in_service out_of_service retired"`
}

func (u equipmentUpdateReq) setMap() map[string]any {
	set := map[string]any{}
	if u.UnitNumber != nil {
		set["unit_number"] = strings.TrimSpace(*u.UnitNumber)
	}
	if u.DisplayName != nil {
		set["display_name"] = *u.DisplayName
	}
	if u.EquipmentTypeID != nil {
		set["equipment_type_id"] = *u.EquipmentTypeID
	}
	if u.VIN != nil {
		set["vin"] = *u.VIN
	}
	if u.Make != nil {
		set["make"] = *u.Make
	}
	if u.Model != nil {
		set["model"] = *u.Model
	}
	if u.Year != nil {
		set["year"] = *u.Year
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	return set
}

func duplicateUnit(err error) error {
	if errors.Is(err, dberror.ErrAlreadyExists) {
		return ErrDuplicate.Msg("unit number is already in use")
	}
	return err
}

func (a *API) listEquipment(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	limit, offset, err := pageParams(r)
	if err != nil {
		return nil, err
	}
	opts := scoped.ListOptions{Limit: limit, Offset: offset}
	if status := r.URL.Query().Get("status"); status != "" {
		opts.Where = sq.Eq{"status": status}
	}
	var out []models.Equipment
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		out, err = tx.Equipment().List(ctx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: out}, nil
}

func (a *API) getEquipment(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := idParam(r, "equipmentId")
	if err != nil {
		return nil, err
	}
	var e *models.Equipment
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		e, err = tx.Equipment().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, notFoundAs(err, ErrEquipmentNotFound)
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: e}, nil
}

func (a *API) createEquipment(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	var req equipmentReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	now := a.now().UTC()
	e := &models.Equipment{
		UnitNumber:      strings.TrimSpace(req.UnitNumber),
		DisplayName:     req.DisplayName,
		EquipmentTypeID: req.EquipmentTypeID,
		VIN:             req.VIN,
		Make:            req.Make,
		Model:           req.Model,
		Year:            req.Year,
		Status:          req.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := a.withTx(ctx, func(tx *postgresql.Tx) error {
		return tx.Equipment().Insert(ctx, e)
	})
	if err != nil {
		return nil, duplicateUnit(err)
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/api/equipment/" + e.ID.String(),
		Response:   e,
	}, nil
}

func (a *API) updateEquipment(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := idParam(r, "equipmentId")
	if err != nil {
		return nil, err
	}
	var req equipmentUpdateReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	set := req.setMap()
	if len(set) == 0 {
		return nil, ErrInvalidInput.Msg("nothing to update")
	}
	var e *models.Equipment
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		if err := tx.Equipment().Update(ctx, id, set); err != nil {
			return err
		}
		e, err = tx.Equipment().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, duplicateUnit(notFoundAs(err, ErrEquipmentNotFound))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: e}, nil
}

func (a *API) deleteEquipment(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := idParam(r, "equipmentId")
	if err != nil {
		return nil, err
	}
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		return tx.Equipment().SoftDelete(ctx, id, currentUser(ctx))
	})
	if err != nil {
		return nil, notFoundAs(err, ErrEquipmentNotFound)
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
