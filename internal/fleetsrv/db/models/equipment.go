package models

import (
	"time"

	"github.com/google/uuid"
)

/*
     Column       |           Type           | Nullable
------------------+--------------------------+----------
 id               | uuid                     | not null
 tenant_id        | uuid                     | not null
 unit_number      | text                     | not null
 display_name     | text                     |
 equipment_type_id| integer                  |
 vin              | text                     |
 make             | text                     |
 model            | text                     |
 year             | integer                  |
 status           | text                     | not null
 is_deleted       | boolean                  | not null
 deleted_at       | timestamptz              |
 deleted_by       | text                     |
 created_at       | timestamptz              | not null
 updated_at       | timestamptz              | not null
 UNIQUE (tenant_id, unit_number)
*/

type Equipment struct {
	ID uuid.UUID `db:"id" json:"id"`
	TenantOwned
	UnitNumber      string    `db:"unit_number" json:"unitNumber"`
	DisplayName     *string   `db:"display_name" json:"displayName,omitempty"`
	EquipmentTypeID *int      `db:"equipment_type_id" json:"equipmentTypeId,omitempty"`
	VIN             *string   `db:"vin" json:"vin,omitempty"`
	Make            *string   `db:"make" json:"make,omitempty"`
	Model           *string   `db:"model" json:"model,omitempty"`
	Year            *int      `db:"year" json:"year,omitempty"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
	SoftDeleted
}

const (
	EquipmentInService    = "in_service"
	EquipmentOutOfService = "out_of_service"
	EquipmentRetired      = "retired"
)

var EquipmentColumns = []string{
	"id", "tenant_id", "unit_number", "display_name", "equipment_type_id", "vin", "make", "model", "year",
	"status", "is_deleted", "deleted_at", "deleted_by", "created_at", "updated_at",
}

func (e *Equipment) Key() *uuid.UUID { return &e.ID }

func (e *Equipment) InsertValues() map[string]any {
	if e.Status == "" {
		e.Status = EquipmentInService
	}
	return map[string]any{
		"unit_number":       e.UnitNumber,
		"display_name":      e.DisplayName,
		"equipment_type_id": e.EquipmentTypeID,
		"vin":               e.VIN,
		"make":              e.Make,
		"model":             e.Model,
		"year":              e.Year,
		"status":            e.Status,
		"created_at":        e.CreatedAt,
		"updated_at":        e.UpdatedAt,
	}
}
