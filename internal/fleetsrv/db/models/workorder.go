package models

import (
	"time"

	"github.com/google/uuid"
)

type WorkOrder struct {
	ID uuid.UUID `db:"id" json:"id"`
	TenantOwned
	EquipmentID      uuid.UUID  `db:"equipment_id" json:"equipmentId"`
	ServicePartnerID *uuid.UUID `db:"service_partner_id" json:"servicePartnerId,omitempty"`
	Number           string     `db:"work_order_number" json:"workOrderNumber"`
	Title            string     `db:"title" json:"title"`
	Description      *string    `db:"description" json:"description,omitempty"`
	Status           string     `db:"status" json:"status"`
	OpenedAt         time.Time  `db:"opened_at" json:"openedAt"`
	ClosedAt         *time.Time `db:"closed_at" json:"closedAt,omitempty"`
	CreatedBy        string     `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
	SoftDeleted
}

const (
	WorkOrderOpen   = "open"
	WorkOrderClosed = "closed"
)

var WorkOrderColumns = []string{
	"id", "tenant_id", "equipment_id", "service_partner_id", "work_order_number", "title", "description",
	"status", "opened_at", "closed_at", "created_by", "is_deleted", "deleted_at", "deleted_by", "created_at", "updated_at",
}

func (w *WorkOrder) Key() *uuid.UUID { return &w.ID }

func (w *WorkOrder) InsertValues() map[string]any {
	if w.Status == "" {
		w.Status = WorkOrderOpen
	}
	return map[string]any{
		"equipment_id":       w.EquipmentID.String(),
		"service_partner_id": nullableUUID(w.ServicePartnerID),
		"work_order_number":  w.Number,
		"title":              w.Title,
		"description":        w.Description,
		"status":             w.Status,
		"opened_at":          w.OpenedAt,
		"closed_at":          w.ClosedAt,
		"created_by":         w.CreatedBy,
		"created_at":         w.CreatedAt,
		"updated_at":         w.UpdatedAt,
	}
}
