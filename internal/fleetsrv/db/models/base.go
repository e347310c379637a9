package models

import (
	"time"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/google/uuid"
)

// TenantOwned is embedded by every record that belongs to a single tenant.
type TenantOwned struct {
	TenantID tenancy.TenantID `db:"tenant_id" json:"tenantId"`
}

func (o *TenantOwned) Owner() *tenancy.TenantID {
	return &o.TenantID
}

// SoftDeleted is embedded by records that are hidden rather than removed.
type SoftDeleted struct {
	IsDeleted bool       `db:"is_deleted" json:"-"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	DeletedBy *string    `db:"deleted_by" json:"-"`
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id.String()
}
