package models

import (
	"time"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a login of a tenant. Email is unique across tenants since login
// happens before the tenant is known.
type User struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	TenantID     tenancy.TenantID `db:"tenant_id" json:"tenantId"`
	Email        string           `db:"email" json:"email"`
	PasswordHash string           `db:"password_hash" json:"-"`
	FullName     string           `db:"full_name" json:"fullName"`
	Role         string           `db:"role" json:"role"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
}
