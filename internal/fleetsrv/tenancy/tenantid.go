package tenancy

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// TenantID identifies a customer organization.
type TenantID uuid.UUID

// NilTenant is the zero TenantID. It never identifies a tenant.
var NilTenant = TenantID(uuid.Nil)

func (t TenantID) String() string {
	return uuid.UUID(t).String()
}

func (t TenantID) IsNil() bool {
	return t == NilTenant
}

// ParseTenantID parses s and rejects the nil uuid.
func ParseTenantID(s string) (TenantID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilTenant, ErrMissingTenantContext.Err(err)
	}
	if u == uuid.Nil {
		return NilTenant, ErrMissingTenantContext
	}
	return TenantID(u), nil
}

// NewTenantID returns a new time ordered id.
func NewTenantID() TenantID {
	return TenantID(uuid.Must(uuid.NewV7()))
}

func (t *TenantID) Scan(src any) error {
	var u uuid.UUID
	if err := u.Scan(src); err != nil {
		return fmt.Errorf("scan tenant id: %w", err)
	}
	*t = TenantID(u)
	return nil
}

func (t TenantID) Value() (driver.Value, error) {
	return uuid.UUID(t).String(), nil
}

func (t TenantID) MarshalText() ([]byte, error) {
	return uuid.UUID(t).MarshalText()
}

func (t *TenantID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*t = TenantID(u)
	return nil
}
