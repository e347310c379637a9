package tenancy

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTenantID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "0190a8a8-1f3c-7b2d-9c4e-5f6a7b8c9d0e", false},
		{"nil uuid", uuid.Nil.String(), true},
		{"garbage", "not-a-guid", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseTenantID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingTenantContext)
				assert.True(t, id.IsNil())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.input, id.String())
			}
		})
	}
}

func TestTenantIDSQL(t *testing.T) {
	id := NewTenantID()
	v, err := id.Value()
	require.NoError(t, err)
	assert.Equal(t, id.String(), v)

	var scanned TenantID
	require.NoError(t, scanned.Scan(id.String()))
	assert.Equal(t, id, scanned)
	require.NoError(t, scanned.Scan([]byte(id.String())))
	assert.Equal(t, id, scanned)
	assert.Error(t, scanned.Scan(42))

	b, err := json.Marshal(map[string]TenantID{"tenantId": id})
	require.NoError(t, err)
	assert.Contains(t, string(b), id.String())
}

func TestScope(t *testing.T) {
	var zero Scope
	assert.ErrorIs(t, zero.Validate(), ErrMissingTenantContext)
	_, ok := zero.TenantID()
	assert.False(t, ok)
	assert.False(t, zero.IsUnscoped())

	_, err := ForTenant(NilTenant)
	assert.ErrorIs(t, err, ErrMissingTenantContext)

	id := NewTenantID()
	s, err := ForTenant(id)
	require.NoError(t, err)
	assert.NoError(t, s.Validate())
	got, ok := s.TenantID()
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.False(t, s.IsUnscoped())

	u := Unscoped("test")
	assert.NoError(t, u.Validate())
	assert.True(t, u.IsUnscoped())
	_, ok = u.TenantID()
	assert.False(t, ok)
}

func TestRequestContext(t *testing.T) {
	ctx := context.Background()
	_, err := ScopeFromContext(ctx)
	assert.ErrorIs(t, err, ErrMissingTenantContext)

	ctx = WithRequestContext(ctx, Anonymous)
	_, err = ScopeFromContext(ctx)
	assert.ErrorIs(t, err, ErrMissingTenantContext)

	id := NewTenantID()
	ctx = WithRequestContext(context.Background(), RequestContext{TenantID: id, UserID: "u1", Authenticated: true})
	rc, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", rc.UserID)
	s, err := ScopeFromContext(ctx)
	require.NoError(t, err)
	got, _ := s.TenantID()
	assert.Equal(t, id, got)
}
