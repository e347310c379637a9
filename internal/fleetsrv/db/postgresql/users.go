package postgresql

import (
	"context"
	"errors"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
)

const userColumns = "id, tenant_id, email, password_hash, full_name, role, created_at"

var ErrUserNotFound = dberror.ErrNotFound.Msg("user not found")

// GetUserByEmail looks a user up across tenants. It serves login, which runs
// before any tenant is known.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.DB().GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email)
	if err != nil {
		mapped := dberror.Map(err)
		if errors.Is(mapped, dberror.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, mapped
	}
	return &u, nil
}
