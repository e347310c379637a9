// Package apis serves the fleet REST API under /api. Tenant scoped handlers
// reach storage only through a persistence session built from the request's
// tenant scope.
package apis

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/common/uuid"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/auth"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/postgresql"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/go-chi/chi/v5"
)

type SessionProvider interface {
	Session(scope tenancy.Scope) (*postgresql.Session, error)
}

type TenantStore interface {
	GetTenant(ctx context.Context, id tenancy.TenantID) (*tenant.Tenant, error)
	UpdateTenant(ctx context.Context, id tenancy.TenantID, mutate func(*tenant.Tenant) error) (*tenant.Tenant, error)
	RegisterTenant(ctx context.Context, t *tenant.Tenant, owner *models.User) error
}

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ReferenceReader interface {
	ListIndustries(ctx context.Context) ([]models.Industry, error)
	ListFleetCategories(ctx context.Context, industryID int) ([]models.FleetCategory, error)
	ListEquipmentTypes(ctx context.Context, industryID, fleetCategoryID int) ([]models.EquipmentType, error)
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

// Deps are the collaborators of the API. Billing, when set, is mounted at
// /billing.
type Deps struct {
	Sessions  SessionProvider
	Tenants   TenantStore
	Users     UserStore
	Reference ReferenceReader
	Tokens    TokenIssuer
	Billing   http.Handler
	Now       func() time.Time
}

type API struct {
	sessions  SessionProvider
	tenants   TenantStore
	users     UserStore
	reference ReferenceReader
	tokens    TokenIssuer
	billing   http.Handler
	now       func() time.Time
}

func New(d Deps) *API {
	a := &API{
		sessions:  d.Sessions,
		tenants:   d.Tenants,
		users:     d.Users,
		reference: d.Reference,
		tokens:    d.Tokens,
		billing:   d.Billing,
		now:       d.Now,
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// withTx runs fn in a transaction scoped to the tenant of the request.
func (a *API) withTx(ctx context.Context, fn func(tx *postgresql.Tx) error) error {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	sess, err := a.sessions.Session(scope)
	if err != nil {
		return err
	}
	return sess.Tx(ctx, fn)
}

func currentTenant(ctx context.Context) (tenancy.TenantID, error) {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return tenancy.NilTenant, err
	}
	id, _ := scope.TenantID()
	return id, nil
}

func currentUser(ctx context.Context) string {
	rc, _ := tenancy.FromContext(ctx)
	return rc.UserID
}

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, ErrInvalidID.Msg("invalid " + name)
	}
	return id, nil
}

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

func pageParams(r *http.Request) (limit, offset uint64, err error) {
	q := r.URL.Query()
	limit = defaultPageSize
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.ParseUint(v, 10, 64); err != nil || limit == 0 {
			return 0, 0, ErrInvalidQuery.Msg("invalid limit")
		}
		limit = min(limit, maxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, ErrInvalidQuery.Msg("invalid offset")
		}
	}
	return limit, offset, nil
}

// intQuery returns the positive integer query parameter name, or 0 when absent.
func intQuery(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, ErrInvalidQuery.Msg("invalid " + name)
	}
	return n, nil
}
