// Package postgresql implements the fleet stores on PostgreSQL.
package postgresql

import (
	"context"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dbmanager"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/scoped"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/jmoiron/sqlx"
)

// Tenant owned tables. Isolation filters are attached here, once per entity type.
var (
	equipmentRepo = scoped.NewRepo[models.Equipment](scoped.Table{
		Name: "equipment", Columns: models.EquipmentColumns, SoftDelete: true, OrderBy: "unit_number",
	})
	workOrderRepo = scoped.NewRepo[models.WorkOrder](scoped.Table{
		Name: "work_orders", Columns: models.WorkOrderColumns, SoftDelete: true, OrderBy: "opened_at DESC",
	})
	servicePartnerRepo = scoped.NewRepo[models.ServicePartner](scoped.Table{
		Name: "service_partners", Columns: models.ServicePartnerColumns, OrderBy: "name",
	})
	ratingRepo = scoped.NewRepo[models.ServicePartnerRating](scoped.Table{
		Name: "service_partner_ratings", Columns: models.ServicePartnerRatingColumns,
	})
	documentRepo = scoped.NewRepo[models.Document](scoped.Table{
		Name: "documents", Columns: models.DocumentColumns,
	})
	documentLinkRepo = scoped.NewRepo[models.DocumentLink](scoped.Table{
		Name: "document_links", Columns: models.DocumentLinkColumns,
	})
)

type Store struct {
	pool *dbmanager.Pool
}

func NewStore(pool *dbmanager.Pool) *Store {
	return &Store{pool: pool}
}

// Session returns the persistence context for scope.
func (s *Store) Session(scope tenancy.Scope) (*Session, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return &Session{pool: s.pool, scope: scope}, nil
}

// Session is a persistence context bound to one scope. It exposes tenant
// owned data only through repositories that carry the scope's filters.
type Session struct {
	pool  *dbmanager.Pool
	scope tenancy.Scope
}

func (s *Session) Scope() tenancy.Scope {
	return s.scope
}

// Tx runs fn in one transaction of the session's scope.
func (s *Session) Tx(ctx context.Context, fn func(tx *Tx) error) error {
	return s.pool.WithTx(ctx, s.scope, func(sqlTx *sqlx.Tx) error {
		return fn(&Tx{tx: sqlTx, scope: s.scope})
	})
}

// Tx is an open scoped transaction.
type Tx struct {
	tx    *sqlx.Tx
	scope tenancy.Scope
}

func (t *Tx) Equipment() scoped.Bound[models.Equipment, *models.Equipment] {
	return equipmentRepo.Bind(t.tx, t.scope)
}

func (t *Tx) WorkOrders() scoped.Bound[models.WorkOrder, *models.WorkOrder] {
	return workOrderRepo.Bind(t.tx, t.scope)
}

func (t *Tx) ServicePartners() scoped.Bound[models.ServicePartner, *models.ServicePartner] {
	return servicePartnerRepo.Bind(t.tx, t.scope)
}

func (t *Tx) ServicePartnerRatings() scoped.Bound[models.ServicePartnerRating, *models.ServicePartnerRating] {
	return ratingRepo.Bind(t.tx, t.scope)
}

func (t *Tx) Documents() scoped.Bound[models.Document, *models.Document] {
	return documentRepo.Bind(t.tx, t.scope)
}

func (t *Tx) DocumentLinks() scoped.Bound[models.DocumentLink, *models.DocumentLink] {
	return documentLinkRepo.Bind(t.tx, t.scope)
}
