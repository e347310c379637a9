// Package scoped builds tenant isolated queries. Every statement produced by
// a Repo is restricted to the tenant of the Scope it is given, and soft
// deleted rows are hidden, without the caller asking for either.
package scoped

import (
	"context"
	"errors"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fleetmanage/fleetmanage/internal/common/uuid"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Entity is implemented by pointers to tenant owned records.
type Entity interface {
	Key() *uuid.UUID
	Owner() *tenancy.TenantID
	// InsertValues returns the columns to insert, without id and tenant_id.
	InsertValues() map[string]any
}

// Table describes how an entity type is stored.
type Table struct {
	Name       string
	Columns    []string
	SoftDelete bool
	OrderBy    string
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var protectedColumns = []string{"id", "tenant_id"}

// Repo is the repository of one tenant owned entity type.
type Repo[T any, P interface {
	*T
	Entity
}] struct {
	table Table
	now   func() time.Time
}

func NewRepo[T any, P interface {
	*T
	Entity
}](table Table) *Repo[T, P] {
	if table.OrderBy == "" {
		table.OrderBy = "created_at DESC"
	}
	return &Repo[T, P]{table: table, now: time.Now}
}

func (r *Repo[T, P]) Table() Table {
	return r.table
}

// ListOptions narrows a listing. Where is ANDed with the isolation filters.
type ListOptions struct {
	Where   sq.Sqlizer
	OrderBy []string
	Limit   uint64
	Offset  uint64
}

// filters returns the predicates every statement on the table carries for scope.
func (r *Repo[T, P]) filters(scope tenancy.Scope) (sq.And, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var and sq.And
	if id, ok := scope.TenantID(); ok {
		and = append(and, sq.Eq{"tenant_id": id.String()})
	}
	if r.table.SoftDelete {
		and = append(and, sq.Eq{"is_deleted": false})
	}
	return and, nil
}

// grouped returns pred as a single term, so that a top level OR in a raw
// expression cannot reach past the isolation filters. Squirrel's own
// predicates already render as one term.
func grouped(pred sq.Sqlizer) sq.Sqlizer {
	switch pred.(type) {
	case sq.Eq, sq.NotEq, sq.And, sq.Or:
		return pred
	}
	return parenthesized{pred}
}

type parenthesized struct{ pred sq.Sqlizer }

func (p parenthesized) ToSql() (string, []any, error) {
	query, args, err := p.pred.ToSql()
	if err != nil || query == "" {
		return query, args, err
	}
	return "(" + query + ")", args, nil
}

func (r *Repo[T, P]) selectQuery(scope tenancy.Scope, columns []string, opts ListOptions) (string, []any, error) {
	filters, err := r.filters(scope)
	if err != nil {
		return "", nil, err
	}
	qb := psql.Select(columns...).From(r.table.Name)
	if len(filters) > 0 {
		qb = qb.Where(filters)
	}
	if opts.Where != nil {
		qb = qb.Where(grouped(opts.Where))
	}
	if len(opts.OrderBy) > 0 {
		qb = qb.OrderBy(opts.OrderBy...)
	}
	if opts.Limit > 0 {
		qb = qb.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		qb = qb.Offset(opts.Offset)
	}
	return qb.ToSql()
}

func (r *Repo[T, P]) Get(ctx context.Context, q sqlx.ExtContext, scope tenancy.Scope, id uuid.UUID) (P, error) {
	query, args, err := r.selectQuery(scope, r.table.Columns, ListOptions{Where: sq.Eq{"id": id.String()}})
	if err != nil {
		return nil, err
	}
	var rec T
	if err := sqlx.GetContext(ctx, q, &rec, query, args...); err != nil {
		return nil, r.mapErr(ctx, err)
	}
	return &rec, nil
}

func (r *Repo[T, P]) List(ctx context.Context, q sqlx.ExtContext, scope tenancy.Scope, opts ListOptions) ([]T, error) {
	if len(opts.OrderBy) == 0 {
		opts.OrderBy = []string{r.table.OrderBy}
	}
	query, args, err := r.selectQuery(scope, r.table.Columns, opts)
	if err != nil {
		return nil, err
	}
	recs := []T{}
	if err := sqlx.SelectContext(ctx, q, &recs, query, args...); err != nil {
		return nil, r.mapErr(ctx, err)
	}
	return recs, nil
}

func (r *Repo[T, P]) Count(ctx context.Context, q sqlx.ExtContext, scope tenancy.Scope, where sq.Sqlizer) (int64, error) {
	query, args, err := r.selectQuery(scope, []string{"count(*)"}, ListOptions{Where: where})
	if err != nil {
		return 0, err
	}
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return 0, r.mapErr(ctx, err)
	}
	return n, nil
}

// Insert stores rec. An unset owner is filled with the scope's tenant; an
// owner naming a different tenant is refused. Unscoped inserts must name
// their owner.
func (r *Repo[T, P]) Insert(ctx context.Context, q sqlx.ExtContext, scope tenancy.Scope, rec P) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	owner := rec.Owner()
	if tid, ok := scope.TenantID(); ok {
		if owner.IsNil() {
			*owner = tid
		} else if *owner != tid {
			log.Ctx(ctx).Warn().Str("table", r.table.Name).Str("scope", tid.String()).
				Str("owner", owner.String()).Msg("refused cross tenant insert")
			return tenancy.ErrTenantMismatch
		}
	} else if owner.IsNil() {
		return tenancy.ErrMissingOwner
	}

	key := rec.Key()
	if *key == uuid.Nil {
		*key = uuid.New()
	}
	values := rec.InsertValues()
	for col := range values {
		if slices.Contains(protectedColumns, col) || !slices.Contains(r.table.Columns, col) {
			return dberror.ErrInvalidInput.Msg("invalid column " + col + " for " + r.table.Name)
		}
	}
	values["id"] = key.String()
	values["tenant_id"] = owner.String()

	query, args, err := psql.Insert(r.table.Name).SetMap(values).ToSql()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return r.mapErr(ctx, err)
	}
	return nil
}

// Update sets columns of the record with id. The id and owner of a record
// cannot be changed.
func (r *Repo[T, P]) Update(ctx context.Context, q sqlx.ExtContext, scope tenancy.Scope, id uuid.UUID, set map[string]any) error {
	if len(set) == 0 {
		return dberror.ErrInvalidInput.Msg("nothing to update")
	}
	for col := range set {
		if slices.Contains(protectedColumns, col) || !slices.Contains(r.table.Columns, col) {
			return dberror.ErrInvalidInput.Msg("column " + col + " cannot be updated")
		}
	}
	if _, ok := set["updated_at"]; !ok && slices.Contains(r.table.Columns, "updated_at") {
		set["updated_at"] = r.now().UTC()
	}
	return r.exec(ctx, q, scope, id, psql.Update(r.table.Name).SetMap(set))
}

// SoftDelete hides the record with id. Deleting a hidden record reports not found.
func (r *Repo[T, P]) SoftDelete(ctx context.Context, q sqlx.ExtContext, scope tenancy.Scope, id uuid.UUID, by string) error {
	if !r.table.SoftDelete {
		return dberror.ErrInvalidInput.Msg(r.table.Name + " records are removed with Delete")
	}
	ub := psql.Update(r.table.Name).
		Set("is_deleted", true).
		Set("deleted_at", r.now().UTC()).
		Set("deleted_by", by)
	return r.exec(ctx, q, scope, id, ub)
}

// Delete removes the record with id. Only tables without soft delete allow it.
func (r *Repo[T, P]) Delete(ctx context.Context, q sqlx.ExtContext, scope tenancy.Scope, id uuid.UUID) error {
	if r.table.SoftDelete {
		return dberror.ErrInvalidInput.Msg(r.table.Name + " records are removed with SoftDelete")
	}
	filters, err := r.filters(scope)
	if err != nil {
		return err
	}
	db := psql.Delete(r.table.Name).Where(sq.Eq{"id": id.String()})
	if len(filters) > 0 {
		db = db.Where(filters)
	}
	query, args, err := db.ToSql()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	return r.execAffecting(ctx, q, query, args)
}

func (r *Repo[T, P]) exec(ctx context.Context, q sqlx.ExtContext, scope tenancy.Scope, id uuid.UUID, ub sq.UpdateBuilder) error {
	filters, err := r.filters(scope)
	if err != nil {
		return err
	}
	ub = ub.Where(sq.Eq{"id": id.String()})
	if len(filters) > 0 {
		ub = ub.Where(filters)
	}
	query, args, err := ub.ToSql()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	return r.execAffecting(ctx, q, query, args)
}

func (r *Repo[T, P]) execAffecting(ctx context.Context, q sqlx.ExtContext, query string, args []any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return r.mapErr(ctx, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dberror.ErrDatabase.Err(err)
	}
	if n == 0 {
		return dberror.ErrNotFound.Msg(r.table.Name + " record not found")
	}
	return nil
}

func (r *Repo[T, P]) mapErr(ctx context.Context, err error) error {
	mapped := dberror.Map(err)
	if !errors.Is(mapped, dberror.ErrNotFound) {
		log.Ctx(ctx).Error().Err(err).Str("table", r.table.Name).Msg("query failed")
	}
	return mapped
}

// Bind fixes the querier and scope of r.
func (r *Repo[T, P]) Bind(q sqlx.ExtContext, scope tenancy.Scope) Bound[T, P] {
	return Bound[T, P]{repo: r, q: q, scope: scope}
}

// Bound is a Repo bound to one transaction and scope.
type Bound[T any, P interface {
	*T
	Entity
}] struct {
	repo  *Repo[T, P]
	q     sqlx.ExtContext
	scope tenancy.Scope
}

func (b Bound[T, P]) Get(ctx context.Context, id uuid.UUID) (P, error) {
	return b.repo.Get(ctx, b.q, b.scope, id)
}

func (b Bound[T, P]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	return b.repo.List(ctx, b.q, b.scope, opts)
}

func (b Bound[T, P]) Count(ctx context.Context, where sq.Sqlizer) (int64, error) {
	return b.repo.Count(ctx, b.q, b.scope, where)
}

func (b Bound[T, P]) Insert(ctx context.Context, rec P) error {
	return b.repo.Insert(ctx, b.q, b.scope, rec)
}

func (b Bound[T, P]) Update(ctx context.Context, id uuid.UUID, set map[string]any) error {
	return b.repo.Update(ctx, b.q, b.scope, id, set)
}

func (b Bound[T, P]) SoftDelete(ctx context.Context, id uuid.UUID, by string) error {
	return b.repo.SoftDelete(ctx, b.q, b.scope, id, by)
}

func (b Bound[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	return b.repo.Delete(ctx, b.q, b.scope, id)
}

// Exists reports whether a visible record with id exists.
func (b Bound[T, P]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := b.repo.Count(ctx, b.q, b.scope, sq.Eq{"id": id.String()})
	return n > 0, err
}
