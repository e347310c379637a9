package postgresql

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Reference data is shared by every tenant.

func (s *Store) ListIndustries(ctx context.Context) ([]models.Industry, error) {
	out := []models.Industry{}
	err := s.pool.DB().SelectContext(ctx, &out, "SELECT id, code, name FROM industries ORDER BY name")
	return out, dberror.Map(err)
}

func (s *Store) ListFleetCategories(ctx context.Context, industryID int) ([]models.FleetCategory, error) {
	qb := psql.Select("id", "industry_id", "code", "name", "is_active").
		From("fleet_categories").
		Where(sq.Eq{"is_active": true}).
		OrderBy("name")
	if industryID > 0 {
		qb = qb.Where(sq.Eq{"industry_id": industryID})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	out := []models.FleetCategory{}
	err = s.pool.DB().SelectContext(ctx, &out, query, args...)
	return out, dberror.Map(err)
}

func (s *Store) ListEquipmentTypes(ctx context.Context, industryID, fleetCategoryID int) ([]models.EquipmentType, error) {
	qb := psql.Select("id", "industry_id", "fleet_category_id", "code", "name", "meter_mode", "has_vin", "is_active").
		From("equipment_types").
		Where(sq.Eq{"is_active": true}).
		OrderBy("name")
	if industryID > 0 {
		qb = qb.Where(sq.Eq{"industry_id": industryID})
	}
	if fleetCategoryID > 0 {
		qb = qb.Where(sq.Eq{"fleet_category_id": fleetCategoryID})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, dberror.ErrDatabase.Err(err)
	}
	out := []models.EquipmentType{}
	err = s.pool.DB().SelectContext(ctx, &out, query, args...)
	return out, dberror.Map(err)
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return dberror.Map(s.pool.DB().PingContext(ctx))
}
