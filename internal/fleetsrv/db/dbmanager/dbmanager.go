// Package dbmanager owns the PostgreSQL connection pool and hands out
// transactions bound to a tenant scope.
package dbmanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Session settings read by the row level security policies.
const (
	ScopeCurrentTenant = "fleet.current_tenant"
	ScopeBypassFilter  = "fleet.bypass_tenant_filter"
)

type Options struct {
	MaxOpenConns    int
	ConnectAttempts uint
	RetryDelay      time.Duration
}

// Pool is a PostgreSQL connection pool.
type Pool struct {
	db *sqlx.DB
}

// Open connects to dsn with the pgx driver and waits for the database to
// accept connections.
func Open(ctx context.Context, dsn string, opts Options) (*Pool, error) {
	sqlDB, err := sqlx.Open("pgx", dsn)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to open db")
		return nil, dberror.ErrUnavailable.Err(err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns / 2)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	attempts := opts.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}
	delay := opts.RetryDelay
	if delay == 0 {
		delay = time.Second
	}
	err = retry.Do(
		func() error {
			return sqlDB.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Uint("attempt", n+1).Err(err).Msg("database not reachable, retrying")
		}),
	)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to ping db")
		sqlDB.Close()
		return nil, dberror.ErrUnavailable.Err(err)
	}
	return &Pool{db: sqlDB}, nil
}

// New wraps an existing database handle.
func New(db *sql.DB, driverName string) *Pool {
	return &Pool{db: sqlx.NewDb(db, driverName)}
}

func (p *Pool) DB() *sqlx.DB {
	return p.db
}

func (p *Pool) Close() error {
	return p.db.Close()
}

// BeginScoped starts a transaction and records scope in transaction local
// settings, so row level security sees the same tenant as the query filters.
func (p *Pool) BeginScoped(ctx context.Context, scope tenancy.Scope) (*sqlx.Tx, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to begin transaction")
		return nil, dberror.Map(err)
	}
	if id, ok := scope.TenantID(); ok {
		_, err = tx.ExecContext(ctx, "SELECT set_config($1, $2, true)", ScopeCurrentTenant, id.String())
	} else {
		log.Ctx(ctx).Debug().Str("scope", scope.String()).Msg("unscoped transaction")
		_, err = tx.ExecContext(ctx, "SELECT set_config($1, $2, true)", ScopeBypassFilter, "on")
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("scope", scope.String()).Msg("failed to set scope")
		tx.Rollback()
		return nil, dberror.Map(err)
	}
	return tx, nil
}

// WithTx runs fn in a scoped transaction. The transaction commits when fn
// returns nil and rolls back otherwise, including on panic.
func (p *Pool) WithTx(ctx context.Context, scope tenancy.Scope, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := p.BeginScoped(ctx, scope)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				log.Ctx(ctx).Error().Err(rbErr).Msg("failed to roll back transaction")
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to commit transaction")
		return dberror.Map(err)
	}
	return nil
}
