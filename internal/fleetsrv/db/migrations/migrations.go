// Package migrations applies the embedded schema migrations in order.
package migrations

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

//go:embed sql/*.sql
var files embed.FS

// Migration is one embedded schema change.
type Migration struct {
	Version string
	SQL     string
}

// All returns the embedded migrations ordered by version.
func All() ([]Migration, error) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := files.ReadFile("sql/" + e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: strings.TrimSuffix(e.Name(), ".sql"), SQL: string(b)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Apply runs every migration that has not been applied yet, each in its own
// transaction, and returns the versions it applied.
func Apply(ctx context.Context, db *sqlx.DB) ([]string, error) {
	all, err := All()
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return nil, dberror.Map(err)
	}
	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations"); err != nil {
		return nil, dberror.Map(err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var ran []string
	for _, m := range all {
		if done[m.Version] {
			continue
		}
		if err := applyOne(ctx, db, m); err != nil {
			return ran, err
		}
		log.Ctx(ctx).Info().Str("version", m.Version).Msg("applied migration")
		ran = append(ran, m.Version)
	}
	return ran, nil
}

func applyOne(ctx context.Context, db *sqlx.DB, m Migration) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return dberror.Map(err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, m.SQL); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("version", m.Version).Msg("migration failed")
		return dberror.Map(err)
	}
	if _, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version); err != nil {
		return dberror.Map(err)
	}
	if err = tx.Commit(); err != nil {
		return dberror.Map(err)
	}
	return nil
}
