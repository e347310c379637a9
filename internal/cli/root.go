// Package cli implements fleetctl, the operator tool for tenant
// administration and schema migration. It talks to the database directly and
// works across tenants.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/common/logtrace"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/config"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dbmanager"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/migrations"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/postgresql"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const Version = "v0.3.0"

// TenantAdmin is the tenant registry as seen by an operator.
type TenantAdmin interface {
	ListTenants(ctx context.Context, lifecycle tenant.Lifecycle) ([]tenant.Tenant, error)
	GetTenant(ctx context.Context, id tenancy.TenantID) (*tenant.Tenant, error)
	UpdateTenant(ctx context.Context, id tenancy.TenantID, mutate func(*tenant.Tenant) error) (*tenant.Tenant, error)
}

// Env connects commands to storage.
type Env struct {
	OpenAdmin func(ctx context.Context) (TenantAdmin, func(), error)
	Migrate   func(ctx context.Context) ([]string, error)
	Now       func() time.Time
}

type rootOptions struct {
	configFile string
	jsonOutput bool
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultEnv())
}

func newRootCmd(env Env) *cobra.Command {
	opts := &rootOptions{}
	if env.Now == nil {
		env.Now = time.Now
	}
	cmd := &cobra.Command{
		Use:   "fleetctl",
		Short: "fleetctl administers fleet tenants and the fleet database",
		Long: `fleetctl is the operator tool for the fleet server. It migrates the database
and changes tenant lifecycle state. It reads the same configuration file as the server.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(opts.configFile); err != nil {
				return err
			}
			logtrace.InitLogger(config.Config().LogLevel)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to the server config file")
	cmd.PersistentFlags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output in JSON format")

	cmd.AddCommand(newVersionCmd(opts))
	cmd.AddCommand(newMigrateCmd(env, opts))
	cmd.AddCommand(newTenantCmd(env, opts))
	return cmd
}

// Execute runs fleetctl and exits non zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultEnv() Env {
	open := func(ctx context.Context) (*dbmanager.Pool, error) {
		cfg := config.Config()
		return dbmanager.Open(ctx, cfg.DB.DSN(), dbmanager.Options{
			MaxOpenConns:    2,
			ConnectAttempts: cfg.DB.ConnectAttempts,
		})
	}
	return Env{
		OpenAdmin: func(ctx context.Context) (TenantAdmin, func(), error) {
			pool, err := open(ctx)
			if err != nil {
				return nil, nil, err
			}
			return postgresql.NewStore(pool), func() { pool.Close() }, nil
		},
		Migrate: func(ctx context.Context) ([]string, error) {
			pool, err := open(ctx)
			if err != nil {
				return nil, err
			}
			defer pool.Close()
			return migrations.Apply(ctx, pool.DB())
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	return log.Logger.WithContext(cmd.Context())
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of fleetctl",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printOutput(cmd, opts, map[string]string{"version": Version})
		},
	}
}
