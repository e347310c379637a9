package cli

import (
	"fmt"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newTenantCmd(env Env, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Inspect tenants and change their lifecycle state",
		Long: `Inspect tenants and change their lifecycle state.

Examples:
  # List suspended tenants
  fleetctl tenant list --lifecycle suspended

  # Suspend a tenant; its next request is refused
  fleetctl tenant suspend 0190f7a2-... --reason "chargeback"`,
	}
	cmd.AddCommand(newTenantListCmd(env, opts))
	cmd.AddCommand(newTenantShowCmd(env, opts))

	var reason string
	suspend := newTransitionCmd(env, opts, "suspend", "Suspend an active tenant", func(t *tenant.Tenant, env Env) error {
		return t.Suspend(reason, env.Now().UTC())
	})
	suspend.Flags().StringVar(&reason, "reason", "", "Reason recorded with the suspension")
	cmd.AddCommand(suspend)

	cmd.AddCommand(newTransitionCmd(env, opts, "reinstate", "Reinstate a suspended tenant", func(t *tenant.Tenant, env Env) error {
		return t.Reinstate(env.Now().UTC())
	}))
	cmd.AddCommand(newTransitionCmd(env, opts, "close", "Close a tenant permanently", func(t *tenant.Tenant, env Env) error {
		return t.Close(env.Now().UTC())
	}))
	cmd.AddCommand(newTransitionCmd(env, opts, "activate", "Complete onboarding of a pending tenant", func(t *tenant.Tenant, env Env) error {
		return t.CompleteOnboarding(env.Now().UTC())
	}))
	return cmd
}

func newTenantListCmd(env Env, opts *rootOptions) *cobra.Command {
	var lifecycle string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter tenant.Lifecycle
			if lifecycle != "" {
				l, err := tenant.ParseLifecycle(lifecycle)
				if err != nil {
					return err
				}
				filter = l
			}
			ctx := commandContext(cmd)
			admin, done, err := env.OpenAdmin(ctx)
			if err != nil {
				return err
			}
			defer done()
			tenants, err := admin.ListTenants(ctx, filter)
			if err != nil {
				return err
			}
			views := make([]tenantView, 0, len(tenants))
			for i := range tenants {
				views = append(views, newTenantView(&tenants[i]))
			}
			return printOutput(cmd, opts, views)
		},
	}
	cmd.Flags().StringVar(&lifecycle, "lifecycle", "", "Only list tenants in this lifecycle state")
	return cmd
}

func newTenantShowCmd(env Env, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show TENANT_ID",
		Short: "Show one tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTenantArg(args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			admin, done, err := env.OpenAdmin(ctx)
			if err != nil {
				return err
			}
			defer done()
			t, err := admin.GetTenant(ctx, id)
			if err != nil {
				return err
			}
			return printOutput(cmd, opts, newTenantView(t))
		},
	}
}

// newTransitionCmd builds a command that applies one lifecycle operation
// under the tenant's row lock.
func newTransitionCmd(env Env, opts *rootOptions, name, short string, apply func(*tenant.Tenant, Env) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " TENANT_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTenantArg(args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			admin, done, err := env.OpenAdmin(ctx)
			if err != nil {
				return err
			}
			defer done()
			t, err := admin.UpdateTenant(ctx, id, func(t *tenant.Tenant) error {
				return apply(t, env)
			})
			if err != nil {
				return err
			}
			log.Ctx(ctx).Info().Str("tenant_id", id.String()).Str("operation", name).
				Str("lifecycle", string(t.Lifecycle)).Msg("tenant updated")
			return printOutput(cmd, opts, newTenantView(t))
		},
	}
}

func parseTenantArg(s string) (tenancy.TenantID, error) {
	id, err := tenancy.ParseTenantID(s)
	if err != nil {
		return tenancy.NilTenant, fmt.Errorf("invalid tenant id %q", s)
	}
	return id, nil
}
