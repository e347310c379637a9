package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(env Env, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := env.Migrate(commandContext(cmd))
			if err != nil {
				return err
			}
			if applied == nil {
				applied = []string{}
			}
			return printOutput(cmd, opts, map[string][]string{"applied": applied})
		},
	}
}
