package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long:  "Creates the configuration directory with a default config.yaml and initializes the SQLite database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := writeDefaultConfig(resolveConfigDir())
			if err != nil {
				return err
			}
			// Attach once so the database file and schema exist up front.
			if err := withStore(func(store types.SessionStore) error { return nil }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized: %s\n", path)
			return nil
		},
	}
}
