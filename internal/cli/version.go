package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pathway/pkg/pathway"
)

const modulePath = "github.com/mesh-intelligence/pathway"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pathway version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pathway v%s\nmodule: %s\n", pathway.Version, modulePath)
			return nil
		},
	}
}
