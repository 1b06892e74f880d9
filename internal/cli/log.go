package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

func newLogCmd() *cobra.Command {
	var learnerID, courseID string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the navigation log for a learner and course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store types.SessionStore) error {
				entries, err := store.ListLog(learnerID, courseID)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return printJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				for _, e := range entries {
					outcome := "ok"
					if !e.Success {
						outcome = "rejected: " + e.Exception
					}
					target := e.RequestType
					if e.TargetID != "" {
						target += " " + e.TargetID
					}
					fmt.Fprintf(out, "%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), target, outcome)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&learnerID, "learner", "l", "", "learner identifier (required)")
	cmd.Flags().StringVarP(&courseID, "course", "c", "", "course identifier (required)")
	cmd.MarkFlagRequired("learner")
	cmd.MarkFlagRequired("course")

	return cmd
}
