package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage sequencing sessions",
	}

	var learnerID, courseID string
	cmd.PersistentFlags().StringVarP(&learnerID, "learner", "l", "", "learner identifier (required)")
	cmd.PersistentFlags().StringVarP(&courseID, "course", "c", "", "course identifier (required)")
	cmd.MarkPersistentFlagRequired("learner")
	cmd.MarkPersistentFlagRequired("course")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored session for a learner and course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store types.SessionStore) error {
				session, err := store.LoadSession(learnerID, courseID)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return printJSON(cmd, session)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "session:  %s\n", session.SessionID)
				fmt.Fprintf(out, "lifecycle: %s\n", session.Lifecycle)
				fmt.Fprintf(out, "current:  %s\n", session.Global.CurrentActivityID)
				if session.Global.SuspendedActivityID != "" {
					fmt.Fprintf(out, "suspended: %s\n", session.Global.SuspendedActivityID)
				}
				fmt.Fprintf(out, "version:  %d\n", session.Version)
				fmt.Fprintf(out, "tracked activities: %d\n", len(session.Activities))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Delete the stored session for a learner and course",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store types.SessionStore) error {
				if err := store.DeleteSession(learnerID, courseID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "session deleted")
				return nil
			})
		},
	})

	return cmd
}
