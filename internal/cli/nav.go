package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pathway/pkg/sequencing"
	"github.com/mesh-intelligence/pathway/pkg/types"
)

// navVerbs maps subcommand names to navigation request types.
var navVerbs = []struct {
	use         string
	short       string
	requestType string
	takesTarget bool
}{
	{"start", "Start a new attempt on the course", types.RequestStart, false},
	{"resume", "Resume a suspended attempt", types.RequestResume, false},
	{"continue", "Flow forward to the next activity", types.RequestContinue, false},
	{"previous", "Flow backward to the previous activity", types.RequestPrevious, false},
	{"choice", "Jump to a chosen activity", types.RequestChoice, true},
	{"exit", "Exit the current activity", types.RequestExit, false},
	{"exit-all", "Exit the course entirely", types.RequestExitAll, false},
	{"abandon", "Abandon the current activity without rollup", types.RequestAbandon, false},
	{"abandon-all", "Abandon the course without rollup", types.RequestAbandonAll, false},
	{"suspend-all", "Suspend the course for later resumption", types.RequestSuspendAll, false},
}

func newNavCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Process navigation requests",
	}

	var learnerID, courseID string
	cmd.PersistentFlags().StringVarP(&learnerID, "learner", "l", "", "learner identifier (required)")
	cmd.PersistentFlags().StringVarP(&courseID, "course", "c", "", "course identifier (required)")
	cmd.MarkPersistentFlagRequired("learner")
	cmd.MarkPersistentFlagRequired("course")

	for _, verb := range navVerbs {
		verb := verb
		use := verb.use
		args := cobra.NoArgs
		if verb.takesTarget {
			use += " <activity-id>"
			args = cobra.ExactArgs(1)
		}
		cmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: verb.short,
			Args:  args,
			RunE: func(cmd *cobra.Command, cmdArgs []string) error {
				request := types.NavigationRequest{Type: verb.requestType}
				if verb.takesTarget {
					request.TargetID = cmdArgs[0]
				}
				return runNavigate(cmd, learnerID, courseID, request)
			},
		})
	}

	return cmd
}

func runNavigate(cmd *cobra.Command, learnerID, courseID string, request types.NavigationRequest) error {
	return withStore(func(store types.SessionStore) error {
		svc := sequencing.NewService(store)
		resp, err := svc.Navigate(learnerID, courseID, request)
		if err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		if flags.jsonMode {
			return printJSON(cmd, resp)
		}
		printResponse(cmd, resp)
		return nil
	})
}

// printResponse renders a navigation response in human-readable form.
func printResponse(cmd *cobra.Command, resp types.NavigationResponse) {
	out := cmd.OutOrStdout()
	if !resp.Success {
		fmt.Fprintf(out, "rejected: %s\n", resp.Exception)
		return
	}
	fmt.Fprintln(out, "accepted")
	if resp.Delivery != nil {
		fmt.Fprintf(out, "deliver: %s (%s)\n", resp.Delivery.ActivityID, resp.Delivery.Type)
		if resp.Delivery.LaunchHref != "" {
			fmt.Fprintf(out, "launch: %s\n", resp.Delivery.LaunchHref)
		}
	}
	if resp.Termination != nil {
		fmt.Fprintf(out, "terminate: %s\n", resp.Termination.Type)
	}
	if resp.CurrentActivityID != "" {
		fmt.Fprintf(out, "current: %s\n", resp.CurrentActivityID)
	}
}
