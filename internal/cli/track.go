package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pathway/pkg/sequencing"
	"github.com/mesh-intelligence/pathway/pkg/types"
)

func newTrackCmd() *cobra.Command {
	var (
		learnerID   string
		courseID    string
		activityID  string
		completed   bool
		measure     float64
		hasMeasure  bool
		duration    time.Duration
		suspendData string
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Record progress for the current attempt on a leaf activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasMeasure = cmd.Flags().Changed("measure")
			report := sequencing.ProgressReport{
				ActivityID:  activityID,
				Completed:   completed,
				Duration:    duration,
				SuspendData: suspendData,
			}
			if hasMeasure {
				report.Measure = &measure
			}
			return withStore(func(store types.SessionStore) error {
				svc := sequencing.NewService(store)
				if err := svc.RecordProgress(learnerID, courseID, report); err != nil {
					return fmt.Errorf("record progress: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded progress for %s\n", activityID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&learnerID, "learner", "l", "", "learner identifier (required)")
	cmd.Flags().StringVarP(&courseID, "course", "c", "", "course identifier (required)")
	cmd.Flags().StringVarP(&activityID, "activity", "a", "", "leaf activity identifier (required)")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark the attempt completed")
	cmd.Flags().Float64Var(&measure, "measure", 0, "normalized score in [-1, 1]")
	cmd.Flags().DurationVar(&duration, "duration", 0, "time spent in this report")
	cmd.Flags().StringVar(&suspendData, "suspend-data", "", "opaque content state to persist")
	cmd.MarkFlagRequired("learner")
	cmd.MarkFlagRequired("course")
	cmd.MarkFlagRequired("activity")

	return cmd
}
