package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pathway/internal/course"
	"github.com/mesh-intelligence/pathway/pkg/types"
)

func newCourseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Manage course definitions",
	}
	cmd.AddCommand(newCourseImportCmd())
	cmd.AddCommand(newCourseListCmd())
	cmd.AddCommand(newCourseShowCmd())
	return cmd
}

func newCourseImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a course definition from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := course.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("load course: %w", err)
			}
			return withStore(func(store types.SessionStore) error {
				if err := store.SaveCourse(c); err != nil {
					return fmt.Errorf("save course: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported course %s (%d activities)\n", c.CourseID, len(c.Nodes))
				return nil
			})
		},
	}
}

func newCourseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store types.SessionStore) error {
				courses, err := store.ListCourses()
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return printJSON(cmd, courses)
				}
				for _, c := range courses {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d activities\n", c.CourseID, c.Title, len(c.Nodes))
				}
				return nil
			})
		},
	}
}

func newCourseShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <course-id>",
		Short: "Show a stored course definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store types.SessionStore) error {
				c, err := store.GetCourse(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, c)
			})
		},
	}
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
