// Package cli implements the pathway command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pathway/pkg/sqlite"
	"github.com/mesh-intelligence/pathway/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// NewRootCmd creates the top-level "pathway" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pathway",
		Short: "Sequencing and navigation engine for hierarchical courses",
		Long: "Pathway decides which learning activity a learner may attempt next,\n" +
			"tracks completion and success across the course hierarchy, and turns\n" +
			"navigation intents into delivery or termination instructions.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if flags.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: .pathway)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .pathway-db)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newCourseCmd())
	root.AddCommand(newNavCmd())
	root.AddCommand(newTrackCmd())
	root.AddCommand(newSessionCmd())
	root.AddCommand(newLogCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitUserError)
	}
}

// resolveConfigDir returns the config directory from flag, env, or default.
func resolveConfigDir() string {
	if flags.configDir != "" {
		return flags.configDir
	}
	if v := os.Getenv("PATHWAY_CONFIG_DIR"); v != "" {
		return v
	}
	return ".pathway"
}

// resolveDataDir returns the data directory from flag, config, or default.
func resolveDataDir() string {
	if flags.dataDir != "" {
		return flags.dataDir
	}
	v, err := loadConfig(resolveConfigDir())
	if err == nil {
		if dir := v.GetString(cfgKeyDataDir); dir != "" {
			return dir
		}
	}
	return defaultDataDir
}

// withStore attaches the SQLite store, runs fn, and detaches.
func withStore(fn func(store types.SessionStore) error) error {
	store := sqlite.NewStore()
	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: resolveDataDir(),
	}
	if err := store.Attach(cfg); err != nil {
		return fmt.Errorf("attach storage: %w", err)
	}
	defer store.Detach()

	slog.Debug("store attached", "data_dir", cfg.DataDir)
	return fn(store)
}
