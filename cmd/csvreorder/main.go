package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/colarrange/internal/config"
	"github.com/JonMunkholm/colarrange/internal/core"
)

var version = "0.1.0-dev"

// app carries what every command needs: where to write and how to find the
// arrangement store.
type app struct {
	out    io.Writer
	lookup func(string) string

	store    string
	storeDir string
	storeKey string
	logFile  string
}

func main() {
	// .env is optional for the CLI; explicit environment wins.
	_ = godotenv.Load()

	a := &app{out: os.Stdout, lookup: os.Getenv}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errorText(err))
		os.Exit(1)
	}
}

// errorText shows the coded user message for known failures and the raw
// error for everything else.
func errorText(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "csvreorder",
		Short: "Reorder, hide and add CSV columns, and reuse saved arrangements",
		Long: `csvreorder rearranges the columns of a CSV file. Arrangements (column
order, hidden columns and blank custom columns) are saved by name and
recommended for later files whose headers match.

Arrangements are stored in the backend selected by STORAGE_BACKEND or
--store, shared with the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(a.out)
	rootCmd.PersistentFlags().StringVar(&a.store, "store", "", "Arrangement store: memory|file|sqlite|postgres (default from STORAGE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&a.storeDir, "store-dir", "", "Directory for the file store, or the sqlite database path")
	rootCmd.PersistentFlags().StringVar(&a.storeKey, "store-key", "", "Name of the arrangement collection")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Append logs to this file (default: warnings to stderr, none in the TUI)")

	tuiCmd := &cobra.Command{
		Use:   "tui <file>",
		Short: "Arrange a file's columns interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runTUI,
	}
	tuiCmd.Flags().String("out-dir", "", "Directory for exports (default: the file's directory)")

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a file's columns, optionally rearranged by a saved arrangement",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runExport,
	}
	exportCmd.Flags().String("arrangement", "", "Name or ID of the saved arrangement to apply")
	exportCmd.Flags().String("format", "csv", "Output format: csv|xlsx")
	exportCmd.Flags().String("out", "", "Output path, - for stdout (default: reordered_<file> next to the input)")

	matchCmd := &cobra.Command{
		Use:   "match <file>",
		Short: "List saved arrangements that fit a file's headers",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runMatch,
	}

	arrangementsCmd := &cobra.Command{
		Use:     "arrangements",
		Aliases: []string{"arr"},
		Short:   "Manage saved arrangements",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved arrangements",
		Args:  cobra.NoArgs,
		RunE:  a.runList,
	}

	arrExportCmd := &cobra.Command{
		Use:   "export [ids...]",
		Short: "Export arrangements to a JSON document (all when no ids are given)",
		RunE:  a.runArrangementsExport,
	}
	arrExportCmd.Flags().String("out", "", "Output path, - for stdout (default: generated file name)")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import arrangements from an exported JSON document",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runImport,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved arrangement",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runDelete,
	}

	arrangementsCmd.AddCommand(listCmd, arrExportCmd, importCmd, deleteCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "csvreorder %s\n", version)
		},
	}

	rootCmd.AddCommand(tuiCmd, exportCmd, matchCmd, arrangementsCmd, versionCmd)
	return rootCmd
}

// loadConfig reads the environment and applies the store flags on top.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(a.lookup)
	if err != nil {
		return nil, err
	}

	if a.store != "" {
		cfg.Storage.Backend = a.store
	}
	if a.storeKey != "" {
		cfg.Storage.Key = a.storeKey
	}
	if a.storeDir != "" {
		switch cfg.Storage.Backend {
		case config.BackendSQLite:
			cfg.Storage.SQLitePath = a.storeDir
		default:
			cfg.Storage.Dir = a.storeDir
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging sends logs to --log-file when given, else to w at warn level
// at most.
func (a *app) setupLogging(cfg *config.Config, w io.Writer) (func(), error) {
	if a.logFile == "" {
		level := cfg.Logging.Level
		if level == "debug" || level == "info" {
			level = "warn"
		}
		slogSetup(w, level, cfg.Logging.Format)
		return func() {}, nil
	}

	f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slogSetup(f, cfg.Logging.Level, cfg.Logging.Format)
	return func() {
		slog.Debug("closing log file")
		f.Close()
	}, nil
}
