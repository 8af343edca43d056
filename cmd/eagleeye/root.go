package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ALT-F4-LLC/eagleeye/internal/config"
	"github.com/ALT-F4-LLC/eagleeye/internal/db"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/ALT-F4-LLC/eagleeye/internal/storage"
	"github.com/ALT-F4-LLC/eagleeye/internal/store"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const (
	dbKey    contextKey = "db"
	cfgKey   contextKey = "cfg"
	storeKey contextKey = "store"
)

// CmdError wraps an error with a machine-readable error code for structured output.
// Data, when set, is returned alongside the error in JSON mode.
type CmdError struct {
	Err  error
	Code output.ErrorCode
	Data any
}

func (e *CmdError) Error() string { return e.Err.Error() }

func (e *CmdError) Unwrap() error { return e.Err }

func cmdErr(err error, code output.ErrorCode) *CmdError {
	return &CmdError{Err: err, Code: code}
}

var rootCmd = &cobra.Command{
	Use:     "eagleeye",
	Short:   "Local-first tactical operation planner",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger := newLogger(verbose)
		slog.SetDefault(logger)

		cfg, err := config.Resolve()
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		ctx := context.WithValue(cmd.Context(), cfgKey, cfg)

		if _, ok := cmd.Annotations["skipStore"]; ok {
			cmd.SetContext(ctx)
			return nil
		}

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking data directory: %w", err), output.ErrGeneral)
		}
		if !exists {
			return cmdErr(
				fmt.Errorf("no eagleeye data directory found, run 'eagleeye init' to create one"),
				output.ErrNotFound,
			)
		}

		port, conn, err := openPort(cfg)
		if err != nil {
			return err
		}
		if conn != nil {
			ctx = context.WithValue(ctx, dbKey, conn)
		}

		opts := []store.Option{store.WithLogger(logger)}
		if force, _ := cmd.Flags().GetBool("force"); force {
			opts = append(opts, store.WithOverwriteCorrupt())
		}

		cmd.SetContext(context.WithValue(ctx, storeKey, store.New(port, opts...)))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		conn, ok := cmd.Context().Value(dbKey).(*sql.DB)
		if ok && conn != nil {
			return conn.Close()
		}
		return nil
	},
}

// openPort opens the storage backend selected in config.toml. The returned
// *sql.DB is nil for backends that do not use the database.
func openPort(cfg *config.Config) (storage.Port, *sql.DB, error) {
	quota := cfg.Settings.Storage.QuotaBytes

	switch cfg.Settings.Storage.Backend {
	case config.BackendFile:
		port, err := storage.NewFile(cfg.SlotsDir(), quota)
		if err != nil {
			return nil, nil, cmdErr(fmt.Errorf("opening slot directory: %w", err), output.ErrGeneral)
		}
		return port, nil, nil
	default:
		conn, err := db.OpenReady(cfg.DBPath)
		if err != nil {
			return nil, nil, cmdErr(fmt.Errorf("failed to open database: %w", err), output.ErrGeneral)
		}
		return db.NewSlots(conn, quota), conn, nil
	}
}

// newLogger returns the diagnostics logger. Library packages log load and
// save problems through it; it writes to stderr so JSON output stays clean.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().Bool("force", false, "Allow overwriting a stored operation list that cannot be read")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func getWriter(cmd *cobra.Command) *output.Writer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return output.New(jsonMode, quietMode)
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

func getDB(cmd *cobra.Command) *sql.DB {
	conn, _ := cmd.Context().Value(dbKey).(*sql.DB)
	return conn
}

func getStore(cmd *cobra.Command) *store.Store {
	s, _ := cmd.Context().Value(storeKey).(*store.Store)
	return s
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		jsonMode, _ := rootCmd.PersistentFlags().GetBool("json")
		quietMode, _ := rootCmd.PersistentFlags().GetBool("quiet")
		w := output.New(jsonMode, quietMode)

		var ce *CmdError
		if errors.As(err, &ce) {
			return w.ErrorWithData(ce.Err, ce.Code, ce.Data)
		}
		return w.Error(err, output.ErrGeneral)
	}
	return 0
}
