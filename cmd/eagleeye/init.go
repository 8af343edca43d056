package main

import (
	"fmt"
	"os"

	"github.com/ALT-F4-LLC/eagleeye/internal/config"
	"github.com/ALT-F4-LLC/eagleeye/internal/db"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/spf13/cobra"
)

type initResult struct {
	Path          string `json:"path"`
	ConfigPath    string `json:"config_path"`
	Backend       string `json:"backend"`
	DBPath        string `json:"db_path,omitempty"`
	SchemaVersion int    `json:"schema_version,omitempty"`
	Created       bool   `json:"created"`
}

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Initialize a new eagleeye data directory",
	Annotations: map[string]string{"skipStore": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking data directory: %w", err), output.ErrGeneral)
		}

		if backend, ok := flagString(cmd, "backend"); ok && !exists {
			cfg.Settings.Storage.Backend = backend
			if err := cfg.Settings.Validate(); err != nil {
				return cmdErr(err, output.ErrValidation)
			}
		}

		if exists {
			w.Warn("Data directory already exists at %s", cfg.Dir)
		} else if err := cfg.Save(); err != nil {
			return cmdErr(fmt.Errorf("writing config: %w", err), output.ErrGeneral)
		}

		res := initResult{
			Path:       cfg.Dir,
			ConfigPath: cfg.ConfigPath,
			Backend:    cfg.Settings.Storage.Backend,
			Created:    !exists,
		}

		switch cfg.Settings.Storage.Backend {
		case config.BackendFile:
			if err := os.MkdirAll(cfg.SlotsDir(), 0o755); err != nil {
				return cmdErr(fmt.Errorf("creating slot directory: %w", err), output.ErrGeneral)
			}
		default:
			conn, err := db.OpenReady(cfg.DBPath)
			if err != nil {
				return cmdErr(fmt.Errorf("initializing database: %w", err), output.ErrGeneral)
			}
			defer conn.Close()

			schemaVersion, err := db.SchemaVersion(conn)
			if err != nil {
				return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
			}
			res.DBPath = cfg.DBPath
			res.SchemaVersion = schemaVersion
		}

		if exists {
			w.Success(res, "Data directory already initialized")
			return nil
		}

		w.Success(res, "Initialized eagleeye data directory")
		w.Info("Initialized eagleeye data directory at %s (%s backend)", cfg.Dir, res.Backend)
		w.Info("Operation plans can hold sensitive data; consider adding .eagleeye/ to your .gitignore")

		return nil
	},
}

func init() {
	initCmd.Flags().String("backend", config.BackendSQLite, "Storage backend: sqlite or file")
	rootCmd.AddCommand(initCmd)
}
