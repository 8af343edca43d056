package main

import (
	"fmt"
	"os"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/ALT-F4-LLC/eagleeye/internal/config"
	"github.com/ALT-F4-LLC/eagleeye/internal/db"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/ALT-F4-LLC/eagleeye/internal/storage"
	"github.com/spf13/cobra"
)

type configInfo struct {
	Dir           string          `json:"dir"`
	ConfigPath    string          `json:"config_path"`
	DBPath        string          `json:"db_path,omitempty"`
	DBSizeBytes   int64           `json:"db_size_bytes,omitempty"`
	SchemaVersion int             `json:"schema_version,omitempty"`
	Usage         *storage.Usage  `json:"usage,omitempty"`
	Settings      config.Settings `json:"settings"`
	PathEnv       string          `json:"eagleeye_path_env"`
	PathSet       bool            `json:"eagleeye_path_set"`
	Initialized   bool            `json:"initialized"`
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Display eagleeye configuration and storage usage",
	Annotations: map[string]string{"skipStore": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		info := configInfo{
			Dir:        cfg.Dir,
			ConfigPath: cfg.ConfigPath,
			Settings:   cfg.Settings,
			PathEnv:    os.Getenv("EAGLEEYE_PATH"),
			PathSet:    cfg.EnvVarSet,
		}

		exists, err := cfg.Exists()
		if err != nil {
			return cmdErr(fmt.Errorf("checking data directory: %w", err), output.ErrGeneral)
		}
		if !exists {
			w.Warn("No eagleeye data directory found. Run 'eagleeye init' to create one.")
			w.Success(info, formatConfigHuman(info))
			return nil
		}
		info.Initialized = true

		port, conn, err := openPort(cfg)
		if err != nil {
			return err
		}
		if conn != nil {
			defer conn.Close()

			info.DBPath = cfg.DBPath
			if info.SchemaVersion, err = db.SchemaVersion(conn); err != nil {
				return cmdErr(fmt.Errorf("reading schema version: %w", err), output.ErrGeneral)
			}
			if stat, err := os.Stat(cfg.DBPath); err == nil {
				info.DBSizeBytes = stat.Size()
			}
		}

		usage, err := port.Usage(cmd.Context())
		if err != nil {
			return cmdErr(fmt.Errorf("reading storage usage: %w", err), output.ErrGeneral)
		}
		info.Usage = &usage

		w.Success(info, formatConfigHuman(info))
		return nil
	},
}

func formatEnvValue(val string) string {
	if val == "" {
		return "(not set)"
	}
	return val
}

func formatUsage(u storage.Usage) string {
	used := humanize.Bytes(uint64(u.UsedBytes))
	if u.QuotaBytes <= 0 {
		return used + " (no limit)"
	}
	pct := float64(u.UsedBytes) / float64(u.QuotaBytes) * 100
	return fmt.Sprintf("%s of %s (%.1f%%)", used, humanize.Bytes(uint64(u.QuotaBytes)), pct)
}

func formatConfigHuman(info configInfo) string {
	var b strings.Builder

	dir := info.Dir
	if !info.Initialized {
		dir += " (not found)"
	}
	fmt.Fprintf(&b, "Data directory:  %s\n", dir)
	fmt.Fprintf(&b, "Config file:     %s\n", info.ConfigPath)
	fmt.Fprintf(&b, "Backend:         %s\n", info.Settings.Storage.Backend)
	if info.DBPath != "" {
		fmt.Fprintf(&b, "Database path:   %s\n", info.DBPath)
		fmt.Fprintf(&b, "Database size:   %s\n", humanize.Bytes(uint64(info.DBSizeBytes)))
		fmt.Fprintf(&b, "Schema version:  %d\n", info.SchemaVersion)
	}
	if info.Usage != nil {
		fmt.Fprintf(&b, "Slot usage:      %s\n", formatUsage(*info.Usage))
	}
	img := info.Settings.Images
	fmt.Fprintf(&b, "Photos:          max %dx%d, quality %d, timeout %s\n", img.MaxWidth, img.MaxHeight, img.Quality, img.Timeout)
	exportDir := info.Settings.Export.Dir
	if exportDir == "" {
		exportDir = "(working directory)"
	}
	fmt.Fprintf(&b, "Export dir:      %s\n", exportDir)
	fmt.Fprintf(&b, "EAGLEEYE_PATH:   %s", formatEnvValue(info.PathEnv))

	return b.String()
}

func init() {
	rootCmd.AddCommand(configCmd)
}
