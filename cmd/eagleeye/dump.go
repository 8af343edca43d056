package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/ALT-F4-LLC/eagleeye/internal/db"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/spf13/cobra"
)

type dumpResult struct {
	Key     string     `json:"key"`
	Bytes   int        `json:"bytes"`
	File    string     `json:"file,omitempty"`
	SavedAt *time.Time `json:"saved_at,omitempty"`
	Raw     string     `json:"raw,omitempty"`
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the stored operation list exactly as persisted",
	Long: `Write the stored operation list exactly as persisted.

The output is the raw JSON array, unreadable records included, so it can be
inspected or repaired and brought back with 'eagleeye import'. With
--previous the value held before the most recent save is written instead
(sqlite backend only).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		s := getStore(cmd)

		previous, _ := cmd.Flags().GetBool("previous")

		res := dumpResult{Key: s.Key()}
		var raw string

		if previous {
			conn := getDB(cmd)
			if conn == nil {
				return cmdErr(fmt.Errorf("--previous requires the sqlite backend"), output.ErrValidation)
			}
			value, savedAt, err := db.NewSlots(conn, 0).Backup(cmd.Context(), s.Key())
			if errors.Is(err, db.ErrNotFound) {
				return cmdErr(fmt.Errorf("no previous version of %q has been kept yet", s.Key()), output.ErrNotFound)
			}
			if err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
			raw = value
			res.SavedAt = &savedAt
		} else {
			value, ok, err := s.Raw(cmd.Context())
			if err != nil {
				return cmdErr(fmt.Errorf("reading %q: %w", s.Key(), err), output.ErrGeneral)
			}
			if !ok {
				value = "[]"
			}
			raw = value
		}
		res.Bytes = len(raw)

		if file, ok := flagString(cmd, "file"); ok && file != "" {
			if err := writeFileAtomic(file, []byte(raw)); err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
			res.File = file
			w.Success(res, fmt.Sprintf("Wrote %s to %s", humanize.Bytes(uint64(res.Bytes)), file))
			return nil
		}

		if w.JSONMode {
			res.Raw = raw
			w.Success(res, "")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), raw)
		return nil
	},
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dump-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

func init() {
	dumpCmd.Flags().StringP("file", "f", "", "Write to a file instead of stdout")
	dumpCmd.Flags().Bool("previous", false, "Dump the value kept from before the last save")
	rootCmd.AddCommand(dumpCmd)
}
