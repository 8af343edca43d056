package main

import (
	"fmt"
	"os"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/ALT-F4-LLC/eagleeye/internal/store"
	"github.com/spf13/cobra"
)

type importResult struct {
	Imported    int                 `json:"imported"`
	Updated     int                 `json:"updated"`
	Total       int                 `json:"total"`
	Quarantined []store.Quarantined `json:"quarantined"`
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import operations from a dump file",
	Long: `Import operations from a dump file.

Records are validated exactly as they are when the stored list is loaded;
invalid records are reported and skipped. Without flags the import only
proceeds when no operations exist yet. --merge adds new operations and
replaces existing ones with the same id. --replace discards the current
list first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		s := getStore(cmd)

		merge, _ := cmd.Flags().GetBool("merge")
		replace, _ := cmd.Flags().GetBool("replace")
		yes, _ := cmd.Flags().GetBool("yes")

		if merge && replace {
			return cmdErr(fmt.Errorf("--merge and --replace are mutually exclusive"), output.ErrValidation)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return cmdErr(fmt.Errorf("reading file: %w", err), output.ErrGeneral)
		}

		decoded := s.Decode(data)
		if decoded.Corrupt {
			return cmdErr(fmt.Errorf("%s is not a JSON array of operations: %s", args[0], decoded.CorruptReason), output.ErrValidation)
		}
		for _, q := range decoded.Quarantined {
			w.Warn("Skipping record %d %s: %s", q.Index, model.ShortID(q.ID), q.Reason)
		}

		current, _, err := loadOperations(cmd)
		if err != nil {
			return err
		}

		res := importResult{Quarantined: decoded.Quarantined}
		if res.Quarantined == nil {
			res.Quarantined = []store.Quarantined{}
		}

		var next []model.Operation
		switch {
		case replace:
			if len(current) > 0 && !yes {
				if w.JSONMode {
					return cmdErr(fmt.Errorf("--replace needs --yes in JSON mode"), output.ErrValidation)
				}
				ok, err := confirm(fmt.Sprintf("This will delete all %d existing operation(s) and replace them with the import file. Continue?", len(current)), "Yes, replace all data")
				if err != nil {
					return err
				}
				if !ok {
					w.Info("Cancelled.")
					return nil
				}
			}
			next = decoded.Operations
			res.Imported = len(next)
		case merge || len(current) == 0:
			next, res.Imported, res.Updated = mergeOperations(current, decoded.Operations)
		default:
			return cmdErr(fmt.Errorf("%d operation(s) already exist: use --merge or --replace", len(current)), output.ErrConflict)
		}
		res.Total = len(next)

		if err := saveOperations(cmd, next, res); err != nil {
			return err
		}

		w.Success(res, fmt.Sprintf("Imported %d operation(s), updated %d, skipped %d; %d total",
			res.Imported, res.Updated, len(res.Quarantined), res.Total))
		return nil
	},
}

// mergeOperations upserts incoming into current. New operations land at the
// top in the order they appear in incoming.
func mergeOperations(current, incoming []model.Operation) ([]model.Operation, int, int) {
	out := current
	added, updated := 0, 0
	for i := len(incoming) - 1; i >= 0; i-- {
		var inserted bool
		out, inserted = model.Upsert(out, incoming[i])
		if inserted {
			added++
		} else {
			updated++
		}
	}
	if out == nil {
		out = []model.Operation{}
	}
	return out, added, updated
}

func init() {
	importCmd.Flags().Bool("merge", false, "Merge with existing operations")
	importCmd.Flags().Bool("replace", false, "Replace all existing operations")
	importCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt for --replace")
	rootCmd.AddCommand(importCmd)
}
