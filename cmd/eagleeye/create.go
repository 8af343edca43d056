package main

import (
	"fmt"
	"time"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Plan a new operation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		name, _ := flagString(cmd, "name")
		if name == "" {
			return cmdErr(fmt.Errorf("--name is required"), output.ErrValidation)
		}

		op := newOperation(cmd, name, time.Now())

		ops, _, err := loadOperations(cmd)
		if err != nil {
			return err
		}

		updated, _ := model.Upsert(ops, op)
		if err := saveOperations(cmd, updated, op); err != nil {
			return err
		}

		w.Success(op, fmt.Sprintf("Created %s: %s", model.ShortID(op.ID), op.Name))
		return nil
	},
}

// dateLayout is the form operation dates are stored in.
const dateLayout = "2006-01-02"

// newOperation builds an operation from the create flags. The date defaults
// to the day of now.
func newOperation(cmd *cobra.Command, name string, now time.Time) model.Operation {
	op := model.NewOperation(name)
	op.Date = now.Format(dateLayout)
	applyOperationFlags(cmd, &op)
	return op
}

// applyOperationFlags copies the briefing flags the user set onto op.
func applyOperationFlags(cmd *cobra.Command, op *model.Operation) {
	if v, ok := flagString(cmd, "name"); ok {
		op.Name = v
	}
	if v, ok := flagString(cmd, "location"); ok {
		op.BriefingLocation = v
	}
	if v, ok := flagString(cmd, "time"); ok {
		op.BriefingTime = v
	}
	if v, ok := flagString(cmd, "date"); ok {
		op.Date = v
	}
}

func addOperationFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", "", "Operation name")
	cmd.Flags().StringP("location", "l", "", "Briefing location")
	cmd.Flags().StringP("time", "t", "", "Briefing time, e.g. 05:00")
	cmd.Flags().StringP("date", "d", "", "Operation date, e.g. 2024-03-10 (create defaults to today)")
}

func init() {
	addOperationFlags(createCmd)
	rootCmd.AddCommand(createCmd)
}
