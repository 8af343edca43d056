package main

import (
	"errors"
	"fmt"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

type deleteResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var deleteCmd = &cobra.Command{
	Use:     "delete <operation>",
	Aliases: []string{"rm"},
	Short:   "Delete an operation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		yes, _ := cmd.Flags().GetBool("yes")

		ops, idx, err := findOperation(cmd, args[0])
		if err != nil {
			return err
		}
		op := ops[idx]

		if !yes {
			// JSON mode cannot prompt.
			if w.JSONMode {
				return cmdErr(fmt.Errorf("refusing to delete %s without --yes in JSON mode", model.ShortID(op.ID)), output.ErrValidation)
			}

			confirmed, err := confirm(fmt.Sprintf("Delete operation %q with %d target(s)? This cannot be undone.", op.Name, len(op.Targets)), "Delete")
			if err != nil {
				return err
			}
			if !confirmed {
				w.Info("Cancelled.")
				return nil
			}
		}

		remaining, _ := model.RemoveByID(ops, op.ID)
		if err := saveOperations(cmd, remaining, deleteResult{ID: op.ID, Name: op.Name}); err != nil {
			return err
		}

		w.Success(deleteResult{ID: op.ID, Name: op.Name}, fmt.Sprintf("Deleted %s: %s", model.ShortID(op.ID), op.Name))
		return nil
	},
}

// confirm asks a yes/no question. An aborted prompt counts as no.
func confirm(title, affirmative string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
	}
	return confirmed, nil
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
