package main

import (
	"fmt"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <operation>",
	Short: "Update an operation's briefing details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		changed := false
		for _, f := range []string{"name", "location", "time", "date"} {
			changed = changed || cmd.Flags().Changed(f)
		}
		if !changed {
			return cmdErr(fmt.Errorf("nothing to update: set at least one of --name, --location, --time, --date"), output.ErrValidation)
		}

		if name, ok := flagString(cmd, "name"); ok && name == "" {
			return cmdErr(fmt.Errorf("--name cannot be blank"), output.ErrValidation)
		}

		op, err := updateOperation(cmd, args[0], func(op *model.Operation) error {
			applyOperationFlags(cmd, op)
			return nil
		})
		if err != nil {
			return err
		}

		w.Success(op, fmt.Sprintf("Updated %s: %s", model.ShortID(op.ID), op.Name))
		return nil
	},
}

func init() {
	addOperationFlags(editCmd)
	rootCmd.AddCommand(editCmd)
}
