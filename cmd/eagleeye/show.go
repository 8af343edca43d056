package main

import (
	"github.com/ALT-F4-LLC/eagleeye/internal/render"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <operation>",
	Short: "Show an operation with its targets and teams",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		ops, idx, err := findOperation(cmd, args[0])
		if err != nil {
			return err
		}

		w.Success(ops[idx], render.RenderDetail(ops[idx]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
