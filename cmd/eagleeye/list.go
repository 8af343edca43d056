package main

import (
	"github.com/ALT-F4-LLC/eagleeye/internal/filter"
	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/render"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List planned operations",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		ops, _, err := loadOperations(cmd)
		if err != nil {
			return err
		}

		search, _ := cmd.Flags().GetString("search")
		date, _ := cmd.Flags().GetString("date")
		vehicles, _ := cmd.Flags().GetStringSlice("vehicle")
		q := filter.Query{Text: search, Date: date, Vehicles: vehicles}
		if !q.Empty() {
			ops = filter.Apply(ops, q)
		}

		if w.JSONMode {
			w.Success(ops, "")
			return nil
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		if len(ops) == 0 {
			msg := render.EmptyState("No operations planned.", "Create one with: eagleeye create --name <name>", quiet)
			if !q.Empty() {
				msg = render.EmptyState("No operations match the filters.", "", quiet)
			}
			w.Success([]model.Operation{}, msg)
			return nil
		}

		asTable, _ := cmd.Flags().GetBool("table")
		if asTable {
			w.Success(ops, render.RenderTable(ops))
		} else {
			w.Success(ops, render.RenderCards(ops, render.CardOptions{}))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("table", false, "Render a compact table instead of cards")
	listCmd.Flags().StringP("search", "s", "", "Only operations whose names, addresses or team mention this text")
	listCmd.Flags().String("date", "", "Only operations on this date")
	listCmd.Flags().StringSlice("vehicle", nil, "Only operations using every given vehicle (repeatable)")
	rootCmd.AddCommand(listCmd)
}
