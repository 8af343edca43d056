package main

import (
	"fmt"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/spf13/cobra"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage the targets of an operation",
}

var targetAddCmd = &cobra.Command{
	Use:   "add <operation>",
	Short: "Add a target to an operation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		name, _ := flagString(cmd, "name")
		if name == "" {
			return cmdErr(fmt.Errorf("--name is required"), output.ErrValidation)
		}

		var added model.Target
		op, err := updateOperation(cmd, args[0], func(op *model.Operation) error {
			added = model.NewTarget(name)
			if err := applyTargetFlags(cmd, &added); err != nil {
				return err
			}
			return op.AddTarget(added)
		})
		if err != nil {
			return err
		}

		w.Success(added, fmt.Sprintf("Added target %s: %s to %s", model.ShortID(added.ID), added.Name, op.Name))
		return nil
	},
}

var targetEditCmd = &cobra.Command{
	Use:   "edit <operation> <target>",
	Short: "Update a target's details",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		var edited model.Target
		_, err := updateOperation(cmd, args[0], func(op *model.Operation) error {
			t, err := op.MatchTarget(args[1])
			if err != nil {
				return err
			}
			if err := applyTargetFlags(cmd, t); err != nil {
				return err
			}
			if clearCoords, _ := cmd.Flags().GetBool("clear-coords"); clearCoords {
				t.Coordinates = nil
			}
			edited = *t
			return nil
		})
		if err != nil {
			return err
		}

		w.Success(edited, fmt.Sprintf("Updated target %s: %s", model.ShortID(edited.ID), edited.Name))
		return nil
	},
}

var targetRemoveCmd = &cobra.Command{
	Use:     "remove <operation> <target>",
	Aliases: []string{"rm"},
	Short:   "Remove a target and its team from an operation",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		yes, _ := cmd.Flags().GetBool("yes")

		if !yes && w.JSONMode {
			return cmdErr(fmt.Errorf("refusing to remove a target without --yes in JSON mode"), output.ErrValidation)
		}

		var removed model.Target
		cancelled := false
		_, err := updateOperation(cmd, args[0], func(op *model.Operation) error {
			t, err := op.MatchTarget(args[1])
			if err != nil {
				return err
			}
			removed = *t
			if !yes {
				ok, err := confirm(fmt.Sprintf("Remove target %q from %q?", t.Name, op.Name), "Remove")
				if err != nil {
					return err
				}
				if !ok {
					cancelled = true
					return errCancelled
				}
			}
			return op.RemoveTarget(removed.ID)
		})
		if cancelled {
			w.Info("Cancelled.")
			return nil
		}
		if err != nil {
			return err
		}

		w.Success(removed, fmt.Sprintf("Removed target %s: %s", model.ShortID(removed.ID), removed.Name))
		return nil
	},
}

// applyTargetFlags copies the target flags the user set onto t.
func applyTargetFlags(cmd *cobra.Command, t *model.Target) error {
	if v, ok := flagString(cmd, "name"); ok {
		t.Name = v
	}
	if v, ok := flagString(cmd, "address"); ok {
		t.Address = v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		t.Description = v
	}
	if v, ok := flagString(cmd, "leader"); ok {
		t.Team.Leader = v
	}
	if v, ok := flagString(cmd, "coords"); ok {
		c, err := model.ParseCoordinates(v)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}
		t.Coordinates = &c
	}
	return nil
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", "", "Target name")
	cmd.Flags().StringP("address", "a", "", "Street address, used for the route")
	cmd.Flags().String("description", "", "Free-form description (markdown)")
	cmd.Flags().String("coords", "", `Coordinates as "lat,lng"`)
	cmd.Flags().String("leader", "", "Team leader")
}

func init() {
	addTargetFlags(targetAddCmd)
	addTargetFlags(targetEditCmd)
	targetEditCmd.Flags().Bool("clear-coords", false, "Remove the target's coordinates")
	targetRemoveCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	targetCmd.AddCommand(targetAddCmd, targetEditCmd, targetRemoveCmd)
	rootCmd.AddCommand(targetCmd)
}
