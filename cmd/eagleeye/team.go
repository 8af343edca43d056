package main

import (
	"fmt"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/spf13/cobra"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage the team assigned to a target",
}

var teamMemberCmd = &cobra.Command{
	Use:   "member",
	Short: "Add or remove team members",
}

var teamVehicleCmd = &cobra.Command{
	Use:   "vehicle",
	Short: "Add or remove team vehicles",
}

// updateTeam applies fn to the team of the referenced target and saves.
func updateTeam(cmd *cobra.Command, opRef, targetRef string, fn func(team *model.Team) error) (model.Target, error) {
	var target model.Target
	_, err := updateOperation(cmd, opRef, func(op *model.Operation) error {
		t, err := op.MatchTarget(targetRef)
		if err != nil {
			return err
		}
		if err := fn(&t.Team); err != nil {
			return err
		}
		target = *t
		return nil
	})
	return target, err
}

var teamMemberAddCmd = &cobra.Command{
	Use:   "add <operation> <target> <name>",
	Short: "Add a member to a target's team",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		role, _ := flagString(cmd, "role")

		m := model.NewTeamMember(args[2], role)
		t, err := updateTeam(cmd, args[0], args[1], func(team *model.Team) error {
			if err := team.AddMember(m); err != nil {
				return cmdErr(err, output.ErrValidation)
			}
			return nil
		})
		if err != nil {
			return err
		}

		w.Success(m, fmt.Sprintf("Added %s to the %s team", m.Label(), t.Name))
		return nil
	},
}

var teamMemberRemoveCmd = &cobra.Command{
	Use:     "remove <operation> <target> <member>",
	Aliases: []string{"rm"},
	Short:   "Remove a member from a target's team",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		var removed model.TeamMember
		t, err := updateTeam(cmd, args[0], args[1], func(team *model.Team) error {
			var err error
			removed, err = team.RemoveMember(args[2])
			return err
		})
		if err != nil {
			return err
		}

		w.Success(removed, fmt.Sprintf("Removed %s from the %s team", removed.Label(), t.Name))
		return nil
	},
}

var teamVehicleAddCmd = &cobra.Command{
	Use:   "add <operation> <target> <vehicle>",
	Short: "Assign a vehicle to a target's team",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		t, err := updateTeam(cmd, args[0], args[1], func(team *model.Team) error {
			if err := team.AddVehicle(args[2]); err != nil {
				return cmdErr(err, output.ErrValidation)
			}
			return nil
		})
		if err != nil {
			return err
		}

		w.Success(t.Team, fmt.Sprintf("Assigned %s to the %s team", model.CleanText(args[2]), t.Name))
		return nil
	},
}

var teamVehicleRemoveCmd = &cobra.Command{
	Use:     "remove <operation> <target> <vehicle>",
	Aliases: []string{"rm"},
	Short:   "Remove a vehicle from a target's team",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		t, err := updateTeam(cmd, args[0], args[1], func(team *model.Team) error {
			return team.RemoveVehicle(args[2])
		})
		if err != nil {
			return err
		}

		w.Success(t.Team, fmt.Sprintf("Removed %s from the %s team", model.CleanText(args[2]), t.Name))
		return nil
	},
}

var teamLeaderCmd = &cobra.Command{
	Use:   "leader <operation> <target> <name>",
	Short: "Set the leader of a target's team",
	Long:  "Set the leader of a target's team. Pass an empty name to clear it.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		t, err := updateTeam(cmd, args[0], args[1], func(team *model.Team) error {
			team.Leader = model.CleanText(args[2])
			return nil
		})
		if err != nil {
			return err
		}

		if t.Team.Leader == "" {
			w.Success(t.Team, fmt.Sprintf("Cleared the leader of the %s team", t.Name))
		} else {
			w.Success(t.Team, fmt.Sprintf("%s now leads the %s team", t.Team.Leader, t.Name))
		}
		return nil
	},
}

func init() {
	teamMemberAddCmd.Flags().StringP("role", "r", "", "Member role, e.g. driver")

	teamMemberCmd.AddCommand(teamMemberAddCmd, teamMemberRemoveCmd)
	teamVehicleCmd.AddCommand(teamVehicleAddCmd, teamVehicleRemoveCmd)
	teamCmd.AddCommand(teamMemberCmd, teamVehicleCmd, teamLeaderCmd)
	rootCmd.AddCommand(teamCmd)
}
