package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
	"github.com/ALT-F4-LLC/eagleeye/internal/output"
	"github.com/spf13/cobra"
)

type mapResult struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Stops int    `json:"stops"`
}

var mapCmd = &cobra.Command{
	Use:   "map <operation>",
	Short: "Print a route from the briefing location through every target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		ops, idx, err := findOperation(cmd, args[0])
		if err != nil {
			return err
		}
		op := ops[idx]

		res := mapResult{ID: op.ID, URL: model.MapRouteURL(op), Stops: countStops(op)}
		if res.Stops == 0 {
			w.Warn("Operation %s has no briefing location or target addresses", model.ShortID(op.ID))
		}

		if open, _ := cmd.Flags().GetBool("open"); open {
			if err := openURL(cmd.Context(), res.URL); err != nil {
				return cmdErr(fmt.Errorf("opening browser: %w", err), output.ErrGeneral)
			}
		}

		w.Success(res, res.URL)
		return nil
	},
}

func countStops(op model.Operation) int {
	n := 0
	if model.CleanText(op.BriefingLocation) != "" {
		n++
	}
	for _, t := range op.Targets {
		if model.CleanText(t.Address) != "" {
			n++
		}
	}
	return n
}

// openURL hands url to the platform's default opener.
func openURL(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.CommandContext(ctx, "open", url)
	case "windows":
		c = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.CommandContext(ctx, "xdg-open", url)
	}
	return c.Run()
}

func init() {
	mapCmd.Flags().Bool("open", false, "Open the route in the default browser")
	rootCmd.AddCommand(mapCmd)
}
