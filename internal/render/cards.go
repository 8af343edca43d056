package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"
	"golang.org/x/term"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
)

const (
	cardWidth        = 40
	cardGap          = 1
	defaultTermWidth = 100
)

// CardOptions configures card rendering.
type CardOptions struct {
	// Width overrides the detected terminal width. Zero means detect.
	Width int
}

// RenderCards renders operations as a grid of cards, newest first, in the
// order given.
func RenderCards(ops []model.Operation, opts CardOptions) string {
	if len(ops) == 0 {
		return EmptyState("No operations planned.", "Create one with: eagleeye create --name <name>", false)
	}

	if !ColorsEnabled() {
		return renderPlainCards(ops)
	}

	width := opts.Width
	if width <= 0 {
		width = terminalWidth()
	}
	perRow := max((width+cardGap)/(cardWidth+cardGap), 1)

	var rows []string
	for start := 0; start < len(ops); start += perRow {
		end := min(start+perRow, len(ops))
		var cards []string
		for i, op := range ops[start:end] {
			card := renderColorCard(op)
			if i > 0 {
				card = lipgloss.NewStyle().MarginLeft(cardGap).Render(card)
			}
			cards = append(cards, card)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// terminalWidth returns the current terminal width, falling back to a default.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}

func renderColorCard(op model.Operation) string {
	contentWidth := cardWidth - 4 // border and padding

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	lines := []string{
		nameStyle.Render(truncate(orDash(op.Name), contentWidth)),
		idStyle.Render(model.ShortID(op.ID)),
		fmt.Sprintf("%s %s  %s", labelStyle.Render("Date:"), orDash(op.Date), orDash(op.BriefingTime)),
		fmt.Sprintf("%s %s", labelStyle.Render("Briefing:"), truncate(orDash(op.BriefingLocation), contentWidth-10)),
		summaryLine(op),
	}

	cardStyle := lipgloss.NewStyle().
		Width(cardWidth-2).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor)
	if len(op.Targets) == 0 {
		cardStyle = cardStyle.BorderForeground(warnColor)
	}

	return cardStyle.Render(strings.Join(lines, "\n"))
}

// summaryLine counts targets, team members and vehicles across op.
func summaryLine(op model.Operation) string {
	members, vehicles := 0, 0
	for _, t := range op.Targets {
		members += len(t.Team.Members)
		vehicles += len(t.Team.Vehicles)
	}
	return strings.Join([]string{
		english.Plural(len(op.Targets), "target", ""),
		english.Plural(members, "member", ""),
		english.Plural(vehicles, "vehicle", ""),
	}, " / ")
}

// --- Plain text fallback ---

func renderPlainCards(ops []model.Operation) string {
	var b strings.Builder
	for i, op := range ops {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== %s [%s] ===\n", truncate(orDash(op.Name), maxNameWidth), model.ShortID(op.ID))
		fmt.Fprintf(&b, "  Date: %s  %s\n", orDash(op.Date), orDash(op.BriefingTime))
		fmt.Fprintf(&b, "  Briefing: %s\n", orDash(op.BriefingLocation))
		fmt.Fprintf(&b, "  %s\n", summaryLine(op))
	}
	return b.String()
}
