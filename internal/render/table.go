package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
)

var tableHeaders = []string{"ID", "Name", "Date", "Time", "Briefing", "Targets"}

// RenderTable renders operations as a compact table.
func RenderTable(ops []model.Operation) string {
	if len(ops) == 0 {
		return EmptyState("No operations planned.", "Create one with: eagleeye create --name <name>", false)
	}

	if !ColorsEnabled() {
		return renderPlainTable(ops)
	}

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		rows = append(rows, operationRow(op))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("15"))
			}
			switch col {
			case 0:
				return s.Foreground(lipgloss.Color("8"))
			case 1:
				return s.Bold(true)
			case 5:
				if row >= 0 && row < len(ops) && len(ops[row].Targets) == 0 {
					return s.Foreground(warnColor)
				}
				return s
			default:
				return s
			}
		})

	return t.Render()
}

func operationRow(op model.Operation) []string {
	return []string{
		model.ShortID(op.ID),
		truncate(op.Name, maxNameWidth),
		orDash(op.Date),
		orDash(op.BriefingTime),
		truncate(orDash(op.BriefingLocation), maxNameWidth),
		strconv.Itoa(len(op.Targets)),
	}
}

func renderPlainTable(ops []model.Operation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-10s %-40s %-12s %-6s %-30s %s\n",
		"ID", "Name", "Date", "Time", "Briefing", "Targets")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 110))

	for _, op := range ops {
		r := operationRow(op)
		fmt.Fprintf(&b, "%-10s %-40s %-12s %-6s %-30s %s\n",
			r[0], r[1], r[2], r[3], truncate(r[4], 30), r[5])
	}

	return b.String()
}
