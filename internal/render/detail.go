package render

import (
	"fmt"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/ALT-F4-LLC/eagleeye/internal/imaging"
	"github.com/ALT-F4-LLC/eagleeye/internal/model"
)

// RenderDetail renders a full operation view: header, briefing metadata,
// the route link, and one tree per target with its team and photos.
func RenderDetail(op model.Operation) string {
	if !ColorsEnabled() {
		return renderPlainDetail(op)
	}

	sections := []string{
		renderHeader(op),
		renderMetadata(op),
	}

	if len(op.Targets) == 0 {
		sections = append(sections, EmptyState("No targets yet.", "Add one with: eagleeye target add "+model.ShortID(op.ID)+" --name <name>", false))
	}
	for _, t := range op.Targets {
		sections = append(sections, renderTarget(t))
	}

	return strings.Join(sections, "\n\n")
}

func renderHeader(op model.Operation) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	return fmt.Sprintf("%s  %s", titleStyle.Render(op.Name), idStyle.Render(op.ID))
}

func renderMetadata(op model.Operation) string {
	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Date:"), orDash(op.Date)),
		fmt.Sprintf("%s %s", labelStyle.Render("Briefing:"), orDash(op.BriefingLocation)),
		fmt.Sprintf("%s %s", labelStyle.Render("Briefing time:"), orDash(op.BriefingTime)),
	}
	if len(op.Targets) > 0 {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Route:"), model.MapRouteURL(op)))
	}
	return strings.Join(lines, "\n")
}

func renderTarget(t model.Target) string {
	root := fmt.Sprintf("%s %s", sectionStyle.Render(orDash(t.Name)), idStyle.Render(model.ShortID(t.ID)))

	tr := tree.New().Root(root)
	tr.Child(fmt.Sprintf("%s %s", labelStyle.Render("Address:"), orDash(t.Address)))
	if t.Coordinates != nil {
		tr.Child(fmt.Sprintf("%s %s", labelStyle.Render("Coordinates:"), t.Coordinates.String()))
	}

	team := tree.Root(fmt.Sprintf("%s %s", labelStyle.Render("Leader:"), orDash(t.Team.Leader)))
	for _, m := range t.Team.Members {
		team.Child(fmt.Sprintf("%s %s", m.Label(), idStyle.Render(model.ShortID(m.ID))))
	}
	if len(t.Team.Vehicles) > 0 {
		team.Child(fmt.Sprintf("%s %s", labelStyle.Render("Vehicles:"), strings.Join(t.Team.Vehicles, ", ")))
	}
	tr.Child(team)

	for _, kind := range []model.PhotoKind{model.PhotoSuspect, model.PhotoLocation} {
		if p := t.Photo(kind); p != "" {
			tr.Child(fmt.Sprintf("%s %s", labelStyle.Render(string(kind)+" photo:"), photoSummary(p)))
		}
	}

	out := tr.String()
	if t.Description != "" {
		rendered, err := RenderMarkdown(t.Description)
		if err != nil {
			rendered = t.Description
		}
		out += "\n" + rendered
	}
	return out
}

// photoSummary describes a stored photo payload, e.g. "image/jpeg, 23 kB".
func photoSummary(payload string) string {
	mediaType, data, err := imaging.DecodeDataURI(payload)
	if err != nil {
		return "unreadable"
	}
	if mediaType == "" {
		mediaType = "image"
	}
	return fmt.Sprintf("%s, %s", mediaType, humanize.Bytes(uint64(len(data))))
}

// renderPlainDetail renders a detail view without any color or styling.
func renderPlainDetail(op model.Operation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", op.Name, op.ID)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Date: %s\n", orDash(op.Date))
	fmt.Fprintf(&b, "Briefing: %s\n", orDash(op.BriefingLocation))
	fmt.Fprintf(&b, "Briefing time: %s\n", orDash(op.BriefingTime))
	if len(op.Targets) > 0 {
		fmt.Fprintf(&b, "Route: %s\n", model.MapRouteURL(op))
	} else {
		b.WriteString("\nNo targets yet.\n")
	}

	for _, t := range op.Targets {
		fmt.Fprintf(&b, "\nTarget %s [%s]\n", orDash(t.Name), model.ShortID(t.ID))
		fmt.Fprintf(&b, "  Address: %s\n", orDash(t.Address))
		if t.Coordinates != nil {
			fmt.Fprintf(&b, "  Coordinates: %s\n", t.Coordinates.String())
		}
		fmt.Fprintf(&b, "  Leader: %s\n", orDash(t.Team.Leader))
		for _, m := range t.Team.Members {
			fmt.Fprintf(&b, "    - %s [%s]\n", m.Label(), model.ShortID(m.ID))
		}
		if len(t.Team.Vehicles) > 0 {
			fmt.Fprintf(&b, "  Vehicles: %s\n", strings.Join(t.Team.Vehicles, ", "))
		}
		for _, kind := range []model.PhotoKind{model.PhotoSuspect, model.PhotoLocation} {
			if p := t.Photo(kind); p != "" {
				fmt.Fprintf(&b, "  %s photo: %s\n", kind, photoSummary(p))
			}
		}
		if t.Description != "" {
			fmt.Fprintf(&b, "  Description:\n%s\n", indent(t.Description, "    "))
		}
	}

	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
