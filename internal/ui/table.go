package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	installedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	frozenStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	branchStyles = map[string]lipgloss.Style{
		"stable":      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"lts":         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"daily":       lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"bforartists": lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
	experimentalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// BuildRow is one line of the build table
type BuildRow struct {
	Name       string
	Branch     string
	Hash       string
	CommitTime string
	Source     string // "installed" or "remote"
	Frozen     bool
	Favorite   bool
}

// RenderBuildTable lays the rows out in aligned, colored columns
func RenderBuildTable(rows []BuildRow) string {
	headers := []string{"NAME", "BRANCH", "HASH", "COMMITTED", "SOURCE"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		name := r.Name
		if r.Favorite {
			name = "★ " + name
		}
		if r.Frozen {
			name += " (frozen)"
		}
		cells[i] = []string{name, r.Branch, r.Hash, r.CommitTime, r.Source}
		for j, c := range cells[i] {
			if len(c) > widths[j] {
				widths[j] = len(c)
			}
		}
	}

	var b strings.Builder
	for j, h := range headers {
		b.WriteString(tableHeaderStyle.Render(pad(h, widths[j])))
		b.WriteString("  ")
	}
	b.WriteString("\n")

	for i, row := range cells {
		for j, c := range row {
			b.WriteString(cellStyle(rows[i], j).Render(pad(c, widths[j])))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cellStyle(row BuildRow, col int) lipgloss.Style {
	switch col {
	case 0:
		if row.Frozen {
			return frozenStyle
		}
		return lipgloss.NewStyle()
	case 1:
		return branchStyle(row.Branch)
	case 4:
		if row.Source == "installed" {
			return installedStyle
		}
		return dimStyle
	default:
		return lipgloss.NewStyle()
	}
}

func branchStyle(branch string) lipgloss.Style {
	if s, ok := branchStyles[branch]; ok {
		return s
	}
	// Free-form branch names come from experimental builds
	return experimentalStyle
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
