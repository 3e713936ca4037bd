package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pipegate/pipegate/internal/domain"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(64)

	gradeColors = map[string]lipgloss.Color{
		"A": success,
		"B": lipgloss.Color("#A3E635"), // lime
		"C": warning,
		"D": lipgloss.Color("#FB923C"), // orange
		"F": danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	nameStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 60))
)

// RenderResult renders the terminal summary of a completed session.
func RenderResult(result *domain.SessionResult) string {
	var b strings.Builder

	c := result.Composite
	verdict := failStyle.Bold(true).Render("FAIL")
	if c.Passed {
		verdict = passStyle.Bold(true).Render("PASS")
	}
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(c.Grade)).
		Render(fmt.Sprintf("%d / 100  %s", c.Total, c.Grade))

	title := headerStyle.Render("pipegate")
	subtitle := dimStyle.Render("Pipeline Compliance Score")
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + verdict))
	b.WriteString("\n\n")

	for _, d := range result.Dimensions {
		renderDimension(&b, d, c.WeightedPoints[d.Name])
	}

	b.WriteString("\n  " + separatorLine + "\n\n")

	s := result.Summary
	b.WriteString(fmt.Sprintf("  %s %d checks, %s, %s  (threshold %d)\n",
		nameStyle.Render("Checks:"),
		s.TotalValidations,
		passStyle.Render(fmt.Sprintf("%d passed", s.PassedValidations)),
		failStyle.Render(fmt.Sprintf("%d failed", s.FailedValidations)),
		c.PassThreshold))
	b.WriteString("  " + dimStyle.Render("results: "+result.ResultsPath) + "\n")
	b.WriteString("  " + dimStyle.Render("report:  "+result.ReportPath) + "\n")

	return b.String()
}

func renderDimension(b *strings.Builder, d domain.Dimension, points int) {
	b.WriteString(fmt.Sprintf("  %s %s %s\n",
		nameStyle.Render(fmt.Sprintf("%-16s", d.Name)),
		renderBar(d.ScorePercent),
		dimStyle.Render(fmt.Sprintf("%3d%%  %s  %d pts", d.ScorePercent, d.Status, points))))

	for _, c := range d.Checks {
		if c.Passed {
			b.WriteString("    " + passStyle.Render("✓") + " " + dimStyle.Render(c.Name) + "\n")
		} else {
			b.WriteString("    " + failStyle.Render("✗") + " " + dimStyle.Render(c.Name) +
				faintStyle.Render("  "+c.Evidence) + "\n")
		}
	}
	b.WriteString("\n")
}

func renderBar(percent int) string {
	const width = 20
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	color := danger
	switch {
	case percent >= 80:
		color = success
	case percent >= 60:
		color = warning
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	rest := faintStyle.Render(strings.Repeat("░", width-filled))
	return bar + rest
}

func gradeColor(grade string) lipgloss.Color {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return danger
}
