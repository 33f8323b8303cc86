package components

import (
	"fmt"

	"github.com/noralyzer/noralyzer/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a solid bar for pct in [0, 100] followed by the
// percentage. The fill color follows theme.ForPercent unless invert is set,
// in which case higher is better (savings goals).
func ProgressBar(pct float64, width int, invert bool) string {
	t := theme.Active

	clamped := min(max(pct, 0), 100)
	color := t.ForPercent(clamped)
	if invert {
		color = goalColor(clamped)
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	return bar.ViewAs(clamped/100) +
		t.Text(t.TextPrimary).Render(" ") +
		t.Text(color).Bold(true).Render(fmt.Sprintf("%3.0f%%", pct))
}

// LabeledBar renders "label  bar  pct" with the label padded to labelW.
func LabeledBar(label string, pct float64, labelW, barW int, invert bool) string {
	t := theme.Active
	return t.Text(t.TextMuted).Render(fmt.Sprintf("%-*s", labelW, label)) +
		t.Text(t.TextPrimary).Render(" ") +
		ProgressBar(pct, barW, invert)
}

func goalColor(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 100:
		return t.Income
	case pct >= 50:
		return t.Accent
	default:
		return t.Neutral
	}
}
