package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/noralyzer/noralyzer/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := maxOf(values)
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return t.Text(color).Render(buf.String())
}

// HBar renders a horizontal bar scaled against maxValue, padded to width
// with dim track characters.
func HBar(value, maxValue float64, width int, color lipgloss.Color) string {
	t := theme.Active
	if width < 1 {
		return ""
	}
	filled := 0
	if maxValue > 0 && value > 0 {
		filled = int(math.Round(value / maxValue * float64(width)))
		filled = min(max(filled, 1), width)
	}
	return t.Text(color).Render(strings.Repeat("█", filled)) +
		t.Text(t.TextDim).Render(strings.Repeat("·", width-filled))
}

// MonthBars renders one income and one expense bar per month, scaled to the
// largest value across both series. Rows beyond height are dropped from the
// oldest end so the latest months stay visible.
func MonthBars(labels []string, income, expense []float64, width, height int) string {
	n := min(len(labels), len(income), len(expense))
	if n == 0 {
		return ""
	}
	t := theme.Active

	rowsPerMonth := 2
	if height > 0 && n*rowsPerMonth > height {
		keep := max(height/rowsPerMonth, 1)
		if keep < n {
			drop := n - keep
			labels, income, expense = labels[drop:n], income[drop:n], expense[drop:n]
			n = keep
		}
	}

	peak := max(maxOf(income[:n]), maxOf(expense[:n]))
	labelW := 0
	for _, l := range labels[:n] {
		labelW = max(labelW, lipgloss.Width(l))
	}
	valueW := len(formatChartLabel(peak))
	barW := max(width-labelW-valueW-4, 5)

	label := t.Text(t.TextMuted)
	value := t.Text(t.TextDim)
	space := t.Text(t.TextPrimary)

	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(label.Render(fmt.Sprintf("%-*s", labelW, labels[i])))
		b.WriteString(space.Render(" "))
		b.WriteString(HBar(income[i], peak, barW, t.Income))
		b.WriteString(space.Render(" "))
		b.WriteString(value.Render(fmt.Sprintf("%*s", valueW, formatChartLabel(income[i]))))
		b.WriteString("\n")
		b.WriteString(space.Render(strings.Repeat(" ", labelW+1)))
		b.WriteString(HBar(expense[i], peak, barW, t.Expense))
		b.WriteString(space.Render(" "))
		b.WriteString(value.Render(fmt.Sprintf("%*s", valueW, formatChartLabel(expense[i]))))
	}
	return b.String()
}

// Legend renders colored swatches with their labels.
func Legend(items ...LegendItem) string {
	t := theme.Active
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = t.Text(it.Color).Render("█") + t.Text(t.TextMuted).Render(" "+it.Label)
	}
	return strings.Join(parts, t.Text(t.TextMuted).Render("   "))
}

// LegendItem is one swatch in a Legend.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

func maxOf(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	return peak
}

// formatChartLabel abbreviates large amounts for axis and bar labels.
func formatChartLabel(v float64) string {
	switch {
	case v >= 1e9:
		return trimUnit(v/1e9, "B")
	case v >= 1e6:
		return trimUnit(v/1e6, "M")
	case v >= 1e3:
		return trimUnit(v/1e3, "k")
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	case v == 0:
		return "0"
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimUnit(v float64, unit string) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%s", v, unit)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}
