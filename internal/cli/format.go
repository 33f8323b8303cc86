// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount formats a decimal with two places and locale grouping.
func FormatAmount(d decimal.Decimal, loc config.Locale) string {
	return loc.FormatAmount(d)
}

// FormatMoney formats an aggregate. Single-currency totals carry their
// symbol; mixed totals are marked with "*" since no conversion was applied.
func FormatMoney(m model.Money, loc config.Locale) string {
	s := loc.FormatAmount(m.Total)
	switch {
	case m.Mixed:
		return s + " *"
	case len(m.Currencies) == 1:
		return m.Currencies[0].Symbol() + s
	}
	return s
}

// MixedNote explains the "*" marker, or returns "" when nothing is mixed.
func MixedNote(ms ...model.Money) string {
	var codes []string
	seen := make(map[model.Currency]bool)
	mixed := false
	for _, m := range ms {
		mixed = mixed || m.Mixed
		for _, c := range m.Currencies {
			if !seen[c] {
				seen[c] = true
				codes = append(codes, string(c))
			}
		}
	}
	if !mixed {
		return ""
	}
	sort.Strings(codes)
	return fmt.Sprintf("* sums across %s without conversion", strings.Join(codes, ", "))
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDate formats a civil date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatOptionalDate formats a possibly unbounded date.
func FormatOptionalDate(t *time.Time, unbounded string) string {
	if t == nil {
		return unbounded
	}
	return FormatDate(*t)
}

// FormatAge renders how long ago t was, e.g. "3 minutes ago".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatDelta formats a signed difference with an explicit sign.
func FormatDelta(d decimal.Decimal, loc config.Locale) string {
	if d.IsNegative() {
		return "-" + loc.FormatAmount(d.Abs())
	}
	return "+" + loc.FormatAmount(d)
}

// Truncate shortens s to n runes, adding an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 1 {
		return s
	}
	return string(r[:n-1]) + "…"
}
