package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/noralyzer/noralyzer/internal/common"
)

// Range names a report time window.
type Range string

const (
	Range6M     Range = "6m"
	Range12M    Range = "12m"
	RangeCustom Range = "custom"
	RangeAll    Range = "all"
)

// Window is a parsed time window. Start is only used by RangeCustom.
type Window struct {
	Range Range
	Start *time.Time
}

// ParseWindow validates a range name and optional YYYY-MM-DD start date.
// A custom range without a start date is unrestricted.
func ParseWindow(rangeName, start string) (Window, error) {
	r := Range(strings.ToLower(strings.TrimSpace(rangeName)))
	if r == "" {
		r = Range6M
	}

	switch r {
	case Range6M, Range12M, RangeAll:
		return Window{Range: r}, nil
	case RangeCustom:
		start = strings.TrimSpace(start)
		if start == "" {
			return Window{Range: r}, nil
		}
		t, err := ParseDate(start)
		if err != nil {
			return Window{}, common.NewValidationError("start date", start, err)
		}
		return Window{Range: r, Start: &t}, nil
	}
	return Window{}, common.NewValidationError("range", rangeName,
		fmt.Errorf("%w: want 6m, 12m, custom or all", common.ErrInvalidRange))
}

// From resolves the window to an inclusive start date relative to now.
// Nil means unrestricted.
func (w Window) From(now time.Time) *time.Time {
	var from time.Time
	switch w.Range {
	case Range6M:
		from = SubtractMonths(Civil(now), 6)
	case Range12M:
		from = SubtractMonths(Civil(now), 12)
	case RangeCustom:
		if w.Start == nil {
			return nil
		}
		from = Civil(*w.Start)
	default:
		return nil
	}
	return &from
}

// SubtractMonths steps back n calendar months, clamping the day to the end
// of the target month (31 Aug minus 6 months is the last day of February).
func SubtractMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ParseDate parses a YYYY-MM-DD civil date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", common.ErrInvalidDate, s)
	}
	return t, nil
}
