package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/noralyzer/noralyzer/internal/config"
	"github.com/noralyzer/noralyzer/internal/model"

	"github.com/shopspring/decimal"
)

// UncategorizedSelector is the category selection value that restricts a
// report to entries without a category.
const UncategorizedSelector = "uncategorized"

// ReportRequest selects a time window and an optional category.
type ReportRequest struct {
	Window        Window
	CategoryID    model.ID
	Uncategorized bool
}

// ParseReportRequest builds a request from raw range, start and category
// inputs as they arrive from flags or query strings.
func ParseReportRequest(rangeName, start, category string) (ReportRequest, error) {
	w, err := ParseWindow(rangeName, start)
	if err != nil {
		return ReportRequest{}, err
	}
	req := ReportRequest{Window: w, CategoryID: CategoryRef(category)}
	req.Uncategorized = strings.EqualFold(strings.TrimSpace(category), UncategorizedSelector)
	return req, nil
}

// CategoryRef turns a category selection into the id stored on a record.
// The uncategorized selector stores no category at all.
func CategoryRef(sel string) model.ID {
	sel = strings.TrimSpace(sel)
	if strings.EqualFold(sel, UncategorizedSelector) {
		return ""
	}
	return model.ID(sel)
}

// Compose builds the totals, category breakdown and month trend for req.
// All three are derived from one filtered entry set.
func Compose(snap *Snapshot, req ReportRequest, now time.Time, loc config.Locale) model.Report {
	from := req.Window.From(now)
	filtered := FilterEntries(snap.Entries, Filter{
		CategoryID:    req.CategoryID,
		Uncategorized: req.Uncategorized,
		From:          from,
	}, snap.Lookups)

	r := model.Report{
		Range:      string(req.Window.Range),
		From:       from,
		CategoryID: req.CategoryID,
		EntryCount: len(filtered),
		Income:     Sum(filtered, IncomeLike),
		Expense:    Sum(filtered, ExpenseLike),
	}
	if req.Uncategorized {
		r.CategoryID = UncategorizedSelector
	}
	r.Balance = r.Income.Total.Sub(r.Expense.Total)
	r.Breakdown = expenseBreakdown(filtered, r.Expense, snap.Lookups)
	r.Trend = buildTrend(filtered, loc)
	return r
}

// expenseBreakdown groups expense-like entries with a resolved category and
// ranks them by total, each with its share of totalExpense.
func expenseBreakdown(entries []model.Entry, totalExpense model.Money, lk *Lookups) []model.CategoryTotal {
	var expenses []model.Entry
	for _, e := range entries {
		if Classify(e.Kind) == ExpenseLike && lk.CategoryOf(e) != "" {
			expenses = append(expenses, e)
		}
	}

	groups := GroupByCategory(expenses, lk)
	for i := range groups {
		groups[i].Percentage = ratioPercent(groups[i].Amount.Total, totalExpense.Total)
	}
	SortByTotal(groups)
	if groups == nil {
		groups = []model.CategoryTotal{}
	}
	return groups
}

func buildTrend(entries []model.Entry, loc config.Locale) model.Trend {
	buckets := BucketByMonth(entries)
	months := SortedMonths(buckets)

	tr := model.Trend{
		Months:  months,
		Labels:  make([]string, 0, len(months)),
		Income:  make([]decimal.Decimal, 0, len(months)),
		Expense: make([]decimal.Decimal, 0, len(months)),
	}
	for _, m := range months {
		tr.Labels = append(tr.Labels, loc.MonthLabel(m))
		tr.Income = append(tr.Income, buckets[m].Income.Total)
		tr.Expense = append(tr.Expense, buckets[m].Expense.Total)
	}
	return tr
}

// ChartSummary is the machine-readable expense summary over the trailing
// six months: expense per YYYY-MM and expense per category.
func ChartSummary(snap *Snapshot, now time.Time) model.ChartData {
	from := Window{Range: Range6M}.From(now)
	var expenses []model.Entry
	for _, e := range FilterByTime(snap.Entries, from, nil) {
		if Classify(e.Kind) == ExpenseLike {
			expenses = append(expenses, e)
		}
	}

	data := model.ChartData{
		Monthly:    model.ChartSeries{Labels: []string{}, Data: []float64{}},
		Categories: model.ChartSeries{Labels: []string{}, Data: []float64{}},
	}

	buckets := BucketByMonth(expenses)
	for _, m := range SortedMonths(buckets) {
		data.Monthly.Labels = append(data.Monthly.Labels, m)
		data.Monthly.Data = append(data.Monthly.Data, buckets[m].Expense.Total.InexactFloat64())
	}

	for _, g := range GroupByCategory(expenses, snap.Lookups) {
		if g.Uncategorized {
			continue
		}
		data.Categories.Labels = append(data.Categories.Labels, g.Name)
		data.Categories.Data = append(data.Categories.Data, g.Amount.Total.InexactFloat64())
	}
	return data
}

// Overview is the all-time dashboard: totals, expense categories, the most
// recent entries and every budget and goal.
func Overview(snap *Snapshot, recent int) model.Overview {
	ov := model.Overview{
		EntryCount: len(snap.Entries),
		Income:     Sum(snap.Entries, IncomeLike),
		Expense:    Sum(snap.Entries, ExpenseLike),
		Budgets:    EvaluateBudgets(snap),
		Goals:      EvaluateGoals(snap),
	}
	ov.Balance = ov.Income.Total.Sub(ov.Expense.Total)
	ov.Categories = expenseBreakdown(snap.Entries, ov.Expense, snap.Lookups)
	ov.Recent = RecentEntries(snap.Entries, recent)
	return ov
}

// RecentEntries returns up to n entries, newest first. Entries on the same
// date and time keep later-recorded first.
func RecentEntries(entries []model.Entry, n int) []model.Entry {
	out := make([]model.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Time > out[j].Time
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
