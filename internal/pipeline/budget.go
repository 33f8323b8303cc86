package pipeline

import (
	"github.com/noralyzer/noralyzer/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EvaluateBudget computes how much of a budget has been consumed. Every
// kind in the budget's category and date window counts as spend. A budget
// whose category is absent or unknown tracks nothing.
func EvaluateBudget(b model.Budget, entries []model.Entry, lk *Lookups) model.BudgetStats {
	stats := model.BudgetStats{Budget: b}

	if lk.HasCategory(b.CategoryID) {
		scoped := FilterEntries(entries, Filter{
			CategoryID: b.CategoryID,
			From:       b.StartDate,
			To:         b.EndDate,
		}, lk)
		stats.Spent = Sum(scoped)
	}

	stats.Remaining = b.Amount.Sub(stats.Spent.Total)
	stats.Percentage = max(capPercent(ratioPercent(stats.Spent.Total, b.Amount)), 0)
	stats.Exceeded = b.Amount.IsPositive() && stats.Spent.Total.GreaterThan(b.Amount)
	return stats
}

// EvaluateBudgets evaluates every budget of a snapshot in order.
func EvaluateBudgets(snap *Snapshot) []model.BudgetStats {
	out := make([]model.BudgetStats, 0, len(snap.Budgets))
	for _, b := range snap.Budgets {
		out = append(out, EvaluateBudget(b, snap.Entries, snap.Lookups))
	}
	return out
}

// ratioPercent returns num/den*100, or 0 when den is not positive.
func ratioPercent(num, den decimal.Decimal) float64 {
	if !den.IsPositive() {
		return 0
	}
	return num.Div(den).Mul(hundred).InexactFloat64()
}

// capPercent limits p to 100.
func capPercent(p float64) float64 {
	return min(p, 100)
}
