package pipeline

import "github.com/noralyzer/noralyzer/internal/model"

// EvaluateGoal computes live progress of a savings goal: the manual base
// plus every income-like entry ever recorded in the linked category.
func EvaluateGoal(g model.Goal, entries []model.Entry, lk *Lookups) model.GoalStats {
	stats := model.GoalStats{Goal: g}

	if lk.HasCategory(g.CategoryID) {
		linked := FilterEntries(entries, Filter{CategoryID: g.CategoryID}, lk)
		stats.Linked = Sum(linked, IncomeLike)
	}

	stats.Current = g.CurrentAmount.Add(stats.Linked.Total)
	stats.Remaining = g.TargetAmount.Sub(stats.Current)
	stats.Percentage = capPercent(ratioPercent(stats.Current, g.TargetAmount))
	stats.Reached = g.TargetAmount.IsPositive() && stats.Current.GreaterThanOrEqual(g.TargetAmount)
	return stats
}

// EvaluateGoals evaluates every goal of a snapshot in order.
func EvaluateGoals(snap *Snapshot) []model.GoalStats {
	out := make([]model.GoalStats, 0, len(snap.Goals))
	for _, g := range snap.Goals {
		out = append(out, EvaluateGoal(g, snap.Entries, snap.Lookups))
	}
	return out
}
