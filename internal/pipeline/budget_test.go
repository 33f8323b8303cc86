package pipeline

import (
	"testing"

	"github.com/noralyzer/noralyzer/internal/model"
)

func TestEvaluateBudget_Scenario(t *testing.T) {
	lk := lookupsWith(food)
	b := model.Budget{ID: "b1", Name: "Food", Amount: dec("500"), CategoryID: "food"}

	stats := EvaluateBudget(b, scenarioEntries(t), lk)

	assertDec(t, "spent", stats.Spent.Total, "150")
	assertDec(t, "remaining", stats.Remaining, "350")
	if stats.Percentage != 30 {
		t.Errorf("Percentage = %v, want 30", stats.Percentage)
	}
	if stats.Exceeded {
		t.Error("Exceeded = true, want false")
	}
}

func TestEvaluateBudget_ZeroAmount(t *testing.T) {
	b := model.Budget{ID: "b1", Amount: dec("0"), CategoryID: "food"}
	stats := EvaluateBudget(b, scenarioEntries(t), lookupsWith(food))
	if stats.Percentage != 0 {
		t.Errorf("Percentage = %v, want 0", stats.Percentage)
	}
	assertDec(t, "remaining", stats.Remaining, "-150")
}

func TestEvaluateBudget_PercentageBounded(t *testing.T) {
	lk := lookupsWith(food)
	for _, amount := range []string{"0", "0.01", "1", "149.99", "150", "10000"} {
		b := model.Budget{Amount: dec(amount), CategoryID: "food"}
		p := EvaluateBudget(b, scenarioEntries(t), lk).Percentage
		if p < 0 || p > 100 {
			t.Errorf("amount %s: Percentage = %v, want within [0, 100]", amount, p)
		}
	}

	over := EvaluateBudget(model.Budget{Amount: dec("1"), CategoryID: "food"}, scenarioEntries(t), lk)
	if over.Percentage != 100 || !over.Exceeded {
		t.Errorf("overspent budget = %v%% exceeded=%v, want 100%% exceeded", over.Percentage, over.Exceeded)
	}
}

func TestEvaluateBudget_CountsAllKinds(t *testing.T) {
	entries := append(scenarioEntries(t),
		entry(t, "4", "25", model.KindTransfer, "2024-01-16", "food"),
		entry(t, "5", "5", model.KindIncome, "2024-01-17", "food"),
	)
	stats := EvaluateBudget(model.Budget{Amount: dec("1000"), CategoryID: "food"}, entries, lookupsWith(food))
	assertDec(t, "spent", stats.Spent.Total, "180")
}

func TestEvaluateBudget_DateWindow(t *testing.T) {
	start := day(t, "2024-01-16")
	end := day(t, "2024-01-20")
	b := model.Budget{Amount: dec("100"), CategoryID: "food", StartDate: &start, EndDate: &end}

	stats := EvaluateBudget(b, scenarioEntries(t), lookupsWith(food))
	assertDec(t, "spent", stats.Spent.Total, "50")
}

func TestEvaluateBudget_NoCategoryTracksNothing(t *testing.T) {
	for _, cat := range []model.ID{"", "deleted"} {
		b := model.Budget{Amount: dec("100"), CategoryID: cat}
		stats := EvaluateBudget(b, scenarioEntries(t), lookupsWith(food))
		assertDec(t, "spent", stats.Spent.Total, "0")
		if stats.Percentage != 0 {
			t.Errorf("category %q: Percentage = %v, want 0", cat, stats.Percentage)
		}
	}
}

func TestEvaluateGoal_Scenario(t *testing.T) {
	g := model.Goal{ID: "g1", TargetAmount: dec("1000"), CurrentAmount: dec("100"), CategoryID: "food"}

	stats := EvaluateGoal(g, scenarioEntries(t), lookupsWith(food))

	assertDec(t, "current", stats.Current, "100")
	assertDec(t, "remaining", stats.Remaining, "900")
	if stats.Percentage != 10 {
		t.Errorf("Percentage = %v, want 10", stats.Percentage)
	}
}

func TestEvaluateGoal_NoCategoryEqualsBase(t *testing.T) {
	entries := append(scenarioEntries(t), entry(t, "9", "5000", model.KindIncome, "2020-01-01", ""))
	g := model.Goal{TargetAmount: dec("1000"), CurrentAmount: dec("123.45")}

	stats := EvaluateGoal(g, entries, lookupsWith(food))
	assertDec(t, "current", stats.Current, "123.45")
}

func TestEvaluateGoal_IncomeOnlyAllTime(t *testing.T) {
	entries := append(scenarioEntries(t),
		entry(t, "4", "300", model.KindDeposit, "2019-06-01", "food"),
		entry(t, "5", "200", model.KindCashIn, "2030-01-01", "food"),
	)
	g := model.Goal{TargetAmount: dec("400"), CurrentAmount: dec("100"), CategoryID: "food"}

	stats := EvaluateGoal(g, entries, lookupsWith(food))
	assertDec(t, "current", stats.Current, "600")
	if stats.Percentage != 100 || !stats.Reached {
		t.Errorf("Percentage = %v reached=%v, want capped 100 and reached", stats.Percentage, stats.Reached)
	}
}

func TestEvaluateGoal_ZeroTarget(t *testing.T) {
	stats := EvaluateGoal(model.Goal{CurrentAmount: dec("50")}, nil, nil)
	if stats.Percentage != 0 {
		t.Errorf("Percentage = %v, want 0", stats.Percentage)
	}
}
