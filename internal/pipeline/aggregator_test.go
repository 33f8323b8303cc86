package pipeline

import (
	"fmt"
	"testing"

	"github.com/noralyzer/noralyzer/internal/model"
)

func TestClassify_Partition(t *testing.T) {
	want := map[model.Kind]Class{
		model.KindIncome:        IncomeLike,
		model.KindCashIn:        IncomeLike,
		model.KindDeposit:       IncomeLike,
		model.KindExpense:       ExpenseLike,
		model.KindCashOut:       ExpenseLike,
		model.KindWithdrawal:    ExpenseLike,
		model.KindCardLoad:      Neutral,
		model.KindTransfer:      Neutral,
		model.KindCryptoBuy:     Neutral,
		model.KindCryptoSell:    Neutral,
		model.KindCryptoConvert: Neutral,
		model.KindGoldBuy:       Neutral,
		model.KindGoldSell:      Neutral,
	}
	for _, k := range model.Kinds {
		if got := Classify(k); got != want[k] {
			t.Errorf("Classify(%s) = %s, want %s", k, got, want[k])
		}
	}
}

func TestSum_PartitionCompleteness(t *testing.T) {
	var entries []model.Entry
	for i, k := range model.Kinds {
		amount := fmt.Sprintf("%d.%02d", i+1, (i*37)%100)
		entries = append(entries, entry(t, fmt.Sprint(i), amount, k, "2024-03-01", ""))
	}

	parts := Sum(entries, IncomeLike).Total.
		Add(Sum(entries, ExpenseLike).Total).
		Add(Sum(entries, Neutral).Total)
	all := Sum(entries).Total
	if !parts.Equal(all) {
		t.Errorf("income+expense+neutral = %s, all = %s", parts, all)
	}
}

func TestSum_EmptyIsZero(t *testing.T) {
	m := Sum(nil, IncomeLike)
	if !m.Total.IsZero() || m.Mixed || len(m.Currencies) != 0 {
		t.Errorf("Sum(nil) = %+v, want zero", m)
	}
}

func TestSum_TagsMixedCurrencies(t *testing.T) {
	a := entry(t, "a", "10", model.KindExpense, "2024-01-01", "")
	b := entry(t, "b", "5", model.KindExpense, "2024-01-01", "")
	b.Currency = "USD"
	c := entry(t, "c", "1", model.KindExpense, "2024-01-01", "")

	m := Sum([]model.Entry{a, b, c}, ExpenseLike)
	assertDec(t, "total", m.Total, "16")
	if !m.Mixed {
		t.Error("Mixed = false, want true")
	}
	if len(m.Currencies) != 2 || m.Currencies[0] != "TRY" || m.Currencies[1] != "USD" {
		t.Errorf("Currencies = %v, want [TRY USD]", m.Currencies)
	}

	single := Sum([]model.Entry{a, c})
	if single.Mixed {
		t.Error("single-currency sum flagged as mixed")
	}
}

func TestSum_NoRoundingBeforePresentation(t *testing.T) {
	entries := []model.Entry{
		entry(t, "a", "0.005", model.KindIncome, "2024-01-01", ""),
		entry(t, "b", "0.005", model.KindIncome, "2024-01-01", ""),
		entry(t, "c", "0.1", model.KindIncome, "2024-01-01", ""),
		entry(t, "d", "0.2", model.KindIncome, "2024-01-01", ""),
	}
	assertDec(t, "total", Sum(entries, IncomeLike).Total, "0.31")
}

func TestGroupByCategory_TotalsMatchSum(t *testing.T) {
	lk := lookupsWith(food, model.Category{ID: "rent", Name: "Rent"})
	entries := append(scenarioEntries(t),
		entry(t, "4", "700", model.KindTransfer, "2024-02-01", "rent"),
		entry(t, "5", "3", model.KindExpense, "2024-02-02", "deleted"),
	)

	groups := GroupByCategory(entries, lk)

	var total = dec("0")
	count := 0
	for _, g := range groups {
		total = total.Add(g.Amount.Total)
		count += g.Count
	}
	if !total.Equal(Sum(entries).Total) {
		t.Errorf("group totals = %s, want %s", total, Sum(entries).Total)
	}
	if count != len(entries) {
		t.Errorf("group counts = %d, want %d", count, len(entries))
	}

	// First-encounter order: food, uncategorized, rent. The dangling
	// "deleted" category falls into the uncategorized bucket.
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if groups[0].Name != "Food" || !groups[1].Uncategorized || groups[2].Name != "Rent" {
		t.Errorf("order = %q/%v/%q", groups[0].Name, groups[1].Uncategorized, groups[2].Name)
	}
	assertDec(t, "uncategorized", groups[1].Amount.Total, "203")
	if groups[1].Count != 2 {
		t.Errorf("uncategorized count = %d, want 2", groups[1].Count)
	}
}

func TestBucketByMonth(t *testing.T) {
	entries := []model.Entry{
		entry(t, "a", "10", model.KindIncome, "2024-01-31", ""),
		entry(t, "b", "4", model.KindWithdrawal, "2024-01-01", ""),
		entry(t, "c", "99", model.KindGoldBuy, "2024-03-05", ""),
		entry(t, "d", "1", model.KindCashOut, "2023-12-31", ""),
	}

	buckets := BucketByMonth(entries)
	if _, ok := buckets["2024-02"]; ok {
		t.Error("empty month 2024-02 present, want absent")
	}
	assertDec(t, "jan income", buckets["2024-01"].Income.Total, "10")
	assertDec(t, "jan expense", buckets["2024-01"].Expense.Total, "4")
	assertDec(t, "mar expense", buckets["2024-03"].Expense.Total, "0")

	got := SortedMonths(buckets)
	want := []string{"2023-12", "2024-01", "2024-03"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedMonths = %v, want %v", got, want)
		}
	}
}

func TestFilterEntries(t *testing.T) {
	lk := lookupsWith(food)
	lk.People["p1"] = model.Person{ID: "p1", Name: "Ali"}

	withPerson := entry(t, "4", "5", model.KindTransfer, "2024-02-01", "food")
	withPerson.PersonID = "p1"
	withPerson.CardID = "c9"
	ghost := entry(t, "5", "5", model.KindExpense, "2024-02-02", "ghost")
	ghost.Currency = "GOLD_GRAM"
	entries := append(scenarioEntries(t), withPerson, ghost)

	from := day(t, "2024-01-15")
	to := day(t, "2024-01-20")

	tests := []struct {
		name string
		f    Filter
		want []model.ID
	}{
		{"no predicates", Filter{}, []model.ID{"1", "2", "3", "4", "5"}},
		{"category", Filter{CategoryID: "food"}, []model.ID{"1", "2", "4"}},
		{"dangling category never matches", Filter{CategoryID: "ghost"}, nil},
		{"uncategorized includes dangling", Filter{Uncategorized: true}, []model.ID{"3", "5"}},
		{"inclusive dates", Filter{From: &from, To: &to}, []model.ID{"1", "2"}},
		{"person", Filter{PersonID: "p1"}, []model.ID{"4"}},
		{"unknown person", Filter{PersonID: "p2"}, nil},
		{"unknown card never matches", Filter{CardID: "c9"}, nil},
		{"combined", Filter{CategoryID: "food", From: &to}, []model.ID{"2", "4"}},
		{"currency family", Filter{Family: model.FamilyGold}, []model.ID{"5"}},
		{"fiat family", Filter{Family: model.FamilyFiat}, []model.ID{"1", "2", "3", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEntries(entries, tt.f, lk)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %v", len(got), tt.want)
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("entry %d = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestFilterEntries_NilLookupsTrustsReferences(t *testing.T) {
	e := entry(t, "1", "5", model.KindExpense, "2024-01-01", "anything")
	e.CardID = "c1"
	if got := FilterEntries([]model.Entry{e}, Filter{CategoryID: "anything", CardID: "c1"}, nil); len(got) != 1 {
		t.Errorf("got %d, want 1", len(got))
	}
}

func TestCategoryStats_IncludesEmptyCategories(t *testing.T) {
	snap := &Snapshot{
		Entries: scenarioEntries(t),
		Lookups: lookupsWith(food, model.Category{ID: "rent", Name: "Rent"}),
	}

	stats := CategoryStats(snap)
	if len(stats) != 3 {
		t.Fatalf("stats = %d rows, want 3", len(stats))
	}
	if stats[0].Name != "Food" || stats[0].Count != 2 {
		t.Errorf("row 0 = %+v", stats[0])
	}
	if stats[1].Name != "Rent" || stats[1].Count != 0 {
		t.Errorf("row 1 = %+v", stats[1])
	}
	if !stats[2].Uncategorized {
		t.Errorf("last row should be uncategorized: %+v", stats[2])
	}
}
