package pipeline

import (
	"os"
	"testing"
	"time"

	"github.com/noralyzer/noralyzer/internal/model"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func entry(t *testing.T, id string, amount string, kind model.Kind, date string, category string) model.Entry {
	t.Helper()
	return model.Entry{
		ID:         model.ID(id),
		Amount:     dec(amount),
		Currency:   "TRY",
		Kind:       kind,
		Date:       day(t, date),
		CategoryID: model.ID(category),
	}
}

func lookupsWith(categories ...model.Category) *Lookups {
	lk := NewLookups()
	for _, c := range categories {
		lk.Categories[c.ID] = c
	}
	return lk
}

var food = model.Category{ID: "food", Name: "Food"}

// scenarioEntries is the reference data set: two Food expenses and one
// uncategorized income, all in January 2024.
func scenarioEntries(t *testing.T) []model.Entry {
	return []model.Entry{
		entry(t, "1", "100", model.KindExpense, "2024-01-15", "food"),
		entry(t, "2", "50", model.KindExpense, "2024-01-20", "food"),
		entry(t, "3", "200", model.KindIncome, "2024-01-10", ""),
	}
}

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func writeBenchFile(path, body string) error {
	return os.WriteFile(path, []byte(body+"\n"), 0o600)
}
