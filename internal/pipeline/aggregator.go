// Package pipeline loads ledger snapshots and computes every derived figure:
// sums, category groupings, month buckets, budgets, goals and reports.
package pipeline

import (
	"sort"

	"github.com/noralyzer/noralyzer/internal/model"
)

// Sum adds up the amounts of entries whose kind falls in one of classes.
// With no classes every entry counts. Currencies are not converted.
func Sum(entries []model.Entry, classes ...Class) model.Money {
	var m model.Money
	for _, e := range entries {
		if len(classes) > 0 && !inClasses(Classify(e.Kind), classes) {
			continue
		}
		m.Add(e.Amount, e.Currency)
	}
	return m
}

func inClasses(c Class, classes []Class) bool {
	for _, want := range classes {
		if c == want {
			return true
		}
	}
	return false
}

// GroupByCategory totals entries per resolved category, with a single
// uncategorized bucket for absent or dangling categories. Buckets come back
// in order of first encounter; callers that need a ranking must sort.
func GroupByCategory(entries []model.Entry, lk *Lookups) []model.CategoryTotal {
	idx := make(map[model.ID]int)
	var groups []model.CategoryTotal

	for _, e := range entries {
		id := lk.CategoryOf(e)
		i, ok := idx[id]
		if !ok {
			i = len(groups)
			idx[id] = i
			groups = append(groups, newCategoryTotal(id, lk))
		}
		groups[i].Amount.Add(e.Amount, e.Currency)
		groups[i].Count++
	}
	return groups
}

func newCategoryTotal(id model.ID, lk *Lookups) model.CategoryTotal {
	if id == "" {
		return model.CategoryTotal{Uncategorized: true}
	}
	ct := model.CategoryTotal{CategoryID: id, Name: string(id)}
	if c, ok := lk.Category(id); ok {
		ct.Name = c.Name
		ct.Icon = c.Icon
		ct.Color = c.Color
	}
	return ct
}

// BucketByMonth sums income-like and expense-like amounts per YYYY-MM of
// each entry's date. Months without entries are absent.
func BucketByMonth(entries []model.Entry) map[string]model.MonthTotals {
	buckets := make(map[string]*model.MonthTotals)
	for _, e := range entries {
		key := e.Date.Format("2006-01")
		mt, ok := buckets[key]
		if !ok {
			mt = &model.MonthTotals{Month: key}
			buckets[key] = mt
		}
		switch Classify(e.Kind) {
		case IncomeLike:
			mt.Income.Add(e.Amount, e.Currency)
		case ExpenseLike:
			mt.Expense.Add(e.Amount, e.Currency)
		default:
			// Neutral kinds open the month but add to neither side.
		}
	}

	out := make(map[string]model.MonthTotals, len(buckets))
	for k, v := range buckets {
		out[k] = *v
	}
	return out
}

// SortedMonths returns the keys of a month bucket map in chronological order.
func SortedMonths(buckets map[string]model.MonthTotals) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortByTotal orders category totals by amount, largest first. Ties keep
// their first-encounter order.
func SortByTotal(groups []model.CategoryTotal) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount.Total.GreaterThan(groups[j].Amount.Total)
	})
}

// CategoryStats totals every known category over all kinds, including
// categories with no entries, followed by the uncategorized bucket when it
// is non-empty. Known categories are ordered by name.
func CategoryStats(snap *Snapshot) []model.CategoryTotal {
	grouped := GroupByCategory(snap.Entries, snap.Lookups)
	byID := make(map[model.ID]model.CategoryTotal, len(grouped))
	for _, g := range grouped {
		byID[g.CategoryID] = g
	}

	var out []model.CategoryTotal
	if snap.Lookups != nil {
		for id := range snap.Lookups.Categories {
			ct, ok := byID[id]
			if !ok {
				ct = newCategoryTotal(id, snap.Lookups)
			}
			out = append(out, ct)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CategoryID < out[j].CategoryID
	})

	if un, ok := byID[""]; ok {
		out = append(out, un)
	}
	return out
}
