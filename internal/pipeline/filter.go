package pipeline

import (
	"time"

	"github.com/noralyzer/noralyzer/internal/model"
)

// Filter selects entries. Zero-valued fields do not constrain the result.
// Date bounds are inclusive and compared on civil dates.
type Filter struct {
	CategoryID    model.ID
	Uncategorized bool // matches only entries whose category is absent or dangling
	PersonID      model.ID
	OwnerID       model.ID
	PlaceID       model.ID
	CardID        model.ID
	BankID        model.ID
	Family        model.CurrencyFamily
	From          *time.Time
	To            *time.Time
}

// FilterEntries returns the entries matching every predicate of f.
// An absent or unresolved reference on an entry never matches a concrete id.
func FilterEntries(entries []model.Entry, f Filter, lk *Lookups) []model.Entry {
	var from, to time.Time
	if f.From != nil {
		from = Civil(*f.From)
	}
	if f.To != nil {
		to = Civil(*f.To)
	}

	var out []model.Entry
	for _, e := range entries {
		if f.From != nil && e.Date.Before(from) {
			continue
		}
		if f.To != nil && e.Date.After(to) {
			continue
		}
		if f.Uncategorized {
			if lk.CategoryOf(e) != "" {
				continue
			}
		} else if f.CategoryID != "" && (e.CategoryID != f.CategoryID || !lk.HasCategory(e.CategoryID)) {
			continue
		}
		if f.PersonID != "" && (e.PersonID != f.PersonID || !lk.person(e.PersonID)) {
			continue
		}
		if f.OwnerID != "" && (e.OwnerID != f.OwnerID || !lk.person(e.OwnerID)) {
			continue
		}
		if f.PlaceID != "" && (e.PlaceID != f.PlaceID || !lk.place(e.PlaceID)) {
			continue
		}
		if f.CardID != "" && (e.CardID != f.CardID || !lk.card(e.CardID)) {
			continue
		}
		if f.BankID != "" && (e.BankID != f.BankID || !lk.bank(e.BankID)) {
			continue
		}
		if f.Family != "" && e.Currency.Family() != f.Family {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterByTime returns entries dated within [from, to]. Nil bounds are open.
func FilterByTime(entries []model.Entry, from, to *time.Time) []model.Entry {
	return FilterEntries(entries, Filter{From: from, To: to}, nil)
}

// Civil truncates t to midnight UTC of its calendar date.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
