package pipeline

import "github.com/noralyzer/noralyzer/internal/model"

// PersonReport summarizes entries where personID is the counterparty.
func PersonReport(snap *Snapshot, personID model.ID) model.PersonReport {
	entries := FilterEntries(snap.Entries, Filter{PersonID: personID}, snap.Lookups)

	r := model.PersonReport{
		Person:  snap.Lookups.Person(personID),
		Entries: RecentEntries(entries, -1),
	}
	for _, e := range entries {
		switch {
		case IsOutgoing(e.Kind):
			r.Sent.Add(e.Amount, e.Currency)
		case Classify(e.Kind) == IncomeLike:
			r.Received.Add(e.Amount, e.Currency)
		}
	}
	r.Net = r.Received.Total.Sub(r.Sent.Total)
	return r
}

// OwnerReport summarizes entries performed by ownerID.
func OwnerReport(snap *Snapshot, ownerID model.ID) model.OwnerReport {
	entries := FilterEntries(snap.Entries, Filter{OwnerID: ownerID}, snap.Lookups)

	r := model.OwnerReport{
		Owner:     snap.Lookups.Person(ownerID),
		Entries:   RecentEntries(entries, -1),
		Income:    Sum(entries, IncomeLike),
		Expense:   Sum(entries, ExpenseLike),
		Breakdown: GroupByCategory(entries, snap.Lookups),
	}
	r.Balance = r.Income.Total.Sub(r.Expense.Total)
	SortByTotal(r.Breakdown)
	return r
}

// PlaceReport summarizes every entry recorded at placeID.
func PlaceReport(snap *Snapshot, placeID model.ID) model.PlaceReport {
	entries := FilterEntries(snap.Entries, Filter{PlaceID: placeID}, snap.Lookups)

	r := model.PlaceReport{
		Place:     snap.Lookups.Place(placeID),
		Entries:   RecentEntries(entries, -1),
		Total:     Sum(entries),
		Breakdown: GroupByCategory(entries, snap.Lookups),
	}
	SortByTotal(r.Breakdown)
	return r
}
