package pipeline

import (
	"time"

	"github.com/noralyzer/noralyzer/internal/model"
)

// Lookups is the read-only reference data passed explicitly into every
// aggregation. A nil *Lookups, or a nil table inside it, means references
// of that type are taken at face value.
type Lookups struct {
	Categories map[model.ID]model.Category
	Banks      map[model.ID]model.Bank
	Cards      map[model.ID]model.Card
	People     map[model.ID]model.Person
	Places     map[model.ID]model.Place
	Tags       map[model.ID]model.Tag
}

// NewLookups returns a Lookups with every table allocated.
func NewLookups() *Lookups {
	return &Lookups{
		Categories: make(map[model.ID]model.Category),
		Banks:      make(map[model.ID]model.Bank),
		Cards:      make(map[model.ID]model.Card),
		People:     make(map[model.ID]model.Person),
		Places:     make(map[model.ID]model.Place),
		Tags:       make(map[model.ID]model.Tag),
	}
}

// resolves reports whether id names an existing record in known.
func resolves[T any](id model.ID, known map[model.ID]T) bool {
	if id == "" {
		return false
	}
	if known == nil {
		return true
	}
	_, ok := known[id]
	return ok
}

// CategoryOf returns the entry's category id if it resolves, else "".
func (l *Lookups) CategoryOf(e model.Entry) model.ID {
	if l == nil {
		return e.CategoryID
	}
	if resolves(e.CategoryID, l.Categories) {
		return e.CategoryID
	}
	return ""
}

// HasCategory reports whether id names an existing category.
func (l *Lookups) HasCategory(id model.ID) bool {
	if l == nil {
		return id != ""
	}
	return resolves(id, l.Categories)
}

// Category returns the category record for id.
func (l *Lookups) Category(id model.ID) (model.Category, bool) {
	if l == nil || l.Categories == nil {
		return model.Category{}, false
	}
	c, ok := l.Categories[id]
	return c, ok
}

// Person returns the person record for id, or a placeholder named by id.
func (l *Lookups) Person(id model.ID) model.Person {
	if l != nil {
		if p, ok := l.People[id]; ok {
			return p
		}
	}
	return model.Person{ID: id, Name: string(id)}
}

// Place returns the place record for id, or a placeholder named by id.
func (l *Lookups) Place(id model.ID) model.Place {
	if l != nil {
		if p, ok := l.Places[id]; ok {
			return p
		}
	}
	return model.Place{ID: id, Name: string(id)}
}

func (l *Lookups) person(id model.ID) bool {
	if l == nil {
		return id != ""
	}
	return resolves(id, l.People)
}

func (l *Lookups) place(id model.ID) bool {
	if l == nil {
		return id != ""
	}
	return resolves(id, l.Places)
}

func (l *Lookups) card(id model.ID) bool {
	if l == nil {
		return id != ""
	}
	return resolves(id, l.Cards)
}

func (l *Lookups) bank(id model.ID) bool {
	if l == nil {
		return id != ""
	}
	return resolves(id, l.Banks)
}

// Snapshot is an immutable view of the ledger at one point in time.
type Snapshot struct {
	Entries  []model.Entry
	Lookups  *Lookups
	Budgets  []model.Budget
	Goals    []model.Goal
	Revision uint64
	LoadedAt time.Time
}
