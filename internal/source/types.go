package source

import (
	"encoding/json"

	"github.com/noralyzer/noralyzer/internal/model"

	"github.com/shopspring/decimal"
)

// RecordType is the top-level "type" of a journal line.
type RecordType string

const (
	TypeEntry    RecordType = "entry"
	TypeCategory RecordType = "category"
	TypeBank     RecordType = "bank"
	TypeCard     RecordType = "card"
	TypePerson   RecordType = "person"
	TypePlace    RecordType = "place"
	TypeTag      RecordType = "tag"
	TypeBudget   RecordType = "budget"
	TypeGoal     RecordType = "goal"
	TypeDelete   RecordType = "delete"
)

var recordTypes = map[RecordType]bool{
	TypeEntry: true, TypeCategory: true, TypeBank: true, TypeCard: true,
	TypePerson: true, TypePlace: true, TypeTag: true, TypeBudget: true,
	TypeGoal: true, TypeDelete: true,
}

// RawEntry is an "entry" line as written in a journal.
type RawEntry struct {
	ID          model.ID         `json:"id"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    string           `json:"currency"`
	Kind        string           `json:"kind"`
	Date        string           `json:"date"`
	Time        string           `json:"time,omitempty"`
	Description string           `json:"description,omitempty"`
	CategoryID  model.ID         `json:"category_id,omitempty"`
	CardID      model.ID         `json:"card_id,omitempty"`
	BankID      model.ID         `json:"bank_id,omitempty"`
	PersonID    model.ID         `json:"person_id,omitempty"`
	PlaceID     model.ID         `json:"place_id,omitempty"`
	OwnerID     model.ID         `json:"owner_id,omitempty"`
	FromBankID  model.ID         `json:"from_bank_id,omitempty"`
	ToBankID    model.ID         `json:"to_bank_id,omitempty"`
	TagIDs      []model.ID       `json:"tag_ids,omitempty"`
}

// RawBudget is a "budget" line.
type RawBudget struct {
	ID         model.ID         `json:"id"`
	Name       string           `json:"name"`
	Amount     *decimal.Decimal `json:"amount"`
	Period     string           `json:"period,omitempty"`
	CategoryID model.ID         `json:"category_id,omitempty"`
	StartDate  string           `json:"start_date,omitempty"`
	EndDate    string           `json:"end_date,omitempty"`
}

// RawGoal is a "goal" line.
type RawGoal struct {
	ID            model.ID         `json:"id"`
	Name          string           `json:"name"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal  `json:"current_amount"`
	Deadline      string           `json:"deadline,omitempty"`
	CategoryID    model.ID         `json:"category_id,omitempty"`
}

// RawDelete is a tombstone removing an earlier record of Target type.
type RawDelete struct {
	Target RecordType `json:"target"`
	ID     model.ID   `json:"id"`
}

// Record is one validated journal line. Value holds the decoded model
// value: model.Entry, model.Category, model.Bank, model.Card, model.Person,
// model.Place, model.Tag, model.Budget, model.Goal or RawDelete.
type Record struct {
	Type    RecordType
	ID      model.ID
	Line    int
	Payload json.RawMessage
	Value   any
}

// Key identifies the record a line applies to. Tombstones share the key of
// the record they remove.
func (r Record) Key() RecordKey {
	if d, ok := r.Value.(RawDelete); ok {
		return RecordKey{Type: d.Target, ID: d.ID}
	}
	return RecordKey{Type: r.Type, ID: r.ID}
}

// RecordKey is the (type, id) identity of a ledger record.
type RecordKey struct {
	Type RecordType
	ID   model.ID
}

// DiscoveredFile is a journal found during directory scanning.
type DiscoveredFile struct {
	Path    string
	RelPath string // relative to the data dir, used for ordering
}
