// Package model defines ledger records and the summaries derived from them.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ID identifies a ledger record. The empty ID means "no association".
type ID string

// UnmarshalJSON accepts both string and integer identifiers.
func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*id = ""
		return nil
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(v))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or integer: %w", err)
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("id must be a string or integer: %s", s)
	}
	*id = ID(n.String())
	return nil
}

// Kind is the enumerated type of a monetary event.
type Kind string

const (
	KindWithdrawal    Kind = "atm_withdraw"
	KindDeposit       Kind = "bank_deposit"
	KindCardLoad      Kind = "card_load"
	KindCashIn        Kind = "cash_in"
	KindCashOut       Kind = "cash_out"
	KindTransfer      Kind = "transfer"
	KindCryptoBuy     Kind = "crypto_buy"
	KindCryptoSell    Kind = "crypto_sell"
	KindCryptoConvert Kind = "crypto_convert"
	KindGoldBuy       Kind = "gold_buy"
	KindGoldSell      Kind = "gold_sell"
	KindExpense       Kind = "expense"
	KindIncome        Kind = "income"
)

// Kinds lists every known kind in display order.
var Kinds = []Kind{
	KindIncome, KindExpense, KindCashIn, KindCashOut, KindDeposit, KindWithdrawal,
	KindCardLoad, KindTransfer, KindCryptoBuy, KindCryptoSell, KindCryptoConvert,
	KindGoldBuy, KindGoldSell,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// CurrencyFamily groups currencies by the kind of holding they denote.
type CurrencyFamily string

const (
	FamilyFiat   CurrencyFamily = "fiat"
	FamilyCrypto CurrencyFamily = "crypto"
	FamilyGold   CurrencyFamily = "gold"
	FamilyCash   CurrencyFamily = "cash"
)

// Currency is a fiat, crypto, gold or cash denomination code.
type Currency string

type currencyInfo struct {
	family CurrencyFamily
	symbol string
}

var currencies = map[Currency]currencyInfo{
	"TRY":          {FamilyFiat, "₺"},
	"USD":          {FamilyFiat, "$"},
	"EUR":          {FamilyFiat, "€"},
	"CAD":          {FamilyFiat, "C$"},
	"BTC":          {FamilyCrypto, "₿"},
	"DOGE":         {FamilyCrypto, "Ð"},
	"GOLD_FULL":    {FamilyGold, "Tam"},
	"GOLD_GRAM":    {FamilyGold, "Gr"},
	"GOLD_QUARTER": {FamilyGold, "Çyr"},
	"CASH_TRY":     {FamilyCash, "₺"},
	"CASH_USD":     {FamilyCash, "$"},
	"CASH_EUR":     {FamilyCash, "€"},
}

// Valid reports whether c is a known currency code.
func (c Currency) Valid() bool {
	_, ok := currencies[c]
	return ok
}

// Family returns the currency family, or "" for unknown codes.
func (c Currency) Family() CurrencyFamily {
	return currencies[c].family
}

// Symbol returns the display symbol, falling back to the code itself.
func (c Currency) Symbol() string {
	if info, ok := currencies[c]; ok {
		return info.symbol
	}
	return string(c)
}

// Entry is one recorded monetary event. Amount is always a non-negative
// magnitude; the direction of money flow comes from Kind.
type Entry struct {
	ID          ID              `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
	Kind        Kind            `json:"kind"`
	Date        time.Time       `json:"date"`
	Time        string          `json:"time,omitempty"`
	Description string          `json:"description,omitempty"`

	CategoryID ID   `json:"category_id,omitempty"`
	CardID     ID   `json:"card_id,omitempty"`
	BankID     ID   `json:"bank_id,omitempty"`
	PersonID   ID   `json:"person_id,omitempty"`
	PlaceID    ID   `json:"place_id,omitempty"`
	OwnerID    ID   `json:"owner_id,omitempty"`
	FromBankID ID   `json:"from_bank_id,omitempty"`
	ToBankID   ID   `json:"to_bank_id,omitempty"`
	TagIDs     []ID `json:"tag_ids,omitempty"`
}

// Category groups entries for breakdowns, budgets and goals.
type Category struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// Bank is an account an entry can settle through.
type Bank struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	HolderName  string `json:"holder_name,omitempty"`
	IBAN        string `json:"iban,omitempty"`
	AccountType string `json:"account_type,omitempty"`
	Favorite    bool   `json:"favorite,omitempty"`
}

// Card is a payment card, optionally tied to a bank.
type Card struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	CardType string `json:"card_type,omitempty"`
	LastFour string `json:"last_four,omitempty"`
	BankID   ID     `json:"bank_id,omitempty"`
	Favorite bool   `json:"favorite,omitempty"`
}

// Person is either a counterparty or the owner of an entry.
type Person struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Note     string `json:"note,omitempty"`
	Favorite bool   `json:"favorite,omitempty"`
}

// Place is where an entry happened.
type Place struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Category string `json:"category,omitempty"`
	Favorite bool   `json:"favorite,omitempty"`
}

// Tag is a free-form label attached to entries.
type Tag struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Budget is a spend ceiling for a category over an optional date window.
// Nil dates are unbounded.
type Budget struct {
	ID         ID              `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Period     string          `json:"period,omitempty"`
	CategoryID ID              `json:"category_id,omitempty"`
	StartDate  *time.Time      `json:"start_date,omitempty"`
	EndDate    *time.Time      `json:"end_date,omitempty"`
}

// Goal is a savings target. CurrentAmount is the manually tracked base;
// live progress is computed on top of it and never written back.
type Goal struct {
	ID            ID              `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	CategoryID    ID              `json:"category_id,omitempty"`
}
