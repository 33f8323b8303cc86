package model

import (
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Money is an aggregate amount. Totals are plain sums with no currency
// conversion, so Currencies records every denomination that went into Total
// and Mixed is set whenever there is more than one.
type Money struct {
	Total      decimal.Decimal `json:"total"`
	Currencies []Currency      `json:"currencies,omitempty"`
	Mixed      bool            `json:"mixed"`
}

// Add accumulates amount into m and records its currency.
func (m *Money) Add(amount decimal.Decimal, c Currency) {
	m.Total = m.Total.Add(amount)
	m.addCurrency(c)
}

func (m *Money) addCurrency(c Currency) {
	if c == "" {
		return
	}
	i := sort.Search(len(m.Currencies), func(i int) bool { return m.Currencies[i] >= c })
	if i < len(m.Currencies) && m.Currencies[i] == c {
		return
	}
	// Copies of a Money share the backing array; never insert in place.
	m.Currencies = slices.Insert(slices.Clone(m.Currencies), i, c)
	m.Mixed = len(m.Currencies) > 1
}

// CategoryTotal is one bucket of a per-category grouping.
type CategoryTotal struct {
	CategoryID    ID      `json:"category_id,omitempty"`
	Name          string  `json:"name"`
	Icon          string  `json:"icon,omitempty"`
	Color         string  `json:"color,omitempty"`
	Uncategorized bool    `json:"uncategorized,omitempty"`
	Amount        Money   `json:"amount"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
}

// MonthTotals holds the directional sums for one calendar month.
type MonthTotals struct {
	Month   string `json:"month"` // YYYY-MM
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
}

// Trend is a month series as three parallel sequences.
type Trend struct {
	Months  []string          `json:"months"`
	Labels  []string          `json:"labels"`
	Income  []decimal.Decimal `json:"income"`
	Expense []decimal.Decimal `json:"expense"`
}

// Report is the composed view for one time window and category selection.
type Report struct {
	Range      string          `json:"range"`
	From       *time.Time      `json:"from,omitempty"`
	CategoryID ID              `json:"category_id,omitempty"`
	EntryCount int             `json:"entry_count"`
	Income     Money           `json:"income"`
	Expense    Money           `json:"expense"`
	Balance    decimal.Decimal `json:"balance"`
	Breakdown  []CategoryTotal `json:"breakdown"`
	Trend      Trend           `json:"trend"`
}

// ChartSeries is a labelled numeric series for chart consumers.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ChartData is the machine-readable monthly and category expense summary.
type ChartData struct {
	Monthly    ChartSeries `json:"monthly"`
	Categories ChartSeries `json:"categories"`
}

// PersonReport summarizes entries exchanged with one counterparty.
type PersonReport struct {
	Person   Person          `json:"person"`
	Entries  []Entry         `json:"entries"`
	Sent     Money           `json:"sent"`
	Received Money           `json:"received"`
	Net      decimal.Decimal `json:"net"`
}

// OwnerReport summarizes entries performed by one person.
type OwnerReport struct {
	Owner     Person          `json:"owner"`
	Entries   []Entry         `json:"entries"`
	Income    Money           `json:"income"`
	Expense   Money           `json:"expense"`
	Balance   decimal.Decimal `json:"balance"`
	Breakdown []CategoryTotal `json:"breakdown"`
}

// PlaceReport summarizes entries that happened at one place.
type PlaceReport struct {
	Place     Place           `json:"place"`
	Entries   []Entry         `json:"entries"`
	Total     Money           `json:"total"`
	Breakdown []CategoryTotal `json:"breakdown"`
}

// Overview is the all-time dashboard view.
type Overview struct {
	EntryCount int             `json:"entry_count"`
	Income     Money           `json:"income"`
	Expense    Money           `json:"expense"`
	Balance    decimal.Decimal `json:"balance"`
	Categories []CategoryTotal `json:"categories"`
	Recent     []Entry         `json:"recent"`
	Budgets    []BudgetStats   `json:"budgets"`
	Goals      []GoalStats     `json:"goals"`
}
