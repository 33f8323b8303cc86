package model

import "github.com/shopspring/decimal"

// BudgetStats holds the live consumption of a budget.
type BudgetStats struct {
	Budget     Budget          `json:"budget"`
	Spent      Money           `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"` // clamped to [0, 100]
	Exceeded   bool            `json:"exceeded"`
}

// GoalStats holds the live progress of a savings goal.
type GoalStats struct {
	Goal       Goal            `json:"goal"`
	Linked     Money           `json:"linked"` // income-like sum of the linked category
	Current    decimal.Decimal `json:"current"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
	Reached    bool            `json:"reached"`
}
