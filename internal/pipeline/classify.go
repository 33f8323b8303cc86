package pipeline

import "github.com/noralyzer/noralyzer/internal/model"

// Class is the directional classification of a kind.
type Class int

const (
	Neutral Class = iota
	IncomeLike
	ExpenseLike
)

func (c Class) String() string {
	switch c {
	case IncomeLike:
		return "income"
	case ExpenseLike:
		return "expense"
	default:
		return "neutral"
	}
}

// Classify is the single source of truth for which kinds count as income
// and which as expense. Every other kind is neutral.
func Classify(k model.Kind) Class {
	switch k {
	case model.KindIncome, model.KindCashIn, model.KindDeposit:
		return IncomeLike
	case model.KindExpense, model.KindCashOut, model.KindWithdrawal:
		return ExpenseLike
	default:
		return Neutral
	}
}

// IsOutgoing reports whether an entry of kind k sends money to its
// counterparty. It backs the "sent" column of person reports.
func IsOutgoing(k model.Kind) bool {
	switch k {
	case model.KindExpense, model.KindTransfer, model.KindCashOut:
		return true
	}
	return false
}
