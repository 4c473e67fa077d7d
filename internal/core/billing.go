package core

import "time"

// BillingCycle describes the currently open statement period of a credit
// card: the transactions accumulated since the previous closing date, their
// total, and the closing and due dates of the cycle.
type BillingCycle struct {
	Transactions []Transaction `json:"transactions"`
	TotalAmount  Money         `json:"totalAmount"`
	CloseDate    time.Time     `json:"closeDate"`
	DueDate      time.Time     `json:"dueDate"`
}

// CurrentBillingCycle resolves the open billing cycle of a card at the given
// instant. It is a pure function of (card, transactions, now) and never
// mutates its inputs.
//
// The closing date starts as (now's year, now's month, closingDay); if now is
// already past it, it advances one month. The due date is derived from the
// closing date: a due day smaller than the closing day falls in the month
// after the closing month. Days beyond the length of the target month roll
// over into the next month, matching time.Date normalization; day 31 in
// February lands in early March rather than clamping.
//
// Cycle membership is the interval (prevClose, close]: strictly after the
// previous closing date, up to and including the current one.
func CurrentBillingCycle(card CreditCard, transactions []Transaction, now time.Time) BillingCycle {
	closeDate := NewDate(now.Year(), int(now.Month()), card.ClosingDay)
	if now.After(closeDate) {
		closeDate = NewDate(now.Year(), int(now.Month())+1, card.ClosingDay)
	}

	dueMonth := int(closeDate.Month())
	if card.DueDay < card.ClosingDay {
		dueMonth++
	}
	dueDate := NewDate(closeDate.Year(), dueMonth, card.DueDay)

	prevCloseDate := closeDate.AddDate(0, -1, 0)

	var cycle []Transaction
	var total Money
	for _, t := range transactions {
		if !IsCreditCardExpense(t) || t.Expense.CreditCardID != card.ID {
			continue
		}
		if t.Date.After(prevCloseDate) && !t.Date.After(closeDate) {
			cycle = append(cycle, t)
			total.Cents += t.Amount.Cents
		}
	}

	return BillingCycle{
		Transactions: cycle,
		TotalAmount:  total,
		CloseDate:    closeDate,
		DueDate:      dueDate,
	}
}

// TransactionsByCard returns every transaction charged to the given card,
// regardless of cycle.
func TransactionsByCard(cardID string, transactions []Transaction) []Transaction {
	var out []Transaction
	for _, t := range transactions {
		if IsCreditCardExpense(t) && t.Expense.CreditCardID == cardID {
			out = append(out, t)
		}
	}
	return out
}
