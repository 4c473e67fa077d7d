package core

// FinancialSummary is a derived aggregate over the transaction and income
// collections. It has no identity of its own: every field is recomputed from
// scratch by Summarize and the struct is never patched in place.
type FinancialSummary struct {
	TotalIncome        Money `json:"totalIncome"`
	FixedExpenses      Money `json:"fixedExpenses"`
	VariableExpenses   Money `json:"variableExpenses"`
	RemainingMoney     Money `json:"remainingMoney"`
	TotalBalance       Money `json:"totalBalance"`
	CreditCardExpenses Money `json:"creditCardExpenses"`
	PendingBills       Money `json:"pendingBills"`
}

// IsFixedExpense reports whether t is an expense classified as fixed.
// Expenses with no details or no expense type match neither fixed nor
// variable.
func IsFixedExpense(t Transaction) bool {
	return t.IsExpense() && t.Expense.ExpenseType == ExpenseFixed
}

// IsVariableExpense reports whether t is an expense classified as variable.
func IsVariableExpense(t Transaction) bool {
	return t.IsExpense() && t.Expense.ExpenseType == ExpenseVariable
}

// IsCreditCardExpense reports whether t is an expense paid by credit card.
func IsCreditCardExpense(t Transaction) bool {
	return t.IsExpense() && t.Expense.PaymentMethod == MethodCredit
}

// IsPendingBill reports whether t is an expense still awaiting payment.
func IsPendingBill(t Transaction) bool {
	return t.IsExpense() && t.Expense.PaymentStatus == PaymentPending
}

// Summarize computes a FinancialSummary over the given collections. Empty
// inputs yield an all-zero summary. Income sources count unconditionally;
// no period filtering happens here. Credit-card spend is already counted
// once inside fixed/variable, so CreditCardExpenses is informational and is
// not subtracted again from RemainingMoney. TotalBalance is defined equal to
// RemainingMoney; it is not an independently accumulated running balance.
func Summarize(transactions []Transaction, incomeSources []IncomeSource) FinancialSummary {
	var s FinancialSummary

	for _, src := range incomeSources {
		s.TotalIncome.Cents += src.Amount.Cents
	}

	for _, t := range transactions {
		switch {
		case IsFixedExpense(t):
			s.FixedExpenses.Cents += t.Amount.Cents
		case IsVariableExpense(t):
			s.VariableExpenses.Cents += t.Amount.Cents
		}
		if IsCreditCardExpense(t) {
			s.CreditCardExpenses.Cents += t.Amount.Cents
		}
		if IsPendingBill(t) {
			s.PendingBills.Cents += t.Amount.Cents
		}
	}

	s.RemainingMoney = s.TotalIncome.Sub(s.FixedExpenses).Sub(s.VariableExpenses)
	s.TotalBalance = s.RemainingMoney
	return s
}

// Ratio returns part/whole as a float in the usual 0..1 sense, guarding the
// degenerate zero denominator with 0 instead of NaN or Inf.
func Ratio(part, whole Money) float64 {
	if whole.Cents == 0 {
		return 0
	}
	return float64(part.Cents) / float64(whole.Cents)
}
