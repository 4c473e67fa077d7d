package core

// ApplyTransactionSideEffects applies the card-balance consequence of
// inserting a new expense transaction. A credit payment increments the
// referenced card's balance and recomputes its available limit; every other
// payment method, an income transaction, or a reference to an unknown card
// leaves the cards untouched. The input slice is never mutated; updated
// copies are returned.
//
// The operation is intentionally not idempotent: it must be called exactly
// once per inserted transaction. Callers that need to re-derive balances
// after deletes or bulk loads use RebuildCardBalances instead.
func ApplyTransactionSideEffects(t Transaction, cards []CreditCard) []CreditCard {
	if !IsCreditCardExpense(t) {
		return cards
	}

	out := make([]CreditCard, len(cards))
	copy(out, cards)
	for i := range out {
		if out[i].ID != t.Expense.CreditCardID {
			continue
		}
		out[i].CurrentBalance = out[i].CurrentBalance.Add(t.Amount)
		out[i].AvailableLimit = out[i].Limit.Sub(out[i].CurrentBalance)
		return out
	}
	// Dangling card reference: no-op by policy, the caller logs it.
	return cards
}

// RebuildCardBalances derives every card's balance as a fold over the credit
// transactions charged to it, and restores the availableLimit invariant
// (limit minus balance). Unlike ApplyTransactionSideEffects this is safe to
// call any number of times and is the recovery path after deletions or when
// hydrating from a persistence backend.
func RebuildCardBalances(cards []CreditCard, transactions []Transaction) []CreditCard {
	totals := make(map[string]int64, len(cards))
	for _, t := range transactions {
		if IsCreditCardExpense(t) {
			totals[t.Expense.CreditCardID] += t.Amount.Cents
		}
	}

	out := make([]CreditCard, len(cards))
	copy(out, cards)
	for i := range out {
		out[i].CurrentBalance = Money{Cents: totals[out[i].ID]}
		out[i].AvailableLimit = out[i].Limit.Sub(out[i].CurrentBalance)
	}
	return out
}
