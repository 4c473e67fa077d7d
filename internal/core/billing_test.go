package core

import (
	"testing"
	"time"
)

func testCard() CreditCard {
	return CreditCard{
		ID:         "card-1",
		Name:       "Main",
		LastDigits: "4242",
		Limit:      Money{Cents: 500000},
		ClosingDay: 20,
		DueDay:     5,
	}
}

func cardExpense(id string, cents int64, date time.Time) Transaction {
	tx := expense(cents, ExpenseVariable, MethodCredit, PaymentPaid, "card-1")
	tx.ID = id
	tx.Date = date
	return tx
}

func TestBillingCycleBeforeClosing(t *testing.T) {
	now := NewDate(2024, 3, 10)
	cycle := CurrentBillingCycle(testCard(), nil, now)

	if !cycle.CloseDate.Equal(NewDate(2024, 3, 20)) {
		t.Fatalf("closeDate = %v, want 2024-03-20", cycle.CloseDate)
	}
	// Due day 5 precedes closing day 20, so the due date falls in the month
	// after the closing month.
	if !cycle.DueDate.Equal(NewDate(2024, 4, 5)) {
		t.Fatalf("dueDate = %v, want 2024-04-05", cycle.DueDate)
	}
}

func TestBillingCycleRollsAfterClosing(t *testing.T) {
	now := NewDate(2024, 3, 25)
	cycle := CurrentBillingCycle(testCard(), nil, now)

	if !cycle.CloseDate.Equal(NewDate(2024, 4, 20)) {
		t.Fatalf("closeDate = %v, want 2024-04-20", cycle.CloseDate)
	}
	if !cycle.DueDate.Equal(NewDate(2024, 5, 5)) {
		t.Fatalf("dueDate = %v, want 2024-05-05", cycle.DueDate)
	}
}

func TestBillingCycleDueDateSameMonth(t *testing.T) {
	card := testCard()
	card.ClosingDay = 5
	card.DueDay = 15

	cycle := CurrentBillingCycle(card, nil, NewDate(2024, 3, 2))
	if !cycle.CloseDate.Equal(NewDate(2024, 3, 5)) {
		t.Fatalf("closeDate = %v, want 2024-03-05", cycle.CloseDate)
	}
	if !cycle.DueDate.Equal(NewDate(2024, 3, 15)) {
		t.Fatalf("dueDate = %v, want 2024-03-15", cycle.DueDate)
	}
}

func TestBillingCycleTransactionSelection(t *testing.T) {
	// Open cycle at now=2024-03-10 spans (2024-02-20, 2024-03-20].
	now := NewDate(2024, 3, 10)
	txs := []Transaction{
		cardExpense("on-prev-boundary", 1000, NewDate(2024, 2, 20)), // excluded
		cardExpense("inside", 2000, NewDate(2024, 3, 1)),
		cardExpense("on-close-boundary", 3000, NewDate(2024, 3, 20)), // included
		cardExpense("after-close", 4000, NewDate(2024, 3, 21)),
	}
	// Same period but a different card.
	other := cardExpense("other-card", 5000, NewDate(2024, 3, 5))
	other.Expense.CreditCardID = "card-2"
	txs = append(txs, other)
	// Pix expense in range must not join the card cycle.
	pix := expense(6000, ExpenseVariable, MethodPix, PaymentPaid, "")
	pix.Date = NewDate(2024, 3, 5)
	txs = append(txs, pix)

	cycle := CurrentBillingCycle(testCard(), txs, now)

	if len(cycle.Transactions) != 2 {
		t.Fatalf("selected %d transactions, want 2: %+v", len(cycle.Transactions), cycle.Transactions)
	}
	if cycle.TotalAmount.Cents != 5000 {
		t.Fatalf("totalAmount = %d, want 5000", cycle.TotalAmount.Cents)
	}
	for _, tx := range cycle.Transactions {
		if tx.ID == "on-prev-boundary" || tx.ID == "after-close" {
			t.Fatalf("transaction %q should be outside the cycle", tx.ID)
		}
	}
}

func TestBillingCycleDayOverflowRollsOver(t *testing.T) {
	card := testCard()
	card.ClosingDay = 31
	card.DueDay = 31

	// January 31 closing has passed; the next closing is "February 31",
	// which normalizes into March.
	cycle := CurrentBillingCycle(card, nil, NewDate(2024, 2, 10))
	if !cycle.CloseDate.Equal(NewDate(2024, 3, 2)) {
		t.Fatalf("closeDate = %v, want 2024-03-02 (rollover, not clamp)", cycle.CloseDate)
	}
}

func TestBillingCycleDeterministic(t *testing.T) {
	now := NewDate(2024, 3, 10)
	txs := []Transaction{cardExpense("a", 1500, NewDate(2024, 3, 1))}

	first := CurrentBillingCycle(testCard(), txs, now)
	second := CurrentBillingCycle(testCard(), txs, now)

	if first.TotalAmount != second.TotalAmount ||
		!first.CloseDate.Equal(second.CloseDate) ||
		!first.DueDate.Equal(second.DueDate) ||
		len(first.Transactions) != len(second.Transactions) {
		t.Fatalf("repeated calls diverged: %+v vs %+v", first, second)
	}
	if txs[0].Amount.Cents != 1500 {
		t.Fatalf("input transaction mutated")
	}
}

func TestTransactionsByCard(t *testing.T) {
	txs := []Transaction{
		cardExpense("a", 100, NewDate(2024, 1, 5)),
		cardExpense("b", 200, NewDate(2024, 6, 5)),
	}
	other := cardExpense("c", 300, NewDate(2024, 6, 5))
	other.Expense.CreditCardID = "card-2"
	txs = append(txs, other)

	got := TransactionsByCard("card-1", txs)
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
}
