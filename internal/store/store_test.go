package store

import (
	"errors"
	"testing"

	"grana/internal/core"
)

func pixExpense(cents int64) core.Transaction {
	return core.Transaction{
		Amount:      core.Money{Cents: cents},
		Category:    "Lazer",
		Description: "bar",
		Date:        core.NewDate(2024, 3, 12),
		Kind:        core.KindExpense,
		Expense: &core.ExpenseDetails{
			ExpenseType:   core.ExpenseVariable,
			PaymentStatus: core.PaymentPaid,
			PaymentMethod: core.MethodPix,
		},
	}
}

func creditExpense(cents int64, cardID string) core.Transaction {
	tx := pixExpense(cents)
	tx.Expense.PaymentMethod = core.MethodCredit
	tx.Expense.CreditCardID = cardID
	return tx
}

func TestAddTransactionAssignsIDAndRecomputes(t *testing.T) {
	s := New()
	before := s.Revision()

	tx, err := s.AddTransaction(pixExpense(5000))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID == "" {
		t.Fatalf("expected assigned ID")
	}
	if s.Revision() == before {
		t.Fatalf("revision did not advance")
	}

	sum := s.Summary()
	if sum.VariableExpenses.Cents != 5000 {
		t.Fatalf("summary not recomputed after insert: %+v", sum)
	}
	if sum.TotalBalance != sum.RemainingMoney {
		t.Fatalf("totalBalance drifted from remainingMoney: %+v", sum)
	}
}

func TestAddTransactionRejectsInvalid(t *testing.T) {
	s := New()
	bad := pixExpense(5000)
	bad.Expense = nil
	if _, err := s.AddTransaction(bad); !errors.Is(err, core.ErrMissingExpenseData) {
		t.Fatalf("got %v, want ErrMissingExpenseData", err)
	}
	if len(s.Transactions()) != 0 {
		t.Fatalf("invalid transaction was stored")
	}
}

func TestCreditInsertAppliesSideEffectOnce(t *testing.T) {
	s := New()
	if _, err := s.AddCreditCard(core.CreditCard{ID: "card-1", Name: "Main", Limit: core.Money{Cents: 500000}, CurrentBalance: core.Money{Cents: 120000}, ClosingDay: 20, DueDay: 5}); err != nil {
		t.Fatalf("add card: %v", err)
	}

	if _, err := s.AddTransaction(creditExpense(30000, "card-1")); err != nil {
		t.Fatalf("add tx: %v", err)
	}

	card, ok := s.CreditCard("card-1")
	if !ok {
		t.Fatalf("card disappeared")
	}
	if card.CurrentBalance.Cents != 150000 {
		t.Fatalf("currentBalance = %d, want 150000", card.CurrentBalance.Cents)
	}
	if card.AvailableLimit.Cents != 350000 {
		t.Fatalf("availableLimit = %d, want 350000", card.AvailableLimit.Cents)
	}
	if card.AvailableLimit.Cents+card.CurrentBalance.Cents != card.Limit.Cents {
		t.Fatalf("limit invariant broken: %+v", card)
	}
}

func TestDeleteTransactionRebuildsBalances(t *testing.T) {
	s := New()
	if _, err := s.AddCreditCard(core.CreditCard{ID: "card-1", Name: "Main", Limit: core.Money{Cents: 500000}, ClosingDay: 20, DueDay: 5}); err != nil {
		t.Fatalf("add card: %v", err)
	}
	tx, err := s.AddTransaction(creditExpense(30000, "card-1"))
	if err != nil {
		t.Fatalf("add tx: %v", err)
	}

	if err := s.DeleteTransaction(tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	card, _ := s.CreditCard("card-1")
	if card.CurrentBalance.Cents != 0 || card.AvailableLimit.Cents != 500000 {
		t.Fatalf("balance not rebuilt after delete: %+v", card)
	}
	if s.Summary().VariableExpenses.Cents != 0 {
		t.Fatalf("summary not recomputed after delete")
	}
}

func TestUpdateAndDeleteUnknownTransaction(t *testing.T) {
	s := New()
	tx := pixExpense(100)
	tx.ID = "ghost"
	if err := s.UpdateTransaction(tx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: got %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: got %v, want ErrNotFound", err)
	}
}

func TestIncomeMutationsDriveSummary(t *testing.T) {
	s := New()
	src, err := s.AddIncome(core.IncomeSource{Name: "Salário", Amount: core.Money{Cents: 350000}, Date: core.NewDate(2024, 3, 5)})
	if err != nil {
		t.Fatalf("add income: %v", err)
	}
	if s.Summary().TotalIncome.Cents != 350000 {
		t.Fatalf("summary missed income: %+v", s.Summary())
	}

	src.Amount = core.Money{Cents: 400000}
	if err := s.UpdateIncome(src); err != nil {
		t.Fatalf("update income: %v", err)
	}
	if s.Summary().TotalIncome.Cents != 400000 {
		t.Fatalf("summary missed income update")
	}

	if err := s.DeleteIncome(src.ID); err != nil {
		t.Fatalf("delete income: %v", err)
	}
	if s.Summary() != (core.FinancialSummary{}) {
		t.Fatalf("expected zero summary, got %+v", s.Summary())
	}
}

func TestBillingCycleLookup(t *testing.T) {
	s := NewSeeded()

	cycle, ok := s.BillingCycle("card-1", core.NewDate(2024, 3, 15))
	if !ok {
		t.Fatalf("expected card-1 to resolve")
	}
	// Seed holds two credit transactions on card-1 inside (Feb 20, Mar 20].
	if len(cycle.Transactions) != 2 || cycle.TotalAmount.Cents != 20000 {
		t.Fatalf("cycle = %+v", cycle)
	}

	if _, ok := s.BillingCycle("no-such-card", core.NewDate(2024, 3, 15)); ok {
		t.Fatalf("unknown card must resolve to none")
	}
}

func TestSeededStoreDerivesCardBalances(t *testing.T) {
	s := NewSeeded()
	card, ok := s.CreditCard("card-1")
	if !ok {
		t.Fatalf("card-1 missing")
	}
	if card.CurrentBalance.Cents != 20000 {
		t.Fatalf("currentBalance = %d, want 20000 (fold over credit transactions)", card.CurrentBalance.Cents)
	}
	if card.AvailableLimit.Cents != 480000 {
		t.Fatalf("availableLimit = %d, want 480000", card.AvailableLimit.Cents)
	}
}

func TestSpentByCategory(t *testing.T) {
	s := NewSeeded()
	if got := s.SpentByCategory("Lazer"); got.Cents != 12000 {
		t.Fatalf("spent(Lazer) = %d, want 12000", got.Cents)
	}
	if got := s.SpentByCategory("Inexistente"); got.Cents != 0 {
		t.Fatalf("spent(unknown) = %d, want 0", got.Cents)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	s := New()
	n := s.AddNotification(core.Notification{Title: "Orçamento estourado", Message: "Lazer acima do alocado", Type: "warning"})
	if n.ID == "" || n.Date.IsZero() {
		t.Fatalf("notification not normalized: %+v", n)
	}

	if err := s.MarkNotificationRead(n.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if got := s.Notifications(); !got[0].Read {
		t.Fatalf("notification still unread")
	}

	if err := s.DeleteNotification(n.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.Notifications()) != 0 {
		t.Fatalf("notification not deleted")
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := NewSeeded()
	txs := s.Transactions()
	txs[0].Amount = core.Money{Cents: 1}
	if s.Transactions()[0].Amount.Cents == 1 {
		t.Fatalf("snapshot aliased internal slice")
	}
}
