package services

import (
	"testing"

	"grana/internal/core"
	"grana/internal/store"
)

func TestSweepBudgetOverrun(t *testing.T) {
	st := store.New()
	if _, err := st.AddBudget(core.BudgetCategory{
		Name: "Lazer", Allocated: core.Money{Cents: 30000}, Spent: core.Money{Cents: 45000},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	n := NewNotifier(st, 3, 3)

	added := n.Sweep(core.NewDate(2024, 3, 15))
	if len(added) != 1 {
		t.Fatalf("added %d notifications, want 1", len(added))
	}
	if added[0].Type != "warning" || added[0].Title != "Orçamento estourado" {
		t.Fatalf("notification = %+v", added[0])
	}

	// Second sweep must not duplicate the unread notification.
	if again := n.Sweep(core.NewDate(2024, 3, 16)); len(again) != 0 {
		t.Fatalf("duplicate notification added: %+v", again)
	}
}

func TestSweepCardClosingSoon(t *testing.T) {
	st := store.NewSeeded() // card-1 closes on the 20th with charges in cycle
	n := NewNotifier(st, 3, 0)

	added := n.Sweep(core.NewDate(2024, 3, 18))
	var found bool
	for _, a := range added {
		if a.Title == "Fatura fechando" {
			found = true
			if a.Type != "info" {
				t.Fatalf("closing notification type = %s", a.Type)
			}
		}
	}
	if !found {
		t.Fatalf("no closing notification among %+v", added)
	}

	// Far from the closing date no card notification fires.
	st2 := store.NewSeeded()
	n2 := NewNotifier(st2, 3, 0)
	for _, a := range n2.Sweep(core.NewDate(2024, 3, 2)) {
		if a.Title == "Fatura fechando" {
			t.Fatalf("closing notification fired 18 days early")
		}
	}
}

func TestSweepPendingBillDue(t *testing.T) {
	st := store.New()
	if _, err := st.AddTransaction(core.Transaction{
		Amount: core.Money{Cents: 4522}, Category: "Água", Description: "Conta de água",
		Date: core.NewDate(2024, 3, 2), Kind: core.KindExpense,
		Expense: &core.ExpenseDetails{
			ExpenseType:   core.ExpenseFixed,
			PaymentStatus: core.PaymentPending,
			PaymentMethod: core.MethodBoleto,
			DueDate:       core.NewDate(2024, 3, 15),
		},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	n := NewNotifier(st, 0, 3)

	added := n.Sweep(core.NewDate(2024, 3, 13))
	if len(added) != 1 || added[0].Type != "alert" {
		t.Fatalf("added = %+v, want one alert", added)
	}

	// Paid bills never alert.
	st2 := store.New()
	tx, _ := st2.AddTransaction(core.Transaction{
		Amount: core.Money{Cents: 100}, Category: "x", Description: "paid bill",
		Date: core.NewDate(2024, 3, 2), Kind: core.KindExpense,
		Expense: &core.ExpenseDetails{
			ExpenseType:   core.ExpenseFixed,
			PaymentStatus: core.PaymentPaid,
			PaymentMethod: core.MethodBoleto,
			DueDate:       core.NewDate(2024, 3, 15),
		},
	})
	_ = tx
	if added := NewNotifier(st2, 0, 3).Sweep(core.NewDate(2024, 3, 13)); len(added) != 0 {
		t.Fatalf("paid bill alerted: %+v", added)
	}
}
