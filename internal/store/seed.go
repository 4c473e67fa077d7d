package store

import (
	"grana/internal/core"
)

// NewSeeded returns a store populated with the demo dataset used by the
// memory backend: a typical month of expenses, four income sources, a few
// budget envelopes, two goals and two credit cards. Card balances are
// derived from the credit transactions during hydration.
func NewSeeded() *Store {
	s := New()
	s.Hydrate(seedTransactions(), seedIncomes(), seedCards(), seedBudgets(), seedGoals(), nil)
	return s
}

func seedTransactions() []core.Transaction {
	return []core.Transaction{
		{
			ID: "tx-1", Amount: core.Money{Cents: 35000}, Category: "Supermercado",
			Description: "Compras da semana", Date: core.NewDate(2024, 3, 15),
			Kind: core.KindExpense,
			Expense: &core.ExpenseDetails{
				ExpenseType: core.ExpenseVariable, PaymentStatus: core.PaymentPaid,
				PaymentMethod: core.MethodDebit,
			},
		},
		{
			ID: "tx-2", Amount: core.Money{Cents: 1290}, Category: "Café",
			Description: "Café da manhã", Date: core.NewDate(2024, 3, 15),
			Kind: core.KindExpense,
			Expense: &core.ExpenseDetails{
				ExpenseType: core.ExpenseVariable, PaymentStatus: core.PaymentPaid,
				PaymentMethod: core.MethodCash,
			},
		},
		{
			ID: "tx-3", Amount: core.Money{Cents: 120000}, Category: "Aluguel",
			Description: "Aluguel março", Date: core.NewDate(2024, 3, 14),
			Kind: core.KindExpense, Recurrent: true, Frequency: core.Monthly,
			Expense: &core.ExpenseDetails{
				ExpenseType: core.ExpenseFixed, PaymentStatus: core.PaymentPaid,
				PaymentMethod: core.MethodTransfer, DueDate: core.NewDate(2024, 3, 10),
			},
		},
		{
			ID: "tx-4", Amount: core.Money{Cents: 8000}, Category: "Transporte",
			Description: "Gasolina", Date: core.NewDate(2024, 3, 14),
			Kind: core.KindExpense,
			Expense: &core.ExpenseDetails{
				ExpenseType: core.ExpenseVariable, PaymentStatus: core.PaymentPaid,
				PaymentMethod: core.MethodCredit, CreditCardID: "card-1",
			},
		},
		{
			ID: "tx-5", Amount: core.Money{Cents: 12000}, Category: "Lazer",
			Description: "Cinema e jantar", Date: core.NewDate(2024, 3, 10),
			Kind: core.KindExpense,
			Expense: &core.ExpenseDetails{
				ExpenseType: core.ExpenseVariable, PaymentStatus: core.PaymentPaid,
				PaymentMethod: core.MethodCredit, CreditCardID: "card-1",
			},
		},
		{
			ID: "tx-6", Amount: core.Money{Cents: 8990}, Category: "Internet",
			Description: "Internet março", Date: core.NewDate(2024, 3, 5),
			Kind: core.KindExpense, Recurrent: true, Frequency: core.Monthly,
			Expense: &core.ExpenseDetails{
				ExpenseType: core.ExpenseFixed, PaymentStatus: core.PaymentPaid,
				PaymentMethod: core.MethodDebit, DueDate: core.NewDate(2024, 3, 5),
			},
		},
		{
			ID: "tx-7", Amount: core.Money{Cents: 4522}, Category: "Água",
			Description: "Conta de água", Date: core.NewDate(2024, 3, 2),
			Kind: core.KindExpense, Recurrent: true, Frequency: core.Monthly,
			Expense: &core.ExpenseDetails{
				ExpenseType: core.ExpenseFixed, PaymentStatus: core.PaymentPending,
				PaymentMethod: core.MethodBoleto, DueDate: core.NewDate(2024, 3, 15),
			},
		},
	}
}

func seedIncomes() []core.IncomeSource {
	return []core.IncomeSource{
		{ID: "inc-1", Name: "Salário", Amount: core.Money{Cents: 350000}, Date: core.NewDate(2024, 3, 5), Recurrent: true, Frequency: core.Monthly},
		{ID: "inc-2", Name: "Freelance", Amount: core.Money{Cents: 45000}, Date: core.NewDate(2024, 3, 10), Frequency: core.OneTime},
		{ID: "inc-3", Name: "Dividendos", Amount: core.Money{Cents: 23515}, Date: core.NewDate(2024, 3, 15), Recurrent: true, Frequency: core.Monthly},
		{ID: "inc-4", Name: "Aluguel", Amount: core.Money{Cents: 24700}, Date: core.NewDate(2024, 3, 10), Recurrent: true, Frequency: core.Monthly},
	}
}

func seedCards() []core.CreditCard {
	return []core.CreditCard{
		{ID: "card-1", Name: "Nubank", LastDigits: "4242", Limit: core.Money{Cents: 500000}, ClosingDay: 20, DueDay: 5, Color: "#820ad1", Brand: "mastercard"},
		{ID: "card-2", Name: "Inter", LastDigits: "1881", Limit: core.Money{Cents: 300000}, ClosingDay: 10, DueDay: 17, Color: "#ff7a00", Brand: "visa"},
	}
}

func seedBudgets() []core.BudgetCategory {
	return []core.BudgetCategory{
		{ID: "bud-1", Name: "Alimentação", Allocated: core.Money{Cents: 80000}, Spent: core.Money{Cents: 62000}},
		{ID: "bud-2", Name: "Transporte", Allocated: core.Money{Cents: 40000}, Spent: core.Money{Cents: 35000}},
		{ID: "bud-3", Name: "Moradia", Allocated: core.Money{Cents: 120000}, Spent: core.Money{Cents: 120000}, IsFixed: true},
		{ID: "bud-4", Name: "Lazer", Allocated: core.Money{Cents: 30000}, Spent: core.Money{Cents: 12000}},
	}
}

func seedGoals() []core.SavingsGoal {
	return []core.SavingsGoal{
		{ID: "goal-1", Name: "Reserva de emergência", Target: core.Money{Cents: 1000000}, Current: core.Money{Cents: 420000}, Deadline: core.NewDate(2024, 12, 31)},
		{ID: "goal-2", Name: "Viagem", Target: core.Money{Cents: 500000}, Current: core.Money{Cents: 150000}, Deadline: core.NewDate(2024, 9, 1)},
	}
}
