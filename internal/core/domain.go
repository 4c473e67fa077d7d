package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly Frequency = "monthly"
	Weekly  Frequency = "weekly"
	Yearly  Frequency = "yearly"
	OneTime Frequency = "one-time"
)

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

const (
	ExpenseFixed    ExpenseType = "fixed"
	ExpenseVariable ExpenseType = "variable"
)

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

const (
	MethodCash     PaymentMethod = "cash"
	MethodDebit    PaymentMethod = "debit"
	MethodCredit   PaymentMethod = "credit"
	MethodTransfer PaymentMethod = "transfer"
	MethodPix      PaymentMethod = "pix"
	MethodBoleto   PaymentMethod = "boleto"
)

type (
	Frequency       string
	TransactionKind string
	ExpenseType     string
	PaymentStatus   string
	PaymentMethod   string

	Money struct {
		Cents int64 `json:"cents"`
	}

	// ExpenseDetails carries the fields that are only meaningful when a
	// transaction is an expense. It is nil on income transactions, which
	// keeps the "expense-only fields" invariant visible in the type.
	ExpenseDetails struct {
		ExpenseType   ExpenseType   `json:"expenseType,omitempty"`
		PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
		PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
		CreditCardID  string        `json:"creditCardId,omitempty"`
		DueDate       time.Time     `json:"dueDate,omitempty"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        time.Time       `json:"date"`
		Kind        TransactionKind `json:"kind"`
		Recurrent   bool            `json:"recurrent"`
		Frequency   Frequency       `json:"frequency,omitempty"`
		Expense     *ExpenseDetails `json:"expense,omitempty"`
	}

	IncomeSource struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Amount    Money     `json:"amount"`
		Date      time.Time `json:"date"`
		Recurrent bool      `json:"recurrent"`
		Frequency Frequency `json:"frequency,omitempty"`
	}

	CreditCard struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		LastDigits     string `json:"lastDigits"`
		Limit          Money  `json:"limit"`
		ClosingDay     int    `json:"closingDay"`
		DueDay         int    `json:"dueDay"`
		CurrentBalance Money  `json:"currentBalance"`
		AvailableLimit Money  `json:"availableLimit"`
		Color          string `json:"color,omitempty"`
		Brand          string `json:"brand,omitempty"`
	}

	BudgetCategory struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Allocated Money  `json:"allocated"`
		Spent     Money  `json:"spent"`
		IsFixed   bool   `json:"isFixed,omitempty"`
	}

	SavingsGoal struct {
		ID       string    `json:"id"`
		Name     string    `json:"name"`
		Target   Money     `json:"target"`
		Current  Money     `json:"current"`
		Deadline time.Time `json:"deadline"`
	}

	Notification struct {
		ID      string    `json:"id"`
		Title   string    `json:"title"`
		Message string    `json:"message"`
		Date    time.Time `json:"date"`
		Read    bool      `json:"read"`
		Type    string    `json:"type"` // info, warning or alert
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidDay         = errors.New("invalid day of month")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyName          = errors.New("empty name")
	ErrMissingCreditCard  = errors.New("credit payment without card id")
	ErrUnexpectedExpense  = errors.New("expense details on income transaction")
	ErrMissingExpenseData = errors.New("expense transaction without details")
)

// NewDate builds a UTC midnight instant, the canonical representation for
// calendar dates throughout the domain.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Sub returns m minus other. Results may be negative; callers decide whether
// that is meaningful (available limit can go below zero on an overdrawn card).
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Add returns the sum of m and other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (f Frequency) Validate() error {
	switch f {
	case Monthly, Weekly, Yearly, OneTime:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Recurrent {
		if err := t.Frequency.Validate(); err != nil {
			return err
		}
	}
	switch t.Kind {
	case KindIncome:
		if t.Expense != nil {
			return ErrUnexpectedExpense
		}
	case KindExpense:
		if t.Expense == nil {
			return ErrMissingExpenseData
		}
		if t.Expense.PaymentMethod == MethodCredit && t.Expense.CreditCardID == "" {
			return ErrMissingCreditCard
		}
	default:
		return ErrInvalidKind
	}
	return nil
}

// IsExpense reports whether the transaction is a well-formed expense.
func (t Transaction) IsExpense() bool {
	return t.Kind == KindExpense && t.Expense != nil
}

func (s IncomeSource) Validate() error {
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	if s.Date.IsZero() {
		return ErrInvalidDate
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if s.Recurrent {
		if err := s.Frequency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c CreditCard) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if err := c.Limit.Validate(); err != nil {
		return err
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidDay
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDay
	}
	return nil
}

func (b BudgetCategory) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if err := b.Allocated.Validate(); err != nil {
		return err
	}
	if b.Spent.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
