// Package store owns the shared entity collections and their summary.
//
// All mutation goes through a single mutex-guarded entry point per entity
// type, and the financial summary is recomputed synchronously before any
// mutator returns, so readers always observe a summary consistent with the
// last completed mutation. The aggregation itself lives in core; the store
// only feeds it and caches the result.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"grana/internal/core"
)

var ErrNotFound = errors.New("entity not found")

type Store struct {
	mu sync.Mutex

	transactions  []core.Transaction
	incomeSources []core.IncomeSource
	cards         []core.CreditCard
	budgets       []core.BudgetCategory
	goals         []core.SavingsGoal
	notifications []core.Notification

	summary   core.FinancialSummary
	revision  uint64
	persister Persister
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

func newID() string {
	return uuid.NewString()
}

// recompute refreshes the cached summary and bumps the revision.
// Callers must hold s.mu.
func (s *Store) recompute() {
	s.summary = core.Summarize(s.transactions, s.incomeSources)
	s.revision++
}

// Revision returns a counter that increases on every completed mutation.
// HTTP-level caches key on it.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Summary returns the summary as of the last completed mutation.
func (s *Store) Summary() core.FinancialSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...)
}

func (s *Store) IncomeSources() []core.IncomeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.IncomeSource(nil), s.incomeSources...)
}

func (s *Store) CreditCards() []core.CreditCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CreditCard(nil), s.cards...)
}

func (s *Store) Budgets() []core.BudgetCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BudgetCategory(nil), s.budgets...)
}

func (s *Store) Goals() []core.SavingsGoal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.SavingsGoal(nil), s.goals...)
}

func (s *Store) Notifications() []core.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Notification(nil), s.notifications...)
}

// AddTransaction inserts a transaction, applying the card side effect for
// credit payments exactly once. A missing ID is assigned. The summary is
// recomputed before returning.
func (s *Store) AddTransaction(t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = newID()
	}
	s.cards = core.ApplyTransactionSideEffects(t, s.cards)
	s.transactions = append(s.transactions, t)
	s.recompute()
	s.persist("upsert transaction", func(ctx context.Context, p Persister) error {
		return p.UpsertTransaction(ctx, t)
	})
	return t, nil
}

// UpdateTransaction replaces a transaction by ID. Card balances are rebuilt
// from scratch because the amount, method or card reference may have changed.
func (s *Store) UpdateTransaction(t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == t.ID {
			s.transactions[i] = t
			s.cards = core.RebuildCardBalances(s.cards, s.transactions)
			s.recompute()
			s.persist("upsert transaction", func(ctx context.Context, p Persister) error {
				return p.UpsertTransaction(ctx, t)
			})
			return nil
		}
	}
	return ErrNotFound
}

// DeleteTransaction removes a transaction by ID and re-derives card balances
// as a fold, the double-apply-safe inverse of the insert side effect.
func (s *Store) DeleteTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			s.cards = core.RebuildCardBalances(s.cards, s.transactions)
			s.recompute()
			s.persist("delete transaction", func(ctx context.Context, p Persister) error {
				return p.DeleteTransaction(ctx, id)
			})
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) AddIncome(src core.IncomeSource) (core.IncomeSource, error) {
	if err := src.Validate(); err != nil {
		return core.IncomeSource{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if src.ID == "" {
		src.ID = newID()
	}
	s.incomeSources = append(s.incomeSources, src)
	s.recompute()
	s.persist("upsert income", func(ctx context.Context, p Persister) error {
		return p.UpsertIncome(ctx, src)
	})
	return src, nil
}

func (s *Store) UpdateIncome(src core.IncomeSource) error {
	if err := src.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.incomeSources {
		if s.incomeSources[i].ID == src.ID {
			s.incomeSources[i] = src
			s.recompute()
			s.persist("upsert income", func(ctx context.Context, p Persister) error {
				return p.UpsertIncome(ctx, src)
			})
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) DeleteIncome(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.incomeSources {
		if s.incomeSources[i].ID == id {
			s.incomeSources = append(s.incomeSources[:i], s.incomeSources[i+1:]...)
			s.recompute()
			s.persist("delete income", func(ctx context.Context, p Persister) error {
				return p.DeleteIncome(ctx, id)
			})
			return nil
		}
	}
	return ErrNotFound
}

// AddCreditCard inserts a card with the availableLimit invariant restored.
func (s *Store) AddCreditCard(c core.CreditCard) (core.CreditCard, error) {
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = newID()
	}
	c.AvailableLimit = c.Limit.Sub(c.CurrentBalance)
	s.cards = append(s.cards, c)
	s.revision++
	s.persist("upsert card", func(ctx context.Context, p Persister) error {
		return p.UpsertCard(ctx, c)
	})
	return c, nil
}

func (s *Store) UpdateCreditCard(c core.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cards {
		if s.cards[i].ID == c.ID {
			c.AvailableLimit = c.Limit.Sub(c.CurrentBalance)
			s.cards[i] = c
			s.revision++
			s.persist("upsert card", func(ctx context.Context, p Persister) error {
				return p.UpsertCard(ctx, c)
			})
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) DeleteCreditCard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cards {
		if s.cards[i].ID == id {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			s.revision++
			s.persist("delete card", func(ctx context.Context, p Persister) error {
				return p.DeleteCard(ctx, id)
			})
			return nil
		}
	}
	return ErrNotFound
}

// CreditCard looks a card up by ID.
func (s *Store) CreditCard(id string) (core.CreditCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.cards {
		if c.ID == id {
			return c, true
		}
	}
	return core.CreditCard{}, false
}

// BillingCycle resolves the open billing cycle for a card ID at the given
// instant. The bool is false when the card does not exist.
func (s *Store) BillingCycle(cardID string, now time.Time) (core.BillingCycle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.cards {
		if c.ID == cardID {
			return core.CurrentBillingCycle(c, s.transactions, now), true
		}
	}
	return core.BillingCycle{}, false
}

func (s *Store) AddBudget(b core.BudgetCategory) (core.BudgetCategory, error) {
	if err := b.Validate(); err != nil {
		return core.BudgetCategory{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = newID()
	}
	s.budgets = append(s.budgets, b)
	s.revision++
	s.persist("upsert budget", func(ctx context.Context, p Persister) error {
		return p.UpsertBudget(ctx, b)
	})
	return b, nil
}

func (s *Store) UpdateBudget(b core.BudgetCategory) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.budgets {
		if s.budgets[i].ID == b.ID {
			s.budgets[i] = b
			s.revision++
			s.persist("upsert budget", func(ctx context.Context, p Persister) error {
				return p.UpsertBudget(ctx, b)
			})
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) DeleteBudget(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.budgets {
		if s.budgets[i].ID == id {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			s.revision++
			s.persist("delete budget", func(ctx context.Context, p Persister) error {
				return p.DeleteBudget(ctx, id)
			})
			return nil
		}
	}
	return ErrNotFound
}

// SpentByCategory derives the amount actually spent in a category from the
// expense transactions, independently of the Spent field maintained through
// the budget CRUD. The two views are reconciled by the caller when needed.
func (s *Store) SpentByCategory(name string) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total core.Money
	for _, t := range s.transactions {
		if t.IsExpense() && t.Category == name {
			total.Cents += t.Amount.Cents
		}
	}
	return total
}

func (s *Store) AddGoal(g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = newID()
	}
	s.goals = append(s.goals, g)
	s.revision++
	s.persist("upsert goal", func(ctx context.Context, p Persister) error {
		return p.UpsertGoal(ctx, g)
	})
	return g, nil
}

func (s *Store) UpdateGoal(g core.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.goals {
		if s.goals[i].ID == g.ID {
			s.goals[i] = g
			s.revision++
			s.persist("upsert goal", func(ctx context.Context, p Persister) error {
				return p.UpsertGoal(ctx, g)
			})
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) DeleteGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.goals {
		if s.goals[i].ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			s.revision++
			s.persist("delete goal", func(ctx context.Context, p Persister) error {
				return p.DeleteGoal(ctx, id)
			})
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) AddNotification(n core.Notification) core.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = newID()
	}
	if n.Date.IsZero() {
		n.Date = time.Now().UTC()
	}
	s.notifications = append(s.notifications, n)
	s.revision++
	s.persist("upsert notification", func(ctx context.Context, p Persister) error {
		return p.UpsertNotification(ctx, n)
	})
	return n
}

func (s *Store) MarkNotificationRead(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			s.revision++
			n := s.notifications[i]
			s.persist("upsert notification", func(ctx context.Context, p Persister) error {
				return p.UpsertNotification(ctx, n)
			})
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) DeleteNotification(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			s.revision++
			s.persist("delete notification", func(ctx context.Context, p Persister) error {
				return p.DeleteNotification(ctx, id)
			})
			return nil
		}
	}
	return ErrNotFound
}

// Hydrate replaces every collection at once, rebuilding card balances by
// fold and recomputing the summary. Used when loading from a persistence
// backend or seeding.
func (s *Store) Hydrate(
	transactions []core.Transaction,
	incomeSources []core.IncomeSource,
	cards []core.CreditCard,
	budgets []core.BudgetCategory,
	goals []core.SavingsGoal,
	notifications []core.Notification,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append([]core.Transaction(nil), transactions...)
	s.incomeSources = append([]core.IncomeSource(nil), incomeSources...)
	s.cards = core.RebuildCardBalances(cards, s.transactions)
	s.budgets = append([]core.BudgetCategory(nil), budgets...)
	s.goals = append([]core.SavingsGoal(nil), goals...)
	s.notifications = append([]core.Notification(nil), notifications...)
	s.recompute()
}
