package store

import (
	"context"
	"log/slog"
	"time"

	"grana/internal/core"
)

// Persister mirrors completed mutations into a durable backend. The store
// treats persistence as best effort: a failed write is logged and the
// in-memory mutation stands, so a flaky disk never blocks the API.
type Persister interface {
	UpsertTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	UpsertIncome(ctx context.Context, s core.IncomeSource) error
	DeleteIncome(ctx context.Context, id string) error
	UpsertCard(ctx context.Context, c core.CreditCard) error
	DeleteCard(ctx context.Context, id string) error
	UpsertBudget(ctx context.Context, b core.BudgetCategory) error
	DeleteBudget(ctx context.Context, id string) error
	UpsertGoal(ctx context.Context, g core.SavingsGoal) error
	DeleteGoal(ctx context.Context, id string) error
	UpsertNotification(ctx context.Context, n core.Notification) error
	DeleteNotification(ctx context.Context, id string) error
}

// SetPersister attaches a durable backend. Call it before serving traffic.
func (s *Store) SetPersister(p Persister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persister = p
}

const persistTimeout = 5 * time.Second

// persist runs op against the attached persister, if any.
// Callers must hold s.mu.
func (s *Store) persist(what string, op func(context.Context, Persister) error) {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := op(ctx, s.persister); err != nil {
		slog.Error("Persist failed", "op", what, "error", err)
	}
}
