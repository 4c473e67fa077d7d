package services

import (
	"context"
	"fmt"
	"log/slog"

	"grana/internal/amqp"
	"grana/internal/core"
	"grana/internal/store"
)

// EventPublisher is the outbound port for transaction events. The AMQP
// client satisfies it; tests use a recording fake.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, id, action string) error
}

// TransactionService orchestrates transaction mutations: store insert with
// its card side effect, dangling-reference logging, and the asynchronous
// event publish. Publishing is best effort; the mutation never fails because
// the broker is down.
type TransactionService struct {
	store     *store.Store
	publisher EventPublisher
}

func NewTransactionService(st *store.Store, publisher EventPublisher) *TransactionService {
	return &TransactionService{store: st, publisher: publisher}
}

// Create validates and inserts a transaction. A credit expense referencing
// an unknown card is still stored; the side effect no-ops and the condition
// is logged here, per the invalid-reference policy.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if core.IsCreditCardExpense(t) {
		if _, ok := s.store.CreditCard(t.Expense.CreditCardID); !ok {
			slog.WarnContext(ctx, "Transaction references unknown credit card",
				"card_id", t.Expense.CreditCardID,
				"description", t.Description)
		}
	}

	created, err := s.store.AddTransaction(t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

// Update replaces a transaction in place; no event is published because the
// notifier reads current state on its periodic sweep anyway.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := s.store.UpdateTransaction(t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Delete removes a transaction and publishes a deleted event.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, id, action string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not available, skipping", "id", id, "action", action)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "action", action, "error", err)
	}
}
