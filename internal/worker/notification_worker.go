// Package worker reacts to transaction events: it refreshes the local view
// of the ledger, mirrors new transactions to the spreadsheet, and runs the
// notification rules.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"grana/internal/amqp"
	"grana/internal/core"
	"grana/internal/services"
	"grana/internal/storage"
	"grana/internal/store"
)

// TransactionExporter mirrors a transaction to an external sink. The Google
// Sheets exporter satisfies it.
type TransactionExporter interface {
	AppendTransaction(ctx context.Context, t core.Transaction) error
}

// SnapshotLoader reloads the full ledger from the persistence backend.
type SnapshotLoader interface {
	LoadAll(ctx context.Context) (storage.Snapshot, error)
}

type NotificationWorker struct {
	store    *store.Store
	notifier *services.Notifier
	exporter TransactionExporter
	loader   SnapshotLoader
}

// NewNotificationWorker assembles a worker around its own store instance.
// loader and exporter are optional: without a loader the worker trusts the
// store it was given, without an exporter nothing is mirrored.
func NewNotificationWorker(st *store.Store, notifier *services.Notifier, exporter TransactionExporter, loader SnapshotLoader) *NotificationWorker {
	return &NotificationWorker{
		store:    st,
		notifier: notifier,
		exporter: exporter,
		loader:   loader,
	}
}

// HandleTransactionEvent processes one event from the queue: refresh the
// ledger, mirror created transactions, sweep the notification rules. The
// returned error causes a requeue, so mirror failures are retried.
func (w *NotificationWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", msg.ID,
		"action", msg.Action)

	if err := w.refresh(ctx); err != nil {
		return fmt.Errorf("refresh ledger: %w", err)
	}

	if msg.Action == amqp.ActionCreated && w.exporter != nil {
		tx, ok := w.findTransaction(msg.ID)
		if !ok {
			// Deleted again before we got to it; nothing to mirror.
			slog.WarnContext(ctx, "Transaction from event not found", "id", msg.ID)
		} else if err := w.exporter.AppendTransaction(ctx, tx); err != nil {
			return fmt.Errorf("mirror transaction %s: %w", msg.ID, err)
		}
	}

	added := w.notifier.Sweep(time.Now().UTC())
	if len(added) > 0 {
		slog.InfoContext(ctx, "Notifications raised", "count", len(added))
	}
	return nil
}

// RunPeriodicSweep evaluates the notification rules on a fixed interval so
// time-based conditions (approaching closing and due dates) fire even when
// no transactions arrive. Blocks until ctx is done.
func (w *NotificationWorker) RunPeriodicSweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Ledger refresh failed", "error", err)
				continue
			}
			added := w.notifier.Sweep(time.Now().UTC())
			if len(added) > 0 {
				slog.InfoContext(ctx, "Notifications raised on sweep", "count", len(added))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *NotificationWorker) refresh(ctx context.Context) error {
	if w.loader == nil {
		return nil
	}
	snap, err := w.loader.LoadAll(ctx)
	if err != nil {
		return err
	}
	w.store.Hydrate(snap.Transactions, snap.IncomeSources, snap.Cards, snap.Budgets, snap.Goals, snap.Notifications)
	return nil
}

func (w *NotificationWorker) findTransaction(id string) (core.Transaction, bool) {
	for _, t := range w.store.Transactions() {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}
