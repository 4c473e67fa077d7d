package services

import (
	"context"
	"log/slog"
	"time"

	"grana/internal/core"
	"grana/internal/store"
)

// RecurringProcessor materializes recurring transactions and income sources
// into concrete records when their frequency says they are due.
//
// Last-materialization times live in the processor, keyed by template ID and
// seeded from each template's own date, so a freshly started processor does
// not instantly duplicate a template that was recorded earlier the same
// period.
type RecurringProcessor struct {
	store         *store.Store
	txService     *TransactionService
	lastExecution map[string]time.Time
}

func NewRecurringProcessor(st *store.Store, txService *TransactionService) *RecurringProcessor {
	p := &RecurringProcessor{
		store:         st,
		txService:     txService,
		lastExecution: make(map[string]time.Time),
	}
	for _, t := range st.Transactions() {
		if t.Recurrent {
			p.lastExecution[t.ID] = t.Date
		}
	}
	for _, src := range st.IncomeSources() {
		if src.Recurrent {
			p.lastExecution[src.ID] = src.Date
		}
	}
	return p
}

// ProcessDue walks every recurring template and materializes the due ones.
// Returns how many records were created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	created := 0

	for _, t := range p.store.Transactions() {
		if !t.Recurrent {
			continue
		}
		due, err := p.isDue(t.ID, t.Frequency, t.Date, now)
		if err != nil {
			slog.ErrorContext(ctx, "Cannot check transaction dueness",
				"id", t.ID, "frequency", t.Frequency, "error", err)
			continue
		}
		if !due {
			continue
		}

		instance := materializeTransaction(t, now)
		if _, err := p.txService.Create(ctx, instance); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring transaction",
				"template_id", t.ID, "description", t.Description, "error", err)
			continue
		}

		p.lastExecution[t.ID] = now
		created++
		slog.InfoContext(ctx, "Materialized recurring transaction",
			"template_id", t.ID,
			"description", t.Description,
			"amount_cents", t.Amount.Cents,
			"frequency", t.Frequency)
	}

	for _, src := range p.store.IncomeSources() {
		if !src.Recurrent {
			continue
		}
		due, err := p.isDue(src.ID, src.Frequency, src.Date, now)
		if err != nil {
			slog.ErrorContext(ctx, "Cannot check income dueness",
				"id", src.ID, "frequency", src.Frequency, "error", err)
			continue
		}
		if !due {
			continue
		}

		instance := core.IncomeSource{
			Name:      src.Name,
			Amount:    src.Amount,
			Date:      now,
			Frequency: core.OneTime,
		}
		if _, err := p.store.AddIncome(instance); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring income",
				"template_id", src.ID, "name", src.Name, "error", err)
			continue
		}

		p.lastExecution[src.ID] = now
		created++
		slog.InfoContext(ctx, "Materialized recurring income",
			"template_id", src.ID,
			"name", src.Name,
			"amount_cents", src.Amount.Cents)
	}

	return created, nil
}

func (p *RecurringProcessor) isDue(id string, freq core.Frequency, startDate, now time.Time) (bool, error) {
	checker, err := GetDuenessChecker(freq)
	if err != nil {
		return false, err
	}
	return checker.IsDue(p.lastExecution[id], now, startDate), nil
}

// materializeTransaction produces the concrete instance of a recurring
// template: fresh ID, dated now, non-recurrent, pending when the template
// carries a due date.
func materializeTransaction(t core.Transaction, now time.Time) core.Transaction {
	instance := t
	instance.ID = ""
	instance.Date = now
	instance.Recurrent = false
	instance.Frequency = ""

	if t.Expense != nil {
		details := *t.Expense
		if !details.DueDate.IsZero() {
			// Shift the due date into the materialization month, keeping the
			// day of month.
			details.DueDate = core.NewDate(now.Year(), int(now.Month()), details.DueDate.Day())
			details.PaymentStatus = core.PaymentPending
		}
		instance.Expense = &details
	}
	return instance
}
