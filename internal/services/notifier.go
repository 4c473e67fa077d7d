package services

import (
	"fmt"
	"time"

	"grana/internal/core"
	"grana/internal/store"
)

// Notifier derives user-facing notifications from the current financial
// state: budget envelopes over their allocation, card statements about to
// close, and pending bills coming due.
type Notifier struct {
	store           *store.Store
	closingWarnDays int
	dueWarnDays     int
}

func NewNotifier(st *store.Store, closingWarnDays, dueWarnDays int) *Notifier {
	return &Notifier{
		store:           st,
		closingWarnDays: closingWarnDays,
		dueWarnDays:     dueWarnDays,
	}
}

// Sweep evaluates every rule at the given instant and records the resulting
// notifications, skipping any whose title and message already exist unread.
// Returns the notifications actually added.
func (n *Notifier) Sweep(now time.Time) []core.Notification {
	candidates := n.evaluate(now)
	if len(candidates) == 0 {
		return nil
	}

	existing := make(map[string]bool)
	for _, cur := range n.store.Notifications() {
		if !cur.Read {
			existing[cur.Title+"\x00"+cur.Message] = true
		}
	}

	var added []core.Notification
	for _, c := range candidates {
		if existing[c.Title+"\x00"+c.Message] {
			continue
		}
		added = append(added, n.store.AddNotification(c))
	}
	return added
}

func (n *Notifier) evaluate(now time.Time) []core.Notification {
	var out []core.Notification

	for _, b := range n.store.Budgets() {
		if b.Spent.Cents > b.Allocated.Cents {
			over := b.Spent.Sub(b.Allocated)
			out = append(out, core.Notification{
				Title:   "Orçamento estourado",
				Message: fmt.Sprintf("%s passou %s do alocado", b.Name, core.FormatReais(over)),
				Date:    now,
				Type:    "warning",
			})
		}
	}

	transactions := n.store.Transactions()
	for _, card := range n.store.CreditCards() {
		cycle := core.CurrentBillingCycle(card, transactions, now)
		daysToClose := int(cycle.CloseDate.Sub(now).Hours() / 24)
		if daysToClose >= 0 && daysToClose <= n.closingWarnDays && cycle.TotalAmount.Cents > 0 {
			out = append(out, core.Notification{
				Title:   "Fatura fechando",
				Message: fmt.Sprintf("%s fecha em %s com %s", card.Name, cycle.CloseDate.Format("02/01"), core.FormatReais(cycle.TotalAmount)),
				Date:    now,
				Type:    "info",
			})
		}
	}

	dueCutoff := now.AddDate(0, 0, n.dueWarnDays)
	for _, t := range transactions {
		if !core.IsPendingBill(t) || t.Expense.DueDate.IsZero() {
			continue
		}
		if t.Expense.DueDate.Before(now) || !t.Expense.DueDate.After(dueCutoff) {
			out = append(out, core.Notification{
				Title:   "Conta a vencer",
				Message: fmt.Sprintf("%s vence em %s", t.Description, t.Expense.DueDate.Format("02/01")),
				Date:    now,
				Type:    "alert",
			})
		}
	}

	return out
}
