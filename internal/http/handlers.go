package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"grana/internal/core"
)

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	key := strconv.FormatUint(s.store.Revision(), 10)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary := s.store.Summary()
	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Transactions())
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.txService.Create(r.Context(), t)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Transaction created",
		"id", created.ID,
		"amount_cents", created.Amount.Cents,
		"category", created.Category)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t.ID = r.PathValue("id")

	if err := s.txService.Update(r.Context(), t); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.txService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.IncomeSources())
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var src core.IncomeSource
	if err := decodeJSON(r, &src); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.store.AddIncome(src)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var src core.IncomeSource
	if err := decodeJSON(r, &src); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	src.ID = r.PathValue("id")

	if err := s.store.UpdateIncome(src); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, src)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteIncome(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.CreditCards())
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var c core.CreditCard
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.store.AddCreditCard(c)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var c core.CreditCard
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = r.PathValue("id")

	if err := s.store.UpdateCreditCard(c); err != nil {
		writeDomainError(w, err)
		return
	}

	card, _ := s.store.CreditCard(c.ID)
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCreditCard(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBillingCycle resolves the open statement for a card. An optional
// `at` query parameter (RFC 3339 or 2006-01-02) overrides the reference
// instant, which makes past and future statements inspectable.
func (s *Server) handleBillingCycle(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	if v := r.URL.Query().Get("at"); v != "" {
		parsed, err := parseInstant(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at parameter")
			return
		}
		now = parsed
	}

	cardID := r.PathValue("id")
	key := strconv.FormatUint(s.store.Revision(), 10) + ":" + cardID + ":" + now.Format("2006-01-02")
	if cached, ok := s.cycleCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	cycle, ok := s.store.BillingCycle(cardID, now)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	s.cycleCache.Set(key, cycle)
	writeJSON(w, http.StatusOK, cycle)
}

func parseInstant(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Budgets())
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.BudgetCategory
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.store.AddBudget(b)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.BudgetCategory
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b.ID = r.PathValue("id")

	if err := s.store.UpdateBudget(b); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBudget(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBudgetSpent reports what the transactions actually add up to for a
// budget's category, next to the envelope's own Spent counter.
func (s *Server) handleBudgetSpent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, b := range s.store.Budgets() {
		if b.ID == id {
			writeJSON(w, http.StatusOK, struct {
				Category string     `json:"category"`
				Spent    core.Money `json:"spent"`
				Derived  core.Money `json:"derived"`
			}{
				Category: b.Name,
				Spent:    b.Spent,
				Derived:  s.store.SpentByCategory(b.Name),
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "not found")
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Goals())
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var g core.SavingsGoal
	if err := decodeJSON(r, &g); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.store.AddGoal(g)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var g core.SavingsGoal
	if err := decodeJSON(r, &g); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	g.ID = r.PathValue("id")

	if err := s.store.UpdateGoal(g); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGoal(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications := s.store.Notifications()
	if r.URL.Query().Get("unread") == "true" {
		unread := notifications[:0]
		for _, n := range notifications {
			if !n.Read {
				unread = append(unread, n)
			}
		}
		notifications = unread
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.store.MarkNotificationRead(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteNotification(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
