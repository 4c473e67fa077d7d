package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"grana/internal/core"
	"grana/internal/services"
	"grana/internal/store"
)

func newTestServer() (*Server, *store.Store) {
	st := store.NewSeeded()
	svc := services.NewTransactionService(st, nil)
	return NewServer(":0", st, svc), st
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer()
	defer s.rateLimiter.stop()

	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := doRequest(t, s, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, rec.Code)
		}
	}
}

func TestGetSummarySeeded(t *testing.T) {
	s, _ := newTestServer()
	defer s.rateLimiter.stop()

	rec := doRequest(t, s, http.MethodGet, "/api/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var summary core.FinancialSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.TotalIncome.Cents != 443215 {
		t.Fatalf("totalIncome = %d, want 443215", summary.TotalIncome.Cents)
	}
	if summary.FixedExpenses.Cents != 133512 {
		t.Fatalf("fixedExpenses = %d, want 133512", summary.FixedExpenses.Cents)
	}
	if summary.VariableExpenses.Cents != 56290 {
		t.Fatalf("variableExpenses = %d, want 56290", summary.VariableExpenses.Cents)
	}
	if summary.RemainingMoney.Cents != 253413 {
		t.Fatalf("remainingMoney = %d, want 253413", summary.RemainingMoney.Cents)
	}
	if summary.TotalBalance != summary.RemainingMoney {
		t.Fatalf("totalBalance diverged from remainingMoney")
	}
}

func TestSummaryReflectsMutation(t *testing.T) {
	s, st := newTestServer()
	defer s.rateLimiter.stop()

	before := st.Summary().VariableExpenses.Cents

	// Warm the cache, then mutate.
	doRequest(t, s, http.MethodGet, "/api/summary", "")

	body := `{"amount":{"cents":9900},"category":"Lazer","description":"show",` +
		`"date":"2024-03-16T00:00:00Z","kind":"expense",` +
		`"expense":{"expenseType":"variable","paymentStatus":"paid","paymentMethod":"pix"}}`
	if rec := doRequest(t, s, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}

	rec := doRequest(t, s, http.MethodGet, "/api/summary", "")
	var summary core.FinancialSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.VariableExpenses.Cents != before+9900 {
		t.Fatalf("stale summary served after mutation: %d", summary.VariableExpenses.Cents)
	}
}

func TestCreateTransactionAssignsID(t *testing.T) {
	s, st := newTestServer()
	defer s.rateLimiter.stop()

	body := `{"amount":{"cents":2500},"category":"Café","description":"padaria",` +
		`"date":"2024-03-16T00:00:00Z","kind":"expense",` +
		`"expense":{"expenseType":"variable","paymentStatus":"paid","paymentMethod":"cash"}}`
	rec := doRequest(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var created core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("no ID assigned")
	}
	if len(st.Transactions()) != 8 {
		t.Fatalf("transaction not stored")
	}
}

func TestCreateTransactionRejectsBadPayloads(t *testing.T) {
	s, _ := newTestServer()
	defer s.rateLimiter.stop()

	if rec := doRequest(t, s, http.MethodPost, "/api/transactions", `{not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body returned %d", rec.Code)
	}

	// Valid JSON, invalid domain data: credit payment without a card.
	body := `{"amount":{"cents":2500},"category":"Café","description":"padaria",` +
		`"date":"2024-03-16T00:00:00Z","kind":"expense",` +
		`"expense":{"expenseType":"variable","paymentStatus":"paid","paymentMethod":"credit"}}`
	if rec := doRequest(t, s, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid transaction returned %d", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s, st := newTestServer()
	defer s.rateLimiter.stop()

	if rec := doRequest(t, s, http.MethodDelete, "/api/transactions/tx-1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", rec.Code)
	}
	if len(st.Transactions()) != 6 {
		t.Fatalf("transaction not removed")
	}
	if rec := doRequest(t, s, http.MethodDelete, "/api/transactions/ghost", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown delete returned %d", rec.Code)
	}
}

func TestBillingCycleEndpoint(t *testing.T) {
	s, _ := newTestServer()
	defer s.rateLimiter.stop()

	rec := doRequest(t, s, http.MethodGet, "/api/cards/card-1/billing-cycle?at=2024-03-15", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var cycle core.BillingCycle
	if err := json.Unmarshal(rec.Body.Bytes(), &cycle); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cycle.TotalAmount.Cents != 20000 {
		t.Fatalf("totalAmount = %d, want 20000", cycle.TotalAmount.Cents)
	}
	if !cycle.CloseDate.Equal(core.NewDate(2024, 3, 20)) {
		t.Fatalf("closeDate = %v", cycle.CloseDate)
	}
	if !cycle.DueDate.Equal(core.NewDate(2024, 4, 5)) {
		t.Fatalf("dueDate = %v", cycle.DueDate)
	}
	if len(cycle.Transactions) != 2 {
		t.Fatalf("got %d cycle transactions, want 2", len(cycle.Transactions))
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/cards/ghost/billing-cycle", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown card returned %d", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/api/cards/card-1/billing-cycle?at=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad at parameter returned %d", rec.Code)
	}
}

func TestCardCRUD(t *testing.T) {
	s, _ := newTestServer()
	defer s.rateLimiter.stop()

	body := `{"name":"C6","lastDigits":"9001","limit":{"cents":200000},"closingDay":15,"dueDay":22}`
	rec := doRequest(t, s, http.MethodPost, "/api/cards", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var card core.CreditCard
	if err := json.Unmarshal(rec.Body.Bytes(), &card); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if card.AvailableLimit.Cents != 200000 {
		t.Fatalf("availableLimit = %d, want 200000", card.AvailableLimit.Cents)
	}

	if rec := doRequest(t, s, http.MethodDelete, "/api/cards/"+card.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", rec.Code)
	}

	bad := `{"name":"C6","lastDigits":"9001","limit":{"cents":200000},"closingDay":0,"dueDay":22}`
	if rec := doRequest(t, s, http.MethodPost, "/api/cards", bad); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid closing day returned %d", rec.Code)
	}
}

func TestBudgetSpentEndpoint(t *testing.T) {
	s, _ := newTestServer()
	defer s.rateLimiter.stop()

	// bud-4 is Lazer; seed has one Lazer expense of 12000 cents.
	rec := doRequest(t, s, http.MethodGet, "/api/budgets/bud-4/spent", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Category string     `json:"category"`
		Spent    core.Money `json:"spent"`
		Derived  core.Money `json:"derived"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Category != "Lazer" || resp.Derived.Cents != 12000 {
		t.Fatalf("resp = %+v", resp)
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/budgets/ghost/spent", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown budget returned %d", rec.Code)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	s, st := newTestServer()
	defer s.rateLimiter.stop()

	n := st.AddNotification(core.Notification{Title: "Fatura fechando", Message: "Nubank fecha amanhã", Type: "info"})

	rec := doRequest(t, s, http.MethodGet, "/api/notifications?unread=true", "")
	var list []core.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != n.ID {
		t.Fatalf("unread list = %+v", list)
	}

	if rec := doRequest(t, s, http.MethodPost, "/api/notifications/"+n.ID+"/read", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("mark read returned %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/notifications?unread=true", "")
	list = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("read notification still listed as unread")
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	s, _ := newTestServer()
	defer s.rateLimiter.stop()

	var limited bool
	for i := 0; i < 70; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewReader([]byte("{}")))
		req.Header.Set("X-Real-IP", "10.0.0.9")
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("rate limiter never engaged")
	}
}
