package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"grana/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the financial collections. Card balances are
// derived at load time, so credit_cards carries no balance columns.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Snapshot is everything needed to hydrate an in-memory store.
type Snapshot struct {
	Transactions  []core.Transaction
	IncomeSources []core.IncomeSource
	Cards         []core.CreditCard
	Budgets       []core.BudgetCategory
	Goals         []core.SavingsGoal
	Notifications []core.Notification
}

func (r *SQLiteRepository) LoadAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Transactions, err = r.loadTransactions(ctx); err != nil {
		return snap, err
	}
	if snap.IncomeSources, err = r.loadIncomeSources(ctx); err != nil {
		return snap, err
	}
	if snap.Cards, err = r.loadCards(ctx); err != nil {
		return snap, err
	}
	if snap.Budgets, err = r.loadBudgets(ctx); err != nil {
		return snap, err
	}
	if snap.Goals, err = r.loadGoals(ctx); err != nil {
		return snap, err
	}
	if snap.Notifications, err = r.loadNotifications(ctx); err != nil {
		return snap, err
	}

	slog.InfoContext(ctx, "Loaded snapshot from SQLite",
		"transactions", len(snap.Transactions),
		"income_sources", len(snap.IncomeSources),
		"cards", len(snap.Cards))

	return snap, nil
}

func (r *SQLiteRepository) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	var (
		frequency, expenseType, paymentStatus sql.NullString
		paymentMethod, cardID, dueDate        sql.NullString
	)
	if t.Frequency != "" {
		frequency = nullStr(string(t.Frequency))
	}
	if t.Expense != nil {
		expenseType = nullStr(string(t.Expense.ExpenseType))
		paymentStatus = nullStr(string(t.Expense.PaymentStatus))
		paymentMethod = nullStr(string(t.Expense.PaymentMethod))
		cardID = nullStr(t.Expense.CreditCardID)
		if !t.Expense.DueDate.IsZero() {
			dueDate = nullStr(formatDate(t.Expense.DueDate))
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, amount_cents, category, description, date, kind, recurrent,
			 frequency, expense_type, payment_status, payment_method, credit_card_id, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			category = excluded.category,
			description = excluded.description,
			date = excluded.date,
			kind = excluded.kind,
			recurrent = excluded.recurrent,
			frequency = excluded.frequency,
			expense_type = excluded.expense_type,
			payment_status = excluded.payment_status,
			payment_method = excluded.payment_method,
			credit_card_id = excluded.credit_card_id,
			due_date = excluded.due_date`,
		t.ID, t.Amount.Cents, t.Category, t.Description, formatDate(t.Date),
		string(t.Kind), boolInt(t.Recurrent),
		frequency, expenseType, paymentStatus, paymentMethod, cardID, dueDate)
	if err != nil {
		return fmt.Errorf("upsert transaction %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertIncome(ctx context.Context, s core.IncomeSource) error {
	var frequency sql.NullString
	if s.Frequency != "" {
		frequency = nullStr(string(s.Frequency))
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO income_sources (id, name, amount_cents, date, recurrent, frequency)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount_cents = excluded.amount_cents,
			date = excluded.date,
			recurrent = excluded.recurrent,
			frequency = excluded.frequency`,
		s.ID, s.Name, s.Amount.Cents, formatDate(s.Date), boolInt(s.Recurrent), frequency)
	if err != nil {
		return fmt.Errorf("upsert income source %s: %w", s.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM income_sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete income source %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertCard(ctx context.Context, c core.CreditCard) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_cards (id, name, last_digits, limit_cents, closing_day, due_day, color, brand)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			last_digits = excluded.last_digits,
			limit_cents = excluded.limit_cents,
			closing_day = excluded.closing_day,
			due_day = excluded.due_day,
			color = excluded.color,
			brand = excluded.brand`,
		c.ID, c.Name, c.LastDigits, c.Limit.Cents, c.ClosingDay, c.DueDay, c.Color, c.Brand)
	if err != nil {
		return fmt.Errorf("upsert credit card %s: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete credit card %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.BudgetCategory) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_categories (id, name, allocated_cents, spent_cents, is_fixed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			allocated_cents = excluded.allocated_cents,
			spent_cents = excluded.spent_cents,
			is_fixed = excluded.is_fixed`,
		b.ID, b.Name, b.Allocated.Cents, b.Spent.Cents, boolInt(b.IsFixed))
	if err != nil {
		return fmt.Errorf("upsert budget category %s: %w", b.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budget_categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete budget category %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertGoal(ctx context.Context, g core.SavingsGoal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_goals (id, name, target_cents, current_cents, deadline)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			target_cents = excluded.target_cents,
			current_cents = excluded.current_cents,
			deadline = excluded.deadline`,
		g.ID, g.Name, g.Target.Cents, g.Current.Cents, formatDate(g.Deadline))
	if err != nil {
		return fmt.Errorf("upsert savings goal %s: %w", g.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete savings goal %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertNotification(ctx context.Context, n core.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, title, message, date, read, type)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			message = excluded.message,
			date = excluded.date,
			read = excluded.read,
			type = excluded.type`,
		n.ID, n.Title, n.Message, formatDate(n.Date), boolInt(n.Read), n.Type)
	if err != nil {
		return fmt.Errorf("upsert notification %s: %w", n.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteNotification(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete notification %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, category, description, date, kind, recurrent,
		       frequency, expense_type, payment_status, payment_method, credit_card_id, due_date
		FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t                                     core.Transaction
			dateStr                               string
			recurrent                             int
			frequency, expenseType, paymentStatus sql.NullString
			paymentMethod, cardID, dueDate        sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Amount.Cents, &t.Category, &t.Description,
			&dateStr, &t.Kind, &recurrent,
			&frequency, &expenseType, &paymentStatus, &paymentMethod, &cardID, &dueDate); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = parseDate(dateStr); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.Recurrent = recurrent != 0
		t.Frequency = core.Frequency(frequency.String)
		if t.Kind == core.KindExpense {
			t.Expense = &core.ExpenseDetails{
				ExpenseType:   core.ExpenseType(expenseType.String),
				PaymentStatus: core.PaymentStatus(paymentStatus.String),
				PaymentMethod: core.PaymentMethod(paymentMethod.String),
				CreditCardID:  cardID.String,
			}
			if dueDate.Valid {
				if t.Expense.DueDate, err = parseDate(dueDate.String); err != nil {
					return nil, fmt.Errorf("transaction %s due date: %w", t.ID, err)
				}
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadIncomeSources(ctx context.Context) ([]core.IncomeSource, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, amount_cents, date, recurrent, frequency
		FROM income_sources ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query income sources: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeSource
	for rows.Next() {
		var (
			s         core.IncomeSource
			dateStr   string
			recurrent int
			frequency sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Amount.Cents, &dateStr, &recurrent, &frequency); err != nil {
			return nil, fmt.Errorf("scan income source: %w", err)
		}
		if s.Date, err = parseDate(dateStr); err != nil {
			return nil, fmt.Errorf("income source %s: %w", s.ID, err)
		}
		s.Recurrent = recurrent != 0
		s.Frequency = core.Frequency(frequency.String)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, last_digits, limit_cents, closing_day, due_day, color, brand
		FROM credit_cards ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query credit cards: %w", err)
	}
	defer rows.Close()

	var out []core.CreditCard
	for rows.Next() {
		var (
			c            core.CreditCard
			color, brand sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.LastDigits, &c.Limit.Cents,
			&c.ClosingDay, &c.DueDay, &color, &brand); err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		c.Color = color.String
		c.Brand = brand.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadBudgets(ctx context.Context) ([]core.BudgetCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, allocated_cents, spent_cents, is_fixed
		FROM budget_categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query budget categories: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetCategory
	for rows.Next() {
		var (
			b       core.BudgetCategory
			isFixed int
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Allocated.Cents, &b.Spent.Cents, &isFixed); err != nil {
			return nil, fmt.Errorf("scan budget category: %w", err)
		}
		b.IsFixed = isFixed != 0
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_cents, current_cents, deadline
		FROM savings_goals ORDER BY deadline, id`)
	if err != nil {
		return nil, fmt.Errorf("query savings goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		var (
			g           core.SavingsGoal
			deadlineStr string
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents, &deadlineStr); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		if g.Deadline, err = parseDate(deadlineStr); err != nil {
			return nil, fmt.Errorf("savings goal %s: %w", g.ID, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadNotifications(ctx context.Context) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, message, date, read, type
		FROM notifications ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []core.Notification
	for rows.Next() {
		var (
			n       core.Notification
			dateStr string
			read    int
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &dateStr, &read, &n.Type); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if n.Date, err = parseDate(dateStr); err != nil {
			return nil, fmt.Errorf("notification %s: %w", n.ID, err)
		}
		n.Read = read != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
