// Package storage persists the ledger in a local SQLite database. Every
// mutating method is a single transaction; failures are returned to the
// caller untouched and never retried here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Setting is a persisted key/value pair from the settings collection.
type Setting struct {
	Key   string     `json:"key"`
	Value core.Money `json:"value"`
}

// SQLiteRepository owns the three ledger collections: expenses, parking
// and settings.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
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

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AddExpense inserts the expense and, when tax is positive, adds it to
// the cumulative impulse-tax setting in the same transaction. The tax
// increment is a single SQL upsert, so concurrent writers cannot lose an
// update.
func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense, tax core.Money) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertExpense(ctx, tx, e)
	if err != nil {
		return 0, err
	}
	if tax.Cents > 0 {
		if err := addToSetting(ctx, tx, core.SettingImpulseTax, tax); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", id,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"is_want", e.IsWant,
		"month", e.Month,
		"tax_cents", tax.Cents)
	return id, nil
}

// DeleteExpense removes the expense. A missing id is a no-op, not an
// error.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// ListExpenses returns every expense, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, amount_cents, category, description, is_want, date, month
		 FROM expenses ORDER BY date DESC, id DESC`)
}

// ExpensesByMonth returns the expenses whose month key matches, newest
// first. Month lookup is the primary query path and is indexed.
func (r *SQLiteRepository) ExpensesByMonth(ctx context.Context, month string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, amount_cents, category, description, is_want, date, month
		 FROM expenses WHERE month = ? ORDER BY date DESC, id DESC`, month)
}

// MonthTotal sums all expense amounts for the month key.
func (r *SQLiteRepository) MonthTotal(ctx context.Context, month string) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE month = ?`, month).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum month total: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// CategoryTotals sums the month's spending per category, largest first.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, month string) ([]core.CategoryAmount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) FROM expenses
		 WHERE month = ? GROUP BY category ORDER BY SUM(amount_cents) DESC`, month)
	if err != nil {
		return nil, fmt.Errorf("sum category totals: %w", err)
	}
	defer rows.Close()

	var totals []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Category, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ca)
	}
	return totals, rows.Err()
}

// AddParkedItem inserts a parked purchase and returns its id.
func (r *SQLiteRepository) AddParkedItem(ctx context.Context, p core.ParkedItem) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO parking (amount_cents, category, description, park_date, expiry_date)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Amount.Cents, p.Category, p.Description,
		p.ParkDate.UTC().Format(time.RFC3339Nano),
		p.ExpiryDate.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert parked item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("parked item id: %w", err)
	}
	return id, nil
}

// GetParkedItem returns the parked item or ErrNotFound.
func (r *SQLiteRepository) GetParkedItem(ctx context.Context, id int64) (core.ParkedItem, error) {
	var (
		p                  core.ParkedItem
		parkDate, expiryAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, amount_cents, category, description, park_date, expiry_date
		 FROM parking WHERE id = ?`, id).
		Scan(&p.ID, &p.Amount.Cents, &p.Category, &p.Description, &parkDate, &expiryAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ParkedItem{}, ErrNotFound
	}
	if err != nil {
		return core.ParkedItem{}, fmt.Errorf("get parked item: %w", err)
	}
	if p.ParkDate, err = time.Parse(time.RFC3339Nano, parkDate); err != nil {
		return core.ParkedItem{}, fmt.Errorf("parse park date: %w", err)
	}
	if p.ExpiryDate, err = time.Parse(time.RFC3339Nano, expiryAt); err != nil {
		return core.ParkedItem{}, fmt.Errorf("parse expiry date: %w", err)
	}
	return p, nil
}

// ListParkedItems returns all parked purchases, oldest expiry first.
func (r *SQLiteRepository) ListParkedItems(ctx context.Context) ([]core.ParkedItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, category, description, park_date, expiry_date
		 FROM parking ORDER BY expiry_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list parked items: %w", err)
	}
	defer rows.Close()

	var items []core.ParkedItem
	for rows.Next() {
		var (
			p                  core.ParkedItem
			parkDate, expiryAt string
		)
		if err := rows.Scan(&p.ID, &p.Amount.Cents, &p.Category, &p.Description, &parkDate, &expiryAt); err != nil {
			return nil, fmt.Errorf("scan parked item: %w", err)
		}
		if p.ParkDate, err = time.Parse(time.RFC3339Nano, parkDate); err != nil {
			return nil, fmt.Errorf("parse park date: %w", err)
		}
		if p.ExpiryDate, err = time.Parse(time.RFC3339Nano, expiryAt); err != nil {
			return nil, fmt.Errorf("parse expiry date: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// DeleteParkedItem removes the item unconditionally; missing ids are a
// no-op.
func (r *SQLiteRepository) DeleteParkedItem(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM parking WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete parked item: %w", err)
	}
	return nil
}

// ConvertParkedItem atomically replaces a parked item with the given
// expense: either both the delete and the insert land, or neither does.
// Returns converted=false when the item vanished before the transaction
// could claim it.
func (r *SQLiteRepository) ConvertParkedItem(ctx context.Context, parkedID int64, e core.Expense, tax core.Money) (int64, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM parking WHERE id = ?`, parkedID)
	if err != nil {
		return 0, false, fmt.Errorf("delete parked item: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	} else if n == 0 {
		return 0, false, nil
	}

	id, err := insertExpense(ctx, tx, e)
	if err != nil {
		return 0, false, err
	}
	if tax.Cents > 0 {
		if err := addToSetting(ctx, tx, core.SettingImpulseTax, tax); err != nil {
			return 0, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit conversion: %w", err)
	}

	slog.InfoContext(ctx, "Parked item converted to expense",
		"parked_id", parkedID,
		"expense_id", id,
		"amount_cents", e.Amount.Cents,
		"tax_cents", tax.Cents)
	return id, true, nil
}

// Setting reads a setting value, defaulting to zero when unset.
func (r *SQLiteRepository) Setting(ctx context.Context, key string) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT value_cents FROM settings WHERE key = ?`, key).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, nil
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("read setting %s: %w", key, err)
	}
	return core.Money{Cents: cents}, nil
}

// SetSetting overwrites a setting value.
func (r *SQLiteRepository) SetSetting(ctx context.Context, key string, value core.Money) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value_cents) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value_cents = excluded.value_cents`,
		key, value.Cents)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// ListSettings returns all persisted settings.
func (r *SQLiteRepository) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value_cents FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value.Cents); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// ClearAll wipes every expense, parked item and setting in one
// transaction.
func (r *SQLiteRepository) ClearAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := wipe(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}

	slog.InfoContext(ctx, "All ledger data cleared")
	return nil
}

// Snapshot reads all three collections for export.
func (r *SQLiteRepository) Snapshot(ctx context.Context) ([]core.Expense, []core.ParkedItem, []Setting, error) {
	expenses, err := r.ListExpenses(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	parking, err := r.ListParkedItems(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	settings, err := r.ListSettings(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return expenses, parking, settings, nil
}

// ReplaceAll swaps the entire store for the given collections in one
// transaction, preserving record ids. Existing data is only dropped if
// every insert succeeds.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, expenses []core.Expense, parking []core.ParkedItem, settings []Setting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := wipe(ctx, tx); err != nil {
		return err
	}

	for _, e := range expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, amount_cents, category, description, is_want, date, month)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Amount.Cents, e.Category, e.Description, boolToInt(e.IsWant),
			e.Date.UTC().Format(time.RFC3339Nano), e.Month)
		if err != nil {
			return fmt.Errorf("restore expense %d: %w", e.ID, err)
		}
	}
	for _, p := range parking {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO parking (id, amount_cents, category, description, park_date, expiry_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Amount.Cents, p.Category, p.Description,
			p.ParkDate.UTC().Format(time.RFC3339Nano),
			p.ExpiryDate.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("restore parked item %d: %w", p.ID, err)
		}
	}
	for _, s := range settings {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value_cents) VALUES (?, ?)`, s.Key, s.Value.Cents)
		if err != nil {
			return fmt.Errorf("restore setting %s: %w", s.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}

	slog.InfoContext(ctx, "Store replaced from backup",
		"expenses", len(expenses),
		"parking", len(parking),
		"settings", len(settings))
	return nil
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e      core.Expense
			isWant int64
			date   string
		)
		if err := rows.Scan(&e.ID, &e.Amount.Cents, &e.Category, &e.Description, &isWant, &date, &e.Month); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.IsWant = isWant != 0
		if e.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("parse expense date: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func insertExpense(ctx context.Context, q execer, e core.Expense) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO expenses (amount_cents, category, description, is_want, date, month)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Amount.Cents, e.Category, e.Description, boolToInt(e.IsWant),
		e.Date.UTC().Format(time.RFC3339Nano), e.Month)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("expense id: %w", err)
	}
	return id, nil
}

// addToSetting increments a setting atomically inside the caller's
// transaction.
func addToSetting(ctx context.Context, q execer, key string, delta core.Money) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO settings (key, value_cents) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value_cents = value_cents + excluded.value_cents`,
		key, delta.Cents)
	if err != nil {
		return fmt.Errorf("increment setting %s: %w", key, err)
	}
	return nil
}

func wipe(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"expenses", "parking", "settings"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
