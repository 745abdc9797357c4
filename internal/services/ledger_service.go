// Package services orchestrates ledger operations across the SQLite
// store and the optional event publisher.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/amqp"
	"github.com/Arpanmondalz/zen-spend/internal/core"
	"github.com/Arpanmondalz/zen-spend/internal/storage"
)

// ErrConfirmationRequired is returned when a want is submitted without
// the explicit confirmation token.
var ErrConfirmationRequired = errors.New("confirmation required for want purchases")

// Overview bundles the derived budget metrics for the current month.
type Overview struct {
	Month       string                `json:"month"`
	Budget      core.Money            `json:"budget"`
	Spent       core.Money            `json:"spent"`
	SafeToSpend core.Money            `json:"safeToSpend"`
	Runway      core.RunwayProjection `json:"runway"`
	ImpulseTax  core.Money            `json:"impulseTax"`
	ByCategory  []core.CategoryAmount `json:"byCategory"`
}

// LedgerService owns all ledger mutations and derived metrics. Storage
// is the single source of truth; there is no ambient in-memory state, so
// a crashed session never diverges from disk.
type LedgerService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
	now     func() time.Time
}

func NewLedgerService(storage *storage.SQLiteRepository, events *amqp.Client) *LedgerService {
	return &LedgerService{
		storage: storage,
		events:  events,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Tests use this to pin metric
// calculations to a known day.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// AddExpense records an expense stamped with the current time and month
// key. Wants must arrive confirmed, and their impulse tax lands in the
// cumulative setting within the same transaction as the insert.
func (s *LedgerService) AddExpense(ctx context.Context, draft core.ExpenseDraft, confirmed bool) (int64, error) {
	draft.Description = strings.TrimSpace(draft.Description)
	if err := draft.Validate(); err != nil {
		return 0, err
	}
	if core.RequiresConfirmation(draft) && !confirmed {
		return 0, ErrConfirmationRequired
	}

	now := s.now()
	expense := core.Expense{
		Amount:      draft.Amount,
		Category:    draft.Category,
		Description: draft.Description,
		IsWant:      draft.IsWant,
		Date:        now,
		Month:       core.MonthKey(now),
	}

	var tax core.Money
	if draft.IsWant {
		tax = core.ImpulseTax(draft.Amount)
	}

	id, err := s.storage.AddExpense(ctx, expense, tax)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	s.publish(ctx, amqp.EventExpenseCreated, id, draft.Amount.Cents)
	return id, nil
}

// DeleteExpense removes an expense; a missing id is a no-op.
func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, amqp.EventExpenseDeleted, id, 0)
	return nil
}

// ParkItem defers a purchase decision for 30 days.
func (s *LedgerService) ParkItem(ctx context.Context, amount core.Money, category core.Category, description string) (int64, error) {
	if err := amount.Validate(); err != nil {
		return 0, err
	}
	if !category.Valid() {
		return 0, core.ErrInvalidCategory
	}

	item := core.NewParkedItem(amount, category, description, s.now())
	id, err := s.storage.AddParkedItem(ctx, item)
	if err != nil {
		return 0, fmt.Errorf("park item: %w", err)
	}

	s.publish(ctx, amqp.EventItemParked, id, amount.Cents)
	return id, nil
}

// ConvertParkedToExpense turns a parked item into a want-expense. Month
// and impulse tax are computed at conversion time, not at park time. A
// missing id is a no-op and returns 0.
func (s *LedgerService) ConvertParkedToExpense(ctx context.Context, id int64) (int64, error) {
	item, err := s.storage.GetParkedItem(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load parked item: %w", err)
	}

	now := s.now()
	expense := core.Expense{
		Amount:      item.Amount,
		Category:    item.Category,
		Description: item.Description,
		IsWant:      true,
		Date:        now,
		Month:       core.MonthKey(now),
	}

	expenseID, converted, err := s.storage.ConvertParkedItem(ctx, id, expense, core.ImpulseTax(item.Amount))
	if err != nil {
		return 0, fmt.Errorf("convert parked item: %w", err)
	}
	if !converted {
		return 0, nil
	}

	s.publish(ctx, amqp.EventItemConverted, expenseID, item.Amount.Cents)
	return expenseID, nil
}

// DeleteParkedItem removes the item unconditionally.
func (s *LedgerService) DeleteParkedItem(ctx context.Context, id int64) error {
	if err := s.storage.DeleteParkedItem(ctx, id); err != nil {
		return fmt.Errorf("delete parked item: %w", err)
	}
	s.publish(ctx, amqp.EventItemUnparked, id, 0)
	return nil
}

// SetBudget overwrites the monthly budget ceiling.
func (s *LedgerService) SetBudget(ctx context.Context, amount core.Money) error {
	if amount.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := s.storage.SetSetting(ctx, core.SettingBudget, amount); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	s.publish(ctx, amqp.EventBudgetChanged, 0, amount.Cents)
	return nil
}

// ClearAll wipes the whole ledger.
func (s *LedgerService) ClearAll(ctx context.Context) error {
	if err := s.storage.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	s.publish(ctx, amqp.EventLedgerCleared, 0, 0)
	return nil
}

// Budget returns the configured monthly budget, zero when unset.
func (s *LedgerService) Budget(ctx context.Context) (core.Money, error) {
	return s.storage.Setting(ctx, core.SettingBudget)
}

// Expenses lists expenses, restricted to a month key when given.
func (s *LedgerService) Expenses(ctx context.Context, month string) ([]core.Expense, error) {
	if month == "" {
		return s.storage.ListExpenses(ctx)
	}
	return s.storage.ExpensesByMonth(ctx, month)
}

// ParkedItems lists everything in the parking lot.
func (s *LedgerService) ParkedItems(ctx context.Context) ([]core.ParkedItem, error) {
	return s.storage.ListParkedItems(ctx)
}

// MonthlySpending sums the given month, defaulting to the current one.
func (s *LedgerService) MonthlySpending(ctx context.Context, month string) (core.Money, error) {
	if month == "" {
		month = core.MonthKey(s.now())
	}
	return s.storage.MonthTotal(ctx, month)
}

// CurrentOverview derives all budget metrics for the current month.
func (s *LedgerService) CurrentOverview(ctx context.Context) (Overview, error) {
	now := s.now()
	month := core.MonthKey(now)

	budget, err := s.storage.Setting(ctx, core.SettingBudget)
	if err != nil {
		return Overview{}, fmt.Errorf("read budget: %w", err)
	}
	spent, err := s.storage.MonthTotal(ctx, month)
	if err != nil {
		return Overview{}, fmt.Errorf("sum month: %w", err)
	}
	tax, err := s.storage.Setting(ctx, core.SettingImpulseTax)
	if err != nil {
		return Overview{}, fmt.Errorf("read impulse tax: %w", err)
	}
	byCategory, err := s.storage.CategoryTotals(ctx, month)
	if err != nil {
		return Overview{}, fmt.Errorf("category totals: %w", err)
	}

	return Overview{
		Month:       month,
		Budget:      budget,
		Spent:       spent,
		SafeToSpend: core.SafeToSpend(budget, spent, now),
		Runway:      core.Runway(budget, spent, now),
		ImpulseTax:  tax,
		ByCategory:  byCategory,
	}, nil
}

// publish sends a ledger event when a broker is configured. Failures are
// logged and swallowed: the ledger mutation already succeeded.
func (s *LedgerService) publish(ctx context.Context, event string, recordID, amountCents int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, event, recordID, amountCents); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"event", event,
			"record_id", recordID,
			"error", err)
	}
}

// Close releases the storage and broker connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
