package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/core"
	"github.com/Arpanmondalz/zen-spend/internal/storage"
)

func newTestLedger(t *testing.T, now time.Time) *LedgerService {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "zenspend.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	svc := NewLedgerService(repo, nil).WithClock(func() time.Time { return now })
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestAddExpenseConfirmationGate(t *testing.T) {
	now := time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestLedger(t, now)
	ctx := context.Background()

	want := core.ExpenseDraft{Amount: core.Money{Cents: 137_00}, Category: core.CategoryShopping, IsWant: true}

	if _, err := svc.AddExpense(ctx, want, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("unconfirmed want: err = %v, want ErrConfirmationRequired", err)
	}

	id, err := svc.AddExpense(ctx, want, true)
	if err != nil {
		t.Fatalf("confirmed want: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a record id")
	}

	// Needs never require confirmation.
	need := core.ExpenseDraft{Amount: core.Money{Cents: 50_00}, Category: core.CategoryBills}
	if _, err := svc.AddExpense(ctx, need, false); err != nil {
		t.Fatalf("unconfirmed need: %v", err)
	}
}

func TestAddExpenseStampsMonthAndTax(t *testing.T) {
	now := time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestLedger(t, now)
	ctx := context.Background()

	draft := core.ExpenseDraft{Amount: core.Money{Cents: 137_00}, Category: core.CategoryShopping, IsWant: true}
	if _, err := svc.AddExpense(ctx, draft, true); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	expenses, err := svc.Expenses(ctx, "2024-04")
	if err != nil {
		t.Fatalf("Expenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expense count = %d, want 1", len(expenses))
	}
	if expenses[0].Month != "2024-04" {
		t.Errorf("month = %s, want 2024-04", expenses[0].Month)
	}

	overview, err := svc.CurrentOverview(ctx)
	if err != nil {
		t.Fatalf("CurrentOverview: %v", err)
	}
	if overview.ImpulseTax.Cents != 63_00 {
		t.Errorf("impulse tax = %d, want 6300", overview.ImpulseTax.Cents)
	}
}

func TestOverviewScenario(t *testing.T) {
	// Budget 3000, one expense of 450 on day 10 of a 30-day month.
	now := time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestLedger(t, now)
	ctx := context.Background()

	if err := svc.SetBudget(ctx, core.Money{Cents: 3000_00}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	draft := core.ExpenseDraft{Amount: core.Money{Cents: 450_00}, Category: core.CategoryFood}
	if _, err := svc.AddExpense(ctx, draft, false); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	overview, err := svc.CurrentOverview(ctx)
	if err != nil {
		t.Fatalf("CurrentOverview: %v", err)
	}
	if overview.Spent.Cents != 450_00 {
		t.Errorf("spent = %d, want 45000", overview.Spent.Cents)
	}
	if overview.SafeToSpend.Cents != 121_00 {
		t.Errorf("safe to spend = %d, want 12100", overview.SafeToSpend.Cents)
	}
	if overview.Runway.Kind != core.RunwayDate {
		t.Errorf("runway kind = %s, want date", overview.Runway.Kind)
	}
}

func TestConvertParkedToExpense(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestLedger(t, now)
	ctx := context.Background()

	parkedID, err := svc.ParkItem(ctx, core.Money{Cents: 450_00}, core.CategoryEntertainment, "console")
	if err != nil {
		t.Fatalf("ParkItem: %v", err)
	}

	expenseID, err := svc.ConvertParkedToExpense(ctx, parkedID)
	if err != nil {
		t.Fatalf("ConvertParkedToExpense: %v", err)
	}
	if expenseID == 0 {
		t.Fatal("expected an expense id")
	}

	parked, err := svc.ParkedItems(ctx)
	if err != nil {
		t.Fatalf("ParkedItems: %v", err)
	}
	if len(parked) != 0 {
		t.Errorf("parking lot count = %d, want 0", len(parked))
	}

	expenses, err := svc.Expenses(ctx, "")
	if err != nil {
		t.Fatalf("Expenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expense count = %d, want 1", len(expenses))
	}
	if !expenses[0].IsWant {
		t.Error("converted expense must be a want")
	}
	if expenses[0].Amount.Cents != 450_00 || expenses[0].Category != core.CategoryEntertainment || expenses[0].Description != "console" {
		t.Errorf("converted expense mismatch: %+v", expenses[0])
	}

	// Missing ids are a silent no-op.
	if id, err := svc.ConvertParkedToExpense(ctx, 9999); err != nil || id != 0 {
		t.Errorf("missing id: got (%d, %v), want (0, nil)", id, err)
	}
}

func TestClearAllResetsEverything(t *testing.T) {
	now := time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestLedger(t, now)
	ctx := context.Background()

	if err := svc.SetBudget(ctx, core.Money{Cents: 3000_00}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	draft := core.ExpenseDraft{Amount: core.Money{Cents: 137_00}, Category: core.CategoryShopping, IsWant: true}
	if _, err := svc.AddExpense(ctx, draft, true); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}

	overview, err := svc.CurrentOverview(ctx)
	if err != nil {
		t.Fatalf("CurrentOverview: %v", err)
	}
	if overview.Budget.Cents != 0 || overview.Spent.Cents != 0 || overview.ImpulseTax.Cents != 0 {
		t.Errorf("overview after clear = %+v, want all zero", overview)
	}
}
