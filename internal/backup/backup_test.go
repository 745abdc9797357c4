package backup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Arpanmondalz/zen-spend/internal/core"
	"github.com/Arpanmondalz/zen-spend/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "zenspend.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	now := time.Date(2024, time.April, 10, 12, 0, 0, 0, time.UTC)
	return NewService(repo, nil).WithClock(func() time.Time { return now }), repo
}

func seedLedger(t *testing.T, repo *storage.SQLiteRepository) {
	t.Helper()
	ctx := context.Background()

	expense := core.Expense{
		Amount:      core.Money{Cents: 137_45},
		Category:    core.CategoryShopping,
		Description: "headphones",
		IsWant:      true,
		Date:        time.Date(2024, time.April, 9, 18, 30, 0, 0, time.UTC),
		Month:       "2024-04",
	}
	if _, err := repo.AddExpense(ctx, expense, core.ImpulseTax(expense.Amount)); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	parked := core.NewParkedItem(core.Money{Cents: 450_00}, core.CategoryEntertainment, "console",
		time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
	if _, err := repo.AddParkedItem(ctx, parked); err != nil {
		t.Fatalf("AddParkedItem: %v", err)
	}

	if err := repo.SetSetting(ctx, core.SettingBudget, core.Money{Cents: 3000_00}); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
}

func TestExportImportPlaintext(t *testing.T) {
	svc, repo := newTestService(t)
	seedLedger(t, repo)
	ctx := context.Background()

	data, err := svc.Export(ctx, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if data[0] != '{' {
		t.Fatalf("plaintext export must start with '{', got %q", data[0])
	}

	// Restore into a fresh ledger.
	dst, dstRepo := newTestService(t)
	if err := dst.Import(ctx, data, ""); err != nil {
		t.Fatalf("Import: %v", err)
	}

	expenses, parking, settings, err := dstRepo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(expenses) != 1 || len(parking) != 1 || len(settings) == 0 {
		t.Fatalf("restored counts: %d expenses, %d parked, %d settings", len(expenses), len(parking), len(settings))
	}
	if expenses[0].Description != "headphones" || expenses[0].Amount.Cents != 137_45 {
		t.Errorf("restored expense mismatch: %+v", expenses[0])
	}
	if parking[0].Description != "console" {
		t.Errorf("restored parked item mismatch: %+v", parking[0])
	}
}

func TestExportImportEncrypted(t *testing.T) {
	svc, repo := newTestService(t)
	seedLedger(t, repo)
	ctx := context.Background()

	data, err := svc.Export(ctx, "hunter2")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if data[0] == '{' {
		t.Fatal("encrypted export must not look like JSON")
	}

	dst, dstRepo := newTestService(t)
	if err := dst.Import(ctx, data, "hunter2"); err != nil {
		t.Fatalf("Import: %v", err)
	}

	expenses, _, _, err := dstRepo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("restored expense count = %d, want 1", len(expenses))
	}
}

func TestImportWrongPassphraseLeavesStoreIntact(t *testing.T) {
	svc, repo := newTestService(t)
	seedLedger(t, repo)
	ctx := context.Background()

	data, err := svc.Export(ctx, "right")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst, dstRepo := newTestService(t)
	seedLedger(t, dstRepo)

	if err := dst.Import(ctx, data, "wrong"); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("Import with wrong passphrase = %v, want ErrDecryptFailed", err)
	}

	// Existing data survives the failed import.
	expenses, parking, _, err := dstRepo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(expenses) != 1 || len(parking) != 1 {
		t.Errorf("store changed after failed import: %d expenses, %d parked", len(expenses), len(parking))
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"not base64", "!!! definitely not a backup !!!"},
		{"broken json", "{ this is not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Import(ctx, []byte(tt.data), "pass")
			if err == nil {
				t.Fatal("Import should reject garbage input")
			}
			if !errors.Is(err, ErrInvalidFormat) && !errors.Is(err, ErrDecryptFailed) {
				t.Errorf("Import = %v, want ErrInvalidFormat or ErrDecryptFailed", err)
			}
		})
	}
}

func TestImportPreservesIDs(t *testing.T) {
	svc, repo := newTestService(t)
	seedLedger(t, repo)
	ctx := context.Background()

	before, _, _, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	data, err := svc.Export(ctx, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst, dstRepo := newTestService(t)
	if err := dst.Import(ctx, data, ""); err != nil {
		t.Fatalf("Import: %v", err)
	}

	after, _, _, err := dstRepo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if after[0].ID != before[0].ID {
		t.Errorf("expense id = %d, want %d", after[0].ID, before[0].ID)
	}
}
