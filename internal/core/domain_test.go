package core

import (
	"errors"
	"testing"
	"time"
)

func TestExpenseDraftValidate(t *testing.T) {
	cases := []struct {
		name  string
		draft ExpenseDraft
		want  error
	}{
		{"valid need", ExpenseDraft{Amount: Money{Cents: 1250}, Category: CategoryFood}, nil},
		{"valid want", ExpenseDraft{Amount: Money{Cents: 99}, Category: CategoryShopping, IsWant: true}, nil},
		{"zero amount", ExpenseDraft{Amount: Money{}, Category: CategoryFood}, ErrInvalidAmount},
		{"negative amount", ExpenseDraft{Amount: Money{Cents: -5}, Category: CategoryFood}, ErrInvalidAmount},
		{"unknown category", ExpenseDraft{Amount: Money{Cents: 100}, Category: "Gadgets"}, ErrInvalidCategory},
		{"empty category", ExpenseDraft{Amount: Money{Cents: 100}}, ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey(date(2024, time.January, 31)); got != "2024-01" {
		t.Errorf("MonthKey = %q, want 2024-01", got)
	}
	if got := MonthKey(date(2024, time.December, 1)); got != "2024-12" {
		t.Errorf("MonthKey = %q, want 2024-12", got)
	}
}

func TestParkedItemExpiry(t *testing.T) {
	parked := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	item := NewParkedItem(Money{Cents: 500_00}, CategoryShopping, "headphones", parked)

	want := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	if !item.ExpiryDate.Equal(want) {
		t.Errorf("ExpiryDate = %v, want %v", item.ExpiryDate, want)
	}

	if got := item.DaysLeft(time.Date(2024, time.January, 29, 0, 0, 0, 0, time.UTC)); got != 2 {
		t.Errorf("DaysLeft on Jan 29 = %d, want 2", got)
	}
	if got := item.DaysLeft(want.Add(time.Hour)); got != 0 {
		t.Errorf("DaysLeft past expiry = %d, want 0", got)
	}
	if item.Expired(want.Add(-time.Minute)) {
		t.Error("item must not be expired before the expiry instant")
	}
	if !item.Expired(want) {
		t.Error("item must be expired at the expiry instant")
	}
}
