package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestImpulseTax(t *testing.T) {
	cases := []struct {
		cents int64
		want  int64
	}{
		{0, 0},
		{100_00, 0},     // exact hundred
		{300_00, 0},     // exact multiple
		{137_00, 63_00}, // 137 -> 200 gap
		{1_00, 99_00},
		{199_99, 1},
		{137_45, 62_55},
		{250_00, 50_00},
	}
	for _, tc := range cases {
		got := ImpulseTax(Money{Cents: tc.cents})
		if got.Cents != tc.want {
			t.Errorf("ImpulseTax(%d) = %d, want %d", tc.cents, got.Cents, tc.want)
		}
	}
}

func TestImpulseTaxRange(t *testing.T) {
	// Tax is zero exactly on multiples of 100 units, otherwise strictly
	// between 0 and 100 units.
	for cents := int64(0); cents <= 300_00; cents += 1_37 {
		tax := ImpulseTax(Money{Cents: cents})
		if cents%(100*100) == 0 {
			if tax.Cents != 0 {
				t.Fatalf("ImpulseTax(%d) = %d, want 0 on round amount", cents, tax.Cents)
			}
			continue
		}
		if tax.Cents <= 0 || tax.Cents >= 100*100 {
			t.Fatalf("ImpulseTax(%d) = %d, want in (0, 10000)", cents, tax.Cents)
		}
	}
}

func TestSafeToSpend(t *testing.T) {
	t.Run("no budget yields zero", func(t *testing.T) {
		got := SafeToSpend(Money{}, Money{Cents: 50_00}, date(2024, time.April, 10))
		if got.Cents != 0 {
			t.Errorf("SafeToSpend with zero budget = %d, want 0", got.Cents)
		}
	})

	t.Run("budget 3000, spent 450 on day 10 of a 30-day month", func(t *testing.T) {
		// daysLeft = 30 - 10 + 1 = 21, floor(2550/21) = 121
		got := SafeToSpend(Money{Cents: 3000_00}, Money{Cents: 450_00}, date(2024, time.April, 10))
		if got.Cents != 121_00 {
			t.Errorf("SafeToSpend = %d, want 12100", got.Cents)
		}
	})

	t.Run("overspent month clamps to zero", func(t *testing.T) {
		got := SafeToSpend(Money{Cents: 100_00}, Money{Cents: 500_00}, date(2024, time.April, 10))
		if got.Cents != 0 {
			t.Errorf("SafeToSpend when overspent = %d, want 0", got.Cents)
		}
	})

	t.Run("last day of month divides by one", func(t *testing.T) {
		got := SafeToSpend(Money{Cents: 310_00}, Money{Cents: 0}, date(2024, time.January, 31))
		if got.Cents != 310_00 {
			t.Errorf("SafeToSpend on last day = %d, want 31000", got.Cents)
		}
	})

	t.Run("monotonic in spend and budget", func(t *testing.T) {
		today := date(2024, time.April, 10)
		prev := int64(1 << 62)
		for spent := int64(0); spent <= 3500_00; spent += 137_00 {
			got := SafeToSpend(Money{Cents: 3000_00}, Money{Cents: spent}, today).Cents
			if got < 0 {
				t.Fatalf("SafeToSpend went negative at spent=%d", spent)
			}
			if got > prev {
				t.Fatalf("SafeToSpend increased with spend: %d -> %d at spent=%d", prev, got, spent)
			}
			prev = got
		}
		prevB := int64(-1)
		for budget := int64(0); budget <= 5000_00; budget += 250_00 {
			got := SafeToSpend(Money{Cents: budget}, Money{Cents: 450_00}, today).Cents
			if got < prevB {
				t.Fatalf("SafeToSpend decreased with budget: %d -> %d at budget=%d", prevB, got, budget)
			}
			prevB = got
		}
	})
}

func TestRunway(t *testing.T) {
	today := date(2024, time.April, 10)

	t.Run("nothing spent is infinite", func(t *testing.T) {
		got := Runway(Money{Cents: 3000_00}, Money{}, today)
		if got.Kind != RunwayInfinite {
			t.Errorf("Runway kind = %s, want infinite", got.Kind)
		}
	})

	t.Run("budget exhausted is overrun", func(t *testing.T) {
		got := Runway(Money{Cents: 1000_00}, Money{Cents: 1200_00}, today)
		if got.Kind != RunwayOverrun {
			t.Errorf("Runway kind = %s, want overrun", got.Kind)
		}
	})

	t.Run("projects zero-balance date from average daily spend", func(t *testing.T) {
		// avgDaily = 450/10 = 45/day, remaining 2550 -> floor(56.67) = 56 days
		got := Runway(Money{Cents: 3000_00}, Money{Cents: 450_00}, today)
		if got.Kind != RunwayDate {
			t.Fatalf("Runway kind = %s, want date", got.Kind)
		}
		want := today.AddDate(0, 0, 56)
		if !got.Date.Equal(want) {
			t.Errorf("Runway date = %v, want %v", got.Date, want)
		}
	})
}

func TestCostPerUse(t *testing.T) {
	cases := []struct {
		cents int64
		uses  int
		want  int64
	}{
		{3000_00, 10, 300_00},
		{100_00, 3, 33_33},
		{50_00, 0, 50_00},  // clamped to one use
		{50_00, -4, 50_00}, // clamped to one use
		{99_99, 2, 50_00},  // rounds half up
	}
	for _, tc := range cases {
		got := CostPerUse(Money{Cents: tc.cents}, tc.uses)
		if got.Cents != tc.want {
			t.Errorf("CostPerUse(%d, %d) = %d, want %d", tc.cents, tc.uses, got.Cents, tc.want)
		}
	}
}

func TestTriggerPredicates(t *testing.T) {
	big := Money{Cents: 2500_00}
	small := Money{Cents: 150_00}

	if !RequiresConfirmation(ExpenseDraft{Amount: small, Category: CategoryFood, IsWant: true}) {
		t.Error("wants must require confirmation")
	}
	if RequiresConfirmation(ExpenseDraft{Amount: big, Category: CategoryBills}) {
		t.Error("needs must not require confirmation")
	}

	if !RequiresReflection(ExpenseDraft{Amount: big, Category: CategoryShopping}) {
		t.Error("large Shopping purchase must require reflection")
	}
	if !RequiresReflection(ExpenseDraft{Amount: big, Category: CategoryEntertainment}) {
		t.Error("large Entertainment purchase must require reflection")
	}
	if RequiresReflection(ExpenseDraft{Amount: big, Category: CategoryBills}) {
		t.Error("large Bills purchase must not require reflection")
	}
	if RequiresReflection(ExpenseDraft{Amount: small, Category: CategoryShopping}) {
		t.Error("small Shopping purchase must not require reflection")
	}
	if RequiresReflection(ExpenseDraft{Amount: ReflectionThreshold, Category: CategoryShopping}) {
		t.Error("threshold itself must not require reflection")
	}

	if !TriggersGuiltAlert(ExpenseDraft{Amount: big, Category: CategoryOther, IsWant: true}) {
		t.Error("large want must trigger the guilt alert")
	}
	if TriggersGuiltAlert(ExpenseDraft{Amount: big, Category: CategoryOther}) {
		t.Error("large need must not trigger the guilt alert")
	}
}
