package core

import (
	"math"
	"time"
)

// roundStepCents is the "round number" granularity the impulse tax rounds
// up to: 100 whole currency units.
const roundStepCents int64 = 100 * 100

// ReflectionThreshold is the purchase size above which Shopping and
// Entertainment buys should go through a cost-per-use reflection, and
// above which a recorded want triggers the guilt alert.
var ReflectionThreshold = Money{Cents: 2000 * 100}

// RunwayKind classifies the runway projection.
type RunwayKind string

const (
	// RunwayInfinite means nothing has been spent yet this month.
	RunwayInfinite RunwayKind = "infinite"
	// RunwayOverrun means the budget is already exhausted.
	RunwayOverrun RunwayKind = "overrun"
	// RunwayDate means the budget runs out on a projected date.
	RunwayDate RunwayKind = "date"
)

// RunwayProjection is the outcome of projecting current spending forward.
// Date is only meaningful when Kind is RunwayDate.
type RunwayProjection struct {
	Kind RunwayKind `json:"kind"`
	Date time.Time  `json:"date"`
}

// ImpulseTax is the self-imposed penalty for a non-round want: the gap
// between the amount and the next multiple of 100 currency units above it.
// Exact multiples (and zero) are tax free.
func ImpulseTax(amount Money) Money {
	rem := amount.Cents % roundStepCents
	if rem == 0 {
		return Money{}
	}
	return Money{Cents: roundStepCents - rem}
}

// SafeToSpend divides the remaining budget evenly over the days left in
// the month, floored to whole currency units and never negative. A zero
// or unset budget yields zero.
func SafeToSpend(budget, spent Money, today time.Time) Money {
	if budget.Cents <= 0 {
		return Money{}
	}
	remaining := budget.Cents - spent.Cents
	daysLeft := daysInMonth(today) - today.Day() + 1
	if daysLeft < 1 {
		daysLeft = 1
	}
	units := math.Floor(float64(remaining) / 100.0 / float64(daysLeft))
	if units < 0 {
		return Money{}
	}
	return Money{Cents: int64(units) * 100}
}

// Runway projects the date the budget hits zero if spending continues at
// the month's average daily rate. The spent check comes first, so the
// average can never divide by zero.
func Runway(budget, spent Money, today time.Time) RunwayProjection {
	if spent.Cents <= 0 {
		return RunwayProjection{Kind: RunwayInfinite}
	}
	remaining := budget.Cents - spent.Cents
	if remaining <= 0 {
		return RunwayProjection{Kind: RunwayOverrun}
	}
	day := today.Day()
	if day < 1 {
		day = 1
	}
	avgDaily := float64(spent.Cents) / float64(day)
	daysUntilZero := int(math.Floor(float64(remaining) / avgDaily))
	return RunwayProjection{
		Kind: RunwayDate,
		Date: today.AddDate(0, 0, daysUntilZero),
	}
}

// CostPerUse spreads a purchase over its expected number of uses, rounded
// to the nearest cent. Uses below 1 are clamped to 1.
func CostPerUse(amount Money, uses int) Money {
	if uses < 1 {
		uses = 1
	}
	return Money{Cents: int64(math.Round(float64(amount.Cents) / float64(uses)))}
}

// RequiresConfirmation reports whether recording the draft needs an
// explicit confirmation from the user. Wants always do.
func RequiresConfirmation(d ExpenseDraft) bool {
	return d.IsWant
}

// RequiresReflection reports whether the draft should go through a
// cost-per-use reflection step before being committed.
func RequiresReflection(d ExpenseDraft) bool {
	if d.Category != CategoryShopping && d.Category != CategoryEntertainment {
		return false
	}
	return d.Amount.Cents > ReflectionThreshold.Cents
}

// TriggersGuiltAlert reports whether recording the draft should raise the
// negative-feedback signal afterwards.
func TriggersGuiltAlert(d ExpenseDraft) bool {
	return d.IsWant && d.Amount.Cents > ReflectionThreshold.Cents
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
