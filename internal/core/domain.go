package core

import (
	"errors"
	"strings"
	"time"
)

// Fixed category set. Shopping and Entertainment additionally drive the
// cost-per-use reflection gate for large purchases.
const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryBills         Category = "Bills"
	CategoryHealth        Category = "Health"
	CategoryOther         Category = "Other"
)

// ParkDuration is how long a parked purchase stays in the parking lot
// before its cooling-off period runs out.
const ParkDuration = 30 * 24 * time.Hour

// Setting keys known to the ledger.
const (
	SettingBudget     = "budget"
	SettingImpulseTax = "impulseTax"
)

type (
	Category string

	Money struct {
		Cents int64
	}

	// Expense is an immutable ledger record. Month is derived from Date at
	// creation time and never recomputed afterwards.
	Expense struct {
		ID          int64     `json:"id"`
		Amount      Money     `json:"amount"`
		Category    Category  `json:"category"`
		Description string    `json:"description"`
		IsWant      bool      `json:"isWant"`
		Date        time.Time `json:"date"`
		Month       string    `json:"month"`
	}

	// ParkedItem is a purchase deferred for a 30-day cooling-off period.
	ParkedItem struct {
		ID          int64     `json:"id"`
		Amount      Money     `json:"amount"`
		Category    Category  `json:"category"`
		Description string    `json:"description"`
		ParkDate    time.Time `json:"parkDate"`
		ExpiryDate  time.Time `json:"expiryDate"`
	}

	// ExpenseDraft is a not-yet-recorded expense as submitted by the caller.
	ExpenseDraft struct {
		Amount      Money
		Category    Category
		Description string
		IsWant      bool
	}
)

var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealth,
	CategoryOther,
}

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// MonthKey derives the "YYYY-MM" aggregation key for a point in time.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (d ExpenseDraft) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if !d.Category.Valid() {
		return ErrInvalidCategory
	}
	if len(d.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

// NewParkedItem builds a parked item whose expiry is exactly 30 days after
// the park date.
func NewParkedItem(amount Money, category Category, description string, parkDate time.Time) ParkedItem {
	return ParkedItem{
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(description),
		ParkDate:    parkDate,
		ExpiryDate:  parkDate.Add(ParkDuration),
	}
}

// DaysLeft returns the whole days remaining until the cooling-off period
// expires, never negative.
func (p ParkedItem) DaysLeft(now time.Time) int {
	left := p.ExpiryDate.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / (24 * time.Hour))
}

// Expired reports whether the cooling-off period has run out.
func (p ParkedItem) Expired(now time.Time) bool {
	return !now.Before(p.ExpiryDate)
}

// CategoryAmount is an amount aggregated by category name.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}
