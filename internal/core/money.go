// Package core holds the ledger's domain types and the pure budget
// calculations. Nothing in here touches storage or the network.
package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal amount string to cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted; a third
// decimal digit is rounded half-up. Only positive amounts are valid.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || units > (1<<63-1)/100 {
		return 0, ErrInvalidAmount
	}

	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
	}
	if len(fracPart) > 1 {
		frac += int64(fracPart[1] - '0')
	}
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		frac++ // half-up on the third decimal
	}

	cents := units*100 + frac
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Units returns the amount in whole currency units as a float64. Display
// only; calculations stay in cents.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as a plain decimal with two fraction digits.
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + twoDigits(cents%100)
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// MarshalJSON encodes the amount as a decimal number so backup files and
// API payloads carry currency values, not internal cents.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a decimal number or a quoted decimal string.
// Zero is allowed here: stored records may legitimately hold 0 (the
// impulse-tax setting starts there).
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "0" || s == "0.0" || s == "0.00" {
		m.Cents = 0
		return nil
	}
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

var _ json.Marshaler = Money{}
var _ json.Unmarshaler = (*Money)(nil)
