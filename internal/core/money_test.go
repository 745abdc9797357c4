package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"137", 13700, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	cases := []struct {
		cents int64
		json  string
	}{
		{13745, "137.45"},
		{100, "1.00"},
		{1, "0.01"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		m := Money{Cents: tc.cents}
		b, err := m.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal %d: %v", tc.cents, err)
		}
		if string(b) != tc.json {
			t.Fatalf("marshal %d = %s, want %s", tc.cents, b, tc.json)
		}
		var back Money
		if err := back.UnmarshalJSON(b); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back.Cents != tc.cents {
			t.Fatalf("round trip %d -> %d", tc.cents, back.Cents)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: -250}).String(); got != "-2.50" {
		t.Errorf("String() = %q, want -2.50", got)
	}
	if got := (Money{Cents: 9}).String(); got != "0.09" {
		t.Errorf("String() = %q, want 0.09", got)
	}
}
