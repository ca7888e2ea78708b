package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

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
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		1250:  "12.50",
		-1999: "-19.99",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	d := decimal.RequireFromString("33.335")
	if got, err := MoneyFromDecimal(d); err != nil || got.Cents != 3334 {
		t.Fatalf("MoneyFromDecimal(33.335) = %d, %v, want 3334", got.Cents, err)
	}

	for _, s := range []string{"184467440737095516.17", "92233720368547758.08", "-92233720368547758.09"} {
		if _, err := MoneyFromDecimal(decimal.RequireFromString(s)); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("MoneyFromDecimal(%s): expected ErrInvalidAmount, got %v", s, err)
		}
	}
	if got, err := MoneyFromDecimal(decimal.RequireFromString("92233720368547758.07")); err != nil || got.Cents != math.MaxInt64 {
		t.Errorf("largest amount = %d, %v", got.Cents, err)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Money{Cents: 1234}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"amount":12.34}` {
		t.Fatalf("unexpected json %s", b)
	}

	for _, in := range []string{`12.34`, `"12.34"`, `12.335`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if m.Cents != 1234 {
			t.Fatalf("unmarshal %s = %d cents", in, m.Cents)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
	for _, in := range []string{`"184467440737095516.17"`, `184467440737095516.17`, `1e30`} {
		m = Money{}
		if err := json.Unmarshal([]byte(in), &m); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("unmarshal %s: expected ErrInvalidAmount, got %v (cents=%d)", in, err, m.Cents)
		}
	}
}
