package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidatePIN(t *testing.T) {
	cases := []struct {
		pin, confirm string
		want         error
	}{
		{"1234", "1234", nil},
		{"0123456789", "0123456789", nil},
		{"123", "123", ErrInvalidPIN},
		{"12345678901", "12345678901", ErrInvalidPIN},
		{"12a4", "12a4", ErrInvalidPIN},
		{"1234", "1235", ErrPINMismatch},
	}
	for _, tc := range cases {
		if err := ValidatePIN(tc.pin, tc.confirm); !errors.Is(err, tc.want) {
			t.Fatalf("ValidatePIN(%q, %q) = %v, want %v", tc.pin, tc.confirm, err, tc.want)
		}
	}
}

func TestNormalizeCurrency(t *testing.T) {
	if c, err := NormalizeCurrency(" usd "); err != nil || c != "USD" {
		t.Fatalf("NormalizeCurrency(usd) = %q, %v", c, err)
	}
	if _, err := NormalizeCurrency("JPY"); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

func TestPeriodLabels(t *testing.T) {
	ts := time.Date(2024, 8, 17, 13, 0, 0, 0, time.UTC)
	tests := []struct {
		period Period
		start  time.Time
		label  string
	}{
		{PeriodDaily, time.Date(2024, 8, 17, 0, 0, 0, 0, time.UTC), "17 Aug 2024"},
		{PeriodMonthly, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), "Aug 2024"},
		{PeriodSemester, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), "Jul-Dec 2024"},
	}
	for _, tt := range tests {
		start := tt.period.BucketStart(ts)
		if !start.Equal(tt.start) {
			t.Errorf("%s BucketStart = %s, want %s", tt.period, start, tt.start)
		}
		if got := tt.period.Label(start); got != tt.label {
			t.Errorf("%s Label = %q, want %q", tt.period, got, tt.label)
		}
	}
	if got := PeriodSemester.Label(PeriodSemester.BucketStart(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))); got != "Jan-Jun 2024" {
		t.Errorf("first semester label = %q", got)
	}
}
