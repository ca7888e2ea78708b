package core

import (
	"errors"
	"fmt"
	"strings"
)

const DefaultCurrency = "NPR"

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidPIN          = errors.New("PIN must be 4 to 10 digits")
	ErrPINMismatch         = errors.New("PINs do not match")
	ErrWrongPIN            = errors.New("wrong PIN")
)

// SupportedCurrencies lists the currency codes a user may pick.
var SupportedCurrencies = []string{"NPR", "USD", "EUR", "GBP", "AUD", "CAD"}

// Settings are the user preferences. Each field is overwritten as a whole on save.
type Settings struct {
	Currency string `json:"currency"`
	DarkMode bool   `json:"dark_mode"`
	PINHash  string `json:"-"`
}

func DefaultSettings() Settings {
	return Settings{Currency: DefaultCurrency, DarkMode: true}
}

func (s Settings) HasPIN() bool {
	return s.PINHash != ""
}

// NormalizeCurrency upper-cases code and checks it against SupportedCurrencies.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range SupportedCurrencies {
		if c == code {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
}

// ValidatePIN checks the PIN format and that the confirmation matches.
func ValidatePIN(pin, confirm string) error {
	if len(pin) < 4 || len(pin) > 10 {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	if pin != confirm {
		return ErrPINMismatch
	}
	return nil
}
