package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"budget/internal/core"
	"budget/internal/storage"
)

// SettingsUpdate carries the fields to overwrite; nil fields are kept.
type SettingsUpdate struct {
	Currency *string
	DarkMode *bool
}

type SettingsService struct {
	repo storage.SettingsRepository
	cost int
}

func NewSettingsService(repo storage.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo, cost: bcrypt.DefaultCost}
}

func (s *SettingsService) Get(ctx context.Context) (core.Settings, error) {
	st, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return st, nil
}

func (s *SettingsService) Update(ctx context.Context, u SettingsUpdate) (core.Settings, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return core.Settings{}, err
	}
	if u.Currency != nil {
		code, err := core.NormalizeCurrency(*u.Currency)
		if err != nil {
			return core.Settings{}, err
		}
		st.Currency = code
	}
	if u.DarkMode != nil {
		st.DarkMode = *u.DarkMode
	}
	if err := s.repo.SaveSettings(ctx, st); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	slog.InfoContext(ctx, "Settings updated", "currency", st.Currency, "dark_mode", st.DarkMode)
	return st, nil
}

// SetPIN installs a new PIN. When a PIN already exists current must match it.
func (s *SettingsService) SetPIN(ctx context.Context, current, pin, confirm string) error {
	if err := core.ValidatePIN(pin, confirm); err != nil {
		return err
	}
	st, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if err := checkPIN(st, current); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	st.PINHash = string(hash)
	if err := s.repo.SaveSettings(ctx, st); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	slog.InfoContext(ctx, "PIN set")
	return nil
}

// RemovePIN clears the PIN after checking current.
func (s *SettingsService) RemovePIN(ctx context.Context, current string) error {
	st, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if !st.HasPIN() {
		return nil
	}
	if err := checkPIN(st, current); err != nil {
		return err
	}
	st.PINHash = ""
	if err := s.repo.SaveSettings(ctx, st); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	slog.InfoContext(ctx, "PIN removed")
	return nil
}

// VerifyPIN returns core.ErrWrongPIN unless pin matches. Without a PIN
// every attempt succeeds.
func (s *SettingsService) VerifyPIN(ctx context.Context, pin string) error {
	st, err := s.Get(ctx)
	if err != nil {
		return err
	}
	return checkPIN(st, pin)
}

func checkPIN(st core.Settings, pin string) error {
	if !st.HasPIN() {
		return nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(st.PINHash), []byte(pin))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return core.ErrWrongPIN
	}
	if err != nil {
		return fmt.Errorf("compare pin: %w", err)
	}
	return nil
}
