package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"blackvant/internal/models"
	"blackvant/internal/store"
)

// Settings keys as stored in system_settings.
const (
	SettingMinDepositMinor         = "min_deposit_minor"
	SettingMinWithdrawMinor        = "min_withdraw_minor"
	SettingWithdrawFrequencyDays   = "withdraw_frequency_days"
	SettingCapitalLockEnabled      = "capital_lock_enabled"
	SettingCapitalLockDurationDays = "capital_lock_duration_days"
)

var defaultSettings = models.SystemSettings{
	MinDepositMinor:         10000,
	MinWithdrawMinor:        1000,
	WithdrawFrequencyDays:   7,
	CapitalLockEnabled:      false,
	CapitalLockDurationDays: 30,
}

type SettingsReadWriter interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, tx store.Execer, key, value string) error
}

// SettingsResolver serves system settings with a bounded-TTL cache.
// In-flight validations may see a snapshot up to ttl old; that is
// acceptable because every creation-time check is re-run at decision time.
// Writes through Update invalidate the local cache immediately.
type SettingsResolver struct {
	store SettingsReadWriter
	ttl   time.Duration

	mu        sync.RWMutex
	cached    models.SystemSettings
	fetchedAt time.Time
}

func NewSettingsResolver(settingsStore SettingsReadWriter, ttl time.Duration) *SettingsResolver {
	return &SettingsResolver{store: settingsStore, ttl: ttl}
}

func (r *SettingsResolver) Resolve(ctx context.Context) (models.SystemSettings, error) {
	r.mu.RLock()
	if !r.fetchedAt.IsZero() && time.Since(r.fetchedAt) < r.ttl {
		cached := r.cached
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	values, err := r.store.GetAll(ctx)
	if err != nil {
		return models.SystemSettings{}, err
	}
	resolved := applyDefaults(values)

	r.mu.Lock()
	r.cached = resolved
	r.fetchedAt = time.Now()
	r.mu.Unlock()
	return resolved, nil
}

func (r *SettingsResolver) Update(ctx context.Context, tx store.Execer, key, value string) error {
	if err := r.store.Set(ctx, tx, key, value); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

func (r *SettingsResolver) Invalidate() {
	r.mu.Lock()
	r.fetchedAt = time.Time{}
	r.mu.Unlock()
}

func applyDefaults(values map[string]string) models.SystemSettings {
	resolved := defaultSettings
	if raw, ok := values[SettingMinDepositMinor]; ok {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			resolved.MinDepositMinor = parsed
		}
	}
	if raw, ok := values[SettingMinWithdrawMinor]; ok {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			resolved.MinWithdrawMinor = parsed
		}
	}
	if raw, ok := values[SettingWithdrawFrequencyDays]; ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			resolved.WithdrawFrequencyDays = parsed
		}
	}
	if raw, ok := values[SettingCapitalLockEnabled]; ok {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			resolved.CapitalLockEnabled = parsed
		}
	}
	if raw, ok := values[SettingCapitalLockDurationDays]; ok {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			resolved.CapitalLockDurationDays = parsed
		}
	}
	return resolved
}
