package services

import (
	"context"
	"testing"
	"time"

	"blackvant/internal/store"
)

type stubSettingsStore struct {
	getAllFn func(ctx context.Context) (map[string]string, error)
	setFn    func(ctx context.Context, tx store.Execer, key, value string) error
}

func (s stubSettingsStore) GetAll(ctx context.Context) (map[string]string, error) {
	if s.getAllFn == nil {
		return nil, nil
	}
	return s.getAllFn(ctx)
}

func (s stubSettingsStore) Set(ctx context.Context, tx store.Execer, key, value string) error {
	if s.setFn == nil {
		return nil
	}
	return s.setFn(ctx, tx, key, value)
}

func TestResolveDefaultsOnEmptyTable(t *testing.T) {
	resolver := NewSettingsResolver(stubSettingsStore{}, time.Minute)
	settings, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.MinDepositMinor != 10000 || settings.MinWithdrawMinor != 1000 {
		t.Fatalf("unexpected defaults: %#v", settings)
	}
	if settings.WithdrawFrequencyDays != 7 || settings.CapitalLockEnabled {
		t.Fatalf("unexpected defaults: %#v", settings)
	}
}

func TestResolveOverridesFromTable(t *testing.T) {
	resolver := NewSettingsResolver(stubSettingsStore{
		getAllFn: func(context.Context) (map[string]string, error) {
			return map[string]string{
				SettingMinDepositMinor:    "25000",
				SettingCapitalLockEnabled: "true",
				SettingMinWithdrawMinor:   "not-a-number",
			}, nil
		},
	}, time.Minute)
	settings, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.MinDepositMinor != 25000 {
		t.Fatalf("expected override, got %d", settings.MinDepositMinor)
	}
	if !settings.CapitalLockEnabled {
		t.Fatal("expected capital lock enabled")
	}
	// unparseable values fall back to defaults
	if settings.MinWithdrawMinor != 1000 {
		t.Fatalf("expected default for bad value, got %d", settings.MinWithdrawMinor)
	}
}

func TestResolveCachesWithinTTL(t *testing.T) {
	calls := 0
	resolver := NewSettingsResolver(stubSettingsStore{
		getAllFn: func(context.Context) (map[string]string, error) {
			calls++
			return nil, nil
		},
	}, time.Minute)
	for i := 0; i < 5; i++ {
		if _, err := resolver.Resolve(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one store read within TTL, got %d", calls)
	}
}

func TestUpdateInvalidatesCache(t *testing.T) {
	calls := 0
	resolver := NewSettingsResolver(stubSettingsStore{
		getAllFn: func(context.Context) (map[string]string, error) {
			calls++
			return nil, nil
		},
	}, time.Minute)
	if _, err := resolver.Resolve(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := resolver.Update(context.Background(), nil, SettingMinDepositMinor, "20000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := resolver.Resolve(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a fresh read after update, got %d calls", calls)
	}
}
