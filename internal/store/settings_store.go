package store

import "context"

type SettingsStore struct {
	db DB
}

func NewSettingsStore(db DB) *SettingsStore {
	return &SettingsStore{db: db}
}

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// GetAll returns the raw key/value pairs; the resolver applies defaults
// for anything unset.
func (s *SettingsStore) GetAll(ctx context.Context) (map[string]string, error) {
	var rows []settingRow
	err := s.db.SelectContext(ctx, &rows, `SELECT key, value FROM system_settings`)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

func (s *SettingsStore) Set(ctx context.Context, tx Execer, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO system_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	return err
}
