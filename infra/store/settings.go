package store

import (
	"context"
	"fmt"
)

// GetSetting implements provider.SettingStore
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := s.queryRow(ctx, `SELECT value FROM settings WHERE name = ?`, key).Scan(&value); err != nil {
		if err = notFound(err); err != nil {
			return "", false, fmt.Errorf("get setting %s: %w", key, err)
		}
		return "", false, nil
	}
	return value, true, nil
}

// SaveSetting implements provider.SettingStore
func (s *Store) SaveSetting(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, `INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting implements provider.SettingStore
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.exec(ctx, `DELETE FROM settings WHERE name = ?`, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

// GetResource implements provider.LocaleStore. A missing resource is an empty string.
func (s *Store) GetResource(ctx context.Context, key string) (string, error) {
	var value string
	if err := s.queryRow(ctx, `SELECT value FROM locale_resources WHERE name = ?`, key).Scan(&value); err != nil {
		if err = notFound(err); err != nil {
			return "", fmt.Errorf("get locale resource %s: %w", key, err)
		}
		return "", nil
	}
	return value, nil
}

// AddOrUpdateResource implements provider.LocaleStore
func (s *Store) AddOrUpdateResource(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, `INSERT INTO locale_resources (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("save locale resource %s: %w", key, err)
	}
	return nil
}

// DeleteResource implements provider.LocaleStore
func (s *Store) DeleteResource(ctx context.Context, key string) error {
	if _, err := s.exec(ctx, `DELETE FROM locale_resources WHERE name = ?`, key); err != nil {
		return fmt.Errorf("delete locale resource %s: %w", key, err)
	}
	return nil
}
