package database

import (
	"fmt"
)

// SettingsRepo handles the ticker settings singleton row
type SettingsRepo struct {
	db *DB
}

var _ SettingsRepository = (*SettingsRepo)(nil)

func NewSettingsRepository(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// GetOrCreate returns the singleton settings row, creating it with defaults
// on first access.
func (r *SettingsRepo) GetOrCreate() (*TickerSettings, error) {
	defaults := DefaultTickerSettings
	_, err := r.db.Exec(`
		INSERT INTO ticker_settings (id, scroll_speed, pause_on_hover, spacing, max_items_per_feed)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, defaults.ScrollSpeed, defaults.PauseOnHover, defaults.Spacing, defaults.MaxItemsPerFeed)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ticker settings: %w", err)
	}

	var settings TickerSettings
	err = r.db.QueryRow(`
		SELECT scroll_speed, pause_on_hover, spacing, max_items_per_feed, updated_at
		FROM ticker_settings
		WHERE id = 1
	`).Scan(&settings.ScrollSpeed, &settings.PauseOnHover, &settings.Spacing,
		&settings.MaxItemsPerFeed, &settings.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker settings: %w", err)
	}

	return &settings, nil
}

func (r *SettingsRepo) Update(settings TickerSettings) error {
	_, err := r.db.Exec(`
		INSERT INTO ticker_settings (id, scroll_speed, pause_on_hover, spacing, max_items_per_feed)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			scroll_speed = excluded.scroll_speed,
			pause_on_hover = excluded.pause_on_hover,
			spacing = excluded.spacing,
			max_items_per_feed = excluded.max_items_per_feed,
			updated_at = CURRENT_TIMESTAMP
	`, settings.ScrollSpeed, settings.PauseOnHover, settings.Spacing, settings.MaxItemsPerFeed)
	if err != nil {
		return fmt.Errorf("failed to update ticker settings: %w", err)
	}

	return nil
}
