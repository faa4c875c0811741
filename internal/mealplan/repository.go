package mealplan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository persists per-owner meal-plan settings.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settings repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// LoadSettings retrieves an owner's persisted snapshot. Returns (nil, nil)
// when the owner has never saved settings.
func (r *Repository) LoadSettings(ctx context.Context, ownerID string) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT data FROM settings WHERE owner_id = ?`, ownerID)

	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings JSON: %w", err)
	}
	if snap.Assignments == nil {
		snap.Assignments = Assignments{}
	}
	return &snap, nil
}

// SaveSettings upserts an owner's snapshot.
func (r *Repository) SaveSettings(ctx context.Context, ownerID string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal settings to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (owner_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		ownerID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
