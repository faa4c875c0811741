package mealplan

import (
	"context"
	"log"
	"sync"
)

// SettingsSaver persists a snapshot after local mutations. Saves are
// fire-and-forget from the store's point of view: failures are logged, never
// surfaced, and never roll back the in-memory plan.
type SettingsSaver interface {
	SaveSettings(ctx context.Context, ownerID string, snap Snapshot) error
}

// RefMigrator resolves a legacy recipe reference (a display name) to a recipe
// ID. It reports false when the reference is already an ID or cannot be
// resolved unambiguously.
type RefMigrator func(ref string) (string, bool)

// Store holds one owner's in-memory meal plan. Slots store recipe IDs only;
// legacy name references are migrated once, at Load time. Writes before the
// initial Load are held locally and not persisted, so an empty default can
// never clobber saved settings.
type Store struct {
	ownerID string
	saver   SettingsSaver

	mu     sync.Mutex
	snap   Snapshot
	loaded bool
}

// NewStore creates an empty store for one owner.
func NewStore(ownerID string, saver SettingsSaver) *Store {
	return &Store{
		ownerID: ownerID,
		saver:   saver,
		snap:    NewSnapshot(),
	}
}

// Load replaces the entire in-memory plan with an externally supplied
// snapshot. It is a full overwrite, not a merge, so it must run before local
// writes begin. Slot values that are not known IDs but match exactly one
// recipe name are rewritten to that recipe's ID; anything else is kept as-is
// and simply never resolves during aggregation. Rewrites are persisted so the
// migration runs once, not on every startup.
func (s *Store) Load(ctx context.Context, snap *Snapshot, migrate RefMigrator) {
	s.mu.Lock()

	if snap == nil {
		s.snap = NewSnapshot()
	} else {
		s.snap = snap.clone()
		if s.snap.Assignments == nil {
			s.snap.Assignments = Assignments{}
		}
	}

	migrated := false
	if migrate != nil {
		for _, week := range s.snap.Assignments {
			for day, ref := range week {
				if id, ok := migrate(ref); ok {
					week[day] = id
					migrated = true
				}
			}
		}
	}

	s.loaded = true
	out := s.snap.clone()
	s.mu.Unlock()

	if migrated {
		s.persist(ctx, out, true)
	}
}

// GetAssignment returns the recipe ID planned for a slot, or "" when the slot
// is empty.
func (s *Store) GetAssignment(weekKey, day string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Assignments[weekKey][day]
}

// SetAssignment replaces a single (week, day) slot, creating unknown week
// keys on first write. An empty recipe ID clears the slot. Last write wins on
// concurrent updates to the same slot. Returns the full updated snapshot so
// the shopping list can be recomputed from it.
func (s *Store) SetAssignment(ctx context.Context, weekKey, day, recipeID string) Snapshot {
	s.mu.Lock()

	week, ok := s.snap.Assignments[weekKey]
	if !ok {
		week = map[string]string{}
		s.snap.Assignments[weekKey] = week
	}
	if recipeID == "" {
		delete(week, day)
	} else {
		week[day] = recipeID
	}

	snap := s.snap.clone()
	loaded := s.loaded
	s.mu.Unlock()

	s.persist(ctx, snap, loaded)
	return snap
}

// SetPreferences replaces the persisted display preferences.
func (s *Store) SetPreferences(ctx context.Context, prefs Preferences) Snapshot {
	s.mu.Lock()
	s.snap.Preferences = prefs
	snap := s.snap.clone()
	loaded := s.loaded
	s.mu.Unlock()

	s.persist(ctx, snap, loaded)
	return snap
}

// Snapshot returns a copy of the current plan.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

func (s *Store) persist(ctx context.Context, snap Snapshot, loaded bool) {
	if !loaded || s.saver == nil {
		return
	}
	if err := s.saver.SaveSettings(ctx, s.ownerID, snap); err != nil {
		log.Printf("Warning: failed to save meal plan settings for %s: %v", s.ownerID, err)
	}
}
