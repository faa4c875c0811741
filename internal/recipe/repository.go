package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is a database-backed catalog of recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or updates a recipe. A missing ID is assigned here, so the
// returned recipe always carries one.
func (r *Repository) Save(ctx context.Context, rec Recipe) (*Recipe, error) {
	if rec.OwnerID == "" {
		return nil, fmt.Errorf("recipe has no owner")
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("recipe has no name")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Normalize()

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, owner_id, name, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = excluded.owner_id,
			name = excluded.name,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		rec.ID, rec.OwnerID, rec.Name, string(data), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	return &rec, nil
}

// Get retrieves a recipe by its ID. Returns (nil, nil) when not found.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT owner_id, data FROM recipes WHERE id = ?`, id)

	var ownerID, data string
	if err := row.Scan(&ownerID, &data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	return unmarshalRecipe(id, ownerID, data)
}

// GetByName retrieves a recipe by exact name within an owner's catalog.
// Returns (nil, nil) when no recipe matches, or when the name is ambiguous:
// names are not unique, so an ambiguous match must never resolve.
func (r *Repository) GetByName(ctx context.Context, ownerID, name string) (*Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data FROM recipes WHERE owner_id = ? AND name = ? LIMIT 2`,
		ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe by name: %w", err)
	}
	defer rows.Close()

	var matches []*Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		rec, err := unmarshalRecipe(id, ownerID, data)
		if err != nil {
			return nil, err
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipe rows: %w", err)
	}

	if len(matches) != 1 {
		return nil, nil
	}
	return matches[0], nil
}

// List retrieves all of an owner's recipes ordered by name.
func (r *Repository) List(ctx context.Context, ownerID string) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data FROM recipes WHERE owner_id = ? ORDER BY name COLLATE NOCASE, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		rec, err := unmarshalRecipe(id, ownerID, data)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipe rows: %w", err)
	}
	return recipes, nil
}

// Delete removes a recipe from an owner's catalog. Deleting an unknown ID is
// not an error. Meal-plan slots pointing at the deleted recipe are left in
// place; aggregation drops them as dangling references.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM recipes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// ReplaceIngredients swaps out the ingredient list of a single category,
// leaving the rest of the recipe untouched.
func (r *Repository) ReplaceIngredients(ctx context.Context, ownerID, id, category string, items []string) (*Recipe, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.OwnerID != ownerID {
		return nil, fmt.Errorf("recipe %s not found", id)
	}

	if items == nil {
		items = []string{}
	}
	rec.Ingredients[CanonicalCategory(category)] = items
	return r.Save(ctx, *rec)
}

func unmarshalRecipe(id, ownerID, data string) (*Recipe, error) {
	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	rec.ID = id
	rec.OwnerID = ownerID
	rec.Normalize()
	return &rec, nil
}
