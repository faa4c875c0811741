package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"mise-server/internal/mealplan"
	"mise-server/internal/metrics"
	"mise-server/internal/recipe"
	"mise-server/internal/shared"
	"mise-server/internal/shopping"
	"mise-server/internal/souschef"
)

// App holds the application's dependencies and exposes the use cases shared
// by the HTTP API and the bot surface.
type App struct {
	recipes      *recipe.Repository
	settings     *mealplan.Repository
	pipeline     *souschef.Pipeline
	metricsStore *metrics.Store

	mu    sync.Mutex
	plans map[string]*mealplan.Store
}

// New creates and initializes a new App instance. metricsStore may be nil to
// disable generation metrics.
func New(
	recipes *recipe.Repository,
	settings *mealplan.Repository,
	pipeline *souschef.Pipeline,
	metricsStore *metrics.Store,
) *App {
	return &App{
		recipes:      recipes,
		settings:     settings,
		pipeline:     pipeline,
		metricsStore: metricsStore,
		plans:        map[string]*mealplan.Store{},
	}
}

// --- Recipe catalog ---

// ListRecipes returns an owner's recipes ordered by name.
func (a *App) ListRecipes(ctx context.Context, ownerID string) ([]recipe.Recipe, error) {
	return a.recipes.List(ctx, ownerID)
}

// GetRecipe returns one recipe, or nil when it does not exist or belongs to
// another owner.
func (a *App) GetRecipe(ctx context.Context, ownerID, id string) (*recipe.Recipe, error) {
	rec, err := a.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.OwnerID != ownerID {
		return nil, nil
	}
	return rec, nil
}

// SaveRecipe stores a manually entered or edited recipe.
func (a *App) SaveRecipe(ctx context.Context, ownerID string, rec recipe.Recipe) (*recipe.Recipe, error) {
	rec.OwnerID = ownerID
	return a.recipes.Save(ctx, rec)
}

// DeleteRecipe removes a recipe. Plan slots referencing it become dangling
// and are dropped silently during aggregation.
func (a *App) DeleteRecipe(ctx context.Context, ownerID, id string) error {
	return a.recipes.Delete(ctx, ownerID, id)
}

// ReplaceIngredients swaps a single category's ingredient list on a recipe.
func (a *App) ReplaceIngredients(ctx context.Context, ownerID, id, category string, items []string) (*recipe.Recipe, error) {
	return a.recipes.ReplaceIngredients(ctx, ownerID, id, category, items)
}

// --- Meal plan ---

// PlanWeek describes one week of the plan for display.
type PlanWeek struct {
	Week        string            `json:"week"`
	Label       string            `json:"label"`
	Assignments map[string]string `json:"assignments"`
}

// Plan returns the current and next week of the owner's plan, plus
// preferences.
func (a *App) Plan(ctx context.Context, ownerID string) ([]PlanWeek, mealplan.Preferences, error) {
	store, err := a.planFor(ctx, ownerID)
	if err != nil {
		return nil, mealplan.Preferences{}, err
	}

	now := time.Now()
	snap := store.Snapshot()
	weeks := []PlanWeek{}
	for _, key := range []string{mealplan.WeekStart(now), mealplan.NextWeekStart(now)} {
		weeks = append(weeks, PlanWeek{
			Week:        key,
			Label:       mealplan.WeekLabel(key, now),
			Assignments: snap.Week(key),
		})
	}
	return weeks, snap.Preferences, nil
}

// ErrUnknownDay reports an Assign call with a day name outside Mon..Sun. It is
// a caller mistake, not a server fault.
var ErrUnknownDay = errors.New("unknown day")

// Assign writes a single (week, day) slot and returns the freshly recomputed
// shopping list for that week. An empty recipeID clears the slot.
func (a *App) Assign(ctx context.Context, ownerID, weekKey, day, recipeID string) (shopping.List, error) {
	if !mealplan.IsDay(day) {
		return shopping.List{}, fmt.Errorf("%w %q", ErrUnknownDay, day)
	}

	store, err := a.planFor(ctx, ownerID)
	if err != nil {
		return shopping.List{}, err
	}

	snap := store.SetAssignment(ctx, weekKey, day, recipeID)
	return shopping.BuildList(ctx, weekKey, snap.Week(weekKey), a.recipes)
}

// SetPreferences updates the owner's planner preferences.
func (a *App) SetPreferences(ctx context.Context, ownerID string, prefs mealplan.Preferences) error {
	store, err := a.planFor(ctx, ownerID)
	if err != nil {
		return err
	}
	store.SetPreferences(ctx, prefs)
	return nil
}

// ShoppingList derives the categorized list for one week.
func (a *App) ShoppingList(ctx context.Context, ownerID, weekKey string) (shopping.List, error) {
	store, err := a.planFor(ctx, ownerID)
	if err != nil {
		return shopping.List{}, err
	}
	return shopping.BuildList(ctx, weekKey, store.Snapshot().Week(weekKey), a.recipes)
}

// GroupedShoppingList derives the grouped variant for one week.
func (a *App) GroupedShoppingList(ctx context.Context, ownerID, weekKey string) (shopping.GroupedList, error) {
	store, err := a.planFor(ctx, ownerID)
	if err != nil {
		return shopping.GroupedList{}, err
	}
	return shopping.BuildGroupedList(ctx, weekKey, store.Snapshot().Week(weekKey), a.recipes)
}

// planFor returns the owner's plan store, loading persisted settings on first
// access. Writes that happen before the load completes stay local, so the
// persisted plan is never clobbered by an empty default.
func (a *App) planFor(ctx context.Context, ownerID string) (*mealplan.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if store, ok := a.plans[ownerID]; ok {
		return store, nil
	}

	snap, err := a.settings.LoadSettings(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for %s: %w", ownerID, err)
	}

	store := mealplan.NewStore(ownerID, a.settings)
	store.Load(ctx, snap, a.nameMigrator(ctx, ownerID))
	a.plans[ownerID] = store
	return store, nil
}

// nameMigrator builds the one-time legacy migration used at Load: plan slots
// historically stored recipe names, which are not unique. A slot value that
// is not a known ID but matches exactly one recipe name is rewritten to that
// ID; everything else is left untouched.
func (a *App) nameMigrator(ctx context.Context, ownerID string) mealplan.RefMigrator {
	return func(ref string) (string, bool) {
		rec, err := a.recipes.Get(ctx, ref)
		if err != nil {
			log.Printf("Warning: failed to check plan reference %q: %v", ref, err)
			return "", false
		}
		if rec != nil {
			return "", false // already an ID
		}

		byName, err := a.recipes.GetByName(ctx, ownerID, ref)
		if err != nil {
			log.Printf("Warning: failed to migrate plan reference %q: %v", ref, err)
			return "", false
		}
		if byName == nil {
			return "", false
		}
		return byName.ID, true
	}
}

// --- Sous chef ---

// GenerateFromLink runs the link-import surface.
func (a *App) GenerateFromLink(ctx context.Context, ownerID string, req souschef.LinkImportRequest) (*recipe.Recipe, error) {
	rec, meta, err := a.pipeline.GenerateFromLink(ctx, req)
	a.recordGeneration(ctx, meta, err)
	return rec, err
}

// GenerateRoulette runs the parameterized roulette surface.
func (a *App) GenerateRoulette(ctx context.Context, ownerID string, req souschef.RouletteRequest) (*recipe.Recipe, error) {
	rec, meta, err := a.pipeline.GenerateRoulette(ctx, req)
	a.recordGeneration(ctx, meta, err)
	return rec, err
}

// GenerateCustom runs the free-text surface.
func (a *App) GenerateCustom(ctx context.Context, ownerID string, req souschef.CustomRequest) (*recipe.Recipe, error) {
	rec, meta, err := a.pipeline.GenerateCustom(ctx, req)
	a.recordGeneration(ctx, meta, err)
	return rec, err
}

// ConfirmRecipe is the "Add to Recipes" step: the only point where a
// generated recipe is persisted.
func (a *App) ConfirmRecipe(ctx context.Context, ownerID string, rec recipe.Recipe) (*recipe.Recipe, error) {
	rec.ID = "" // confirmed recipes always get a fresh ID
	rec.OwnerID = ownerID
	return a.recipes.Save(ctx, rec)
}

// recordGeneration stores a metric for attempts that reached the LLM
// boundary. Validation failures never made a call, so they are not recorded.
func (a *App) recordGeneration(ctx context.Context, meta shared.GenerationMeta, genErr error) {
	if a.metricsStore == nil {
		return
	}

	outcome := metrics.OutcomeSuccess
	var parseErr *souschef.ParseError
	var transportErr *souschef.TransportError
	var validationErr *souschef.ValidationError
	switch {
	case errors.As(genErr, &validationErr):
		return
	case errors.As(genErr, &parseErr):
		outcome = metrics.OutcomeParseFailure
	case errors.As(genErr, &transportErr):
		outcome = metrics.OutcomeTransportFailure
	case genErr != nil:
		outcome = metrics.OutcomeTransportFailure
	}

	err := a.metricsStore.Record(ctx, metrics.Execution{
		Surface:          meta.Surface,
		Model:            meta.Usage.Model,
		Outcome:          outcome,
		PromptTokens:     meta.Usage.PromptTokens,
		CompletionTokens: meta.Usage.CompletionTokens,
		LatencyMS:        meta.Latency.Milliseconds(),
	})
	if err != nil {
		log.Printf("Warning: failed to record generation metric: %v", err)
	}
}

// MetricsSummary reports recent generation activity.
func (a *App) MetricsSummary(ctx context.Context, days int) ([]metrics.SurfaceSummary, error) {
	if a.metricsStore == nil {
		return nil, nil
	}
	return a.metricsStore.Summarize(ctx, days)
}
