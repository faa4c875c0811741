package shopping

import (
	"context"
	"fmt"

	"mise-server/internal/mealplan"
	"mise-server/internal/recipe"
)

// Resolver looks up a recipe by ID. It returns (nil, nil) for an unknown ID;
// a dangling meal-plan reference is not an error, the slot just contributes
// nothing.
type Resolver interface {
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
}

// BuildList derives the categorized, deduplicated shopping list for one
// week's assignments. Deduplication is by exact display string; the first
// occurrence keeps its position. Legacy category labels are folded into their
// canonical names before grouping.
func BuildList(ctx context.Context, weekKey string, assignments map[string]string, catalog Resolver) (List, error) {
	list := List{Week: weekKey}

	collect := newSectionCollector()
	err := eachPlannedRecipe(ctx, assignments, catalog, func(rec *recipe.Recipe) {
		for _, cat := range rec.OrderedCategories() {
			canonical := recipe.CanonicalCategory(cat)
			for _, item := range rec.Ingredients[cat] {
				display := fmt.Sprintf("%s (%s)", item, rec.Name)
				collect.add(canonical, display)
			}
		}
	})
	if err != nil {
		return List{}, err
	}

	for _, cat := range sectionOrder(collect.order) {
		list.Sections = append(list.Sections, Section{Category: cat, Items: collect.items[cat]})
	}
	return list, nil
}

// BuildGroupedList is the grouped variant: deduplication is keyed by the bare
// ingredient string, and each entry tracks the set of contributing recipe
// names in first-contribution order.
func BuildGroupedList(ctx context.Context, weekKey string, assignments map[string]string, catalog Resolver) (GroupedList, error) {
	list := GroupedList{Week: weekKey}

	order := []string{}
	grouped := map[string][]*GroupedItem{}
	index := map[string]map[string]*GroupedItem{}

	err := eachPlannedRecipe(ctx, assignments, catalog, func(rec *recipe.Recipe) {
		for _, cat := range rec.OrderedCategories() {
			canonical := recipe.CanonicalCategory(cat)
			for _, item := range rec.Ingredients[cat] {
				if index[canonical] == nil {
					index[canonical] = map[string]*GroupedItem{}
					order = append(order, canonical)
				}
				entry, ok := index[canonical][item]
				if !ok {
					entry = &GroupedItem{Ingredient: item}
					index[canonical][item] = entry
					grouped[canonical] = append(grouped[canonical], entry)
				}
				if !contains(entry.Recipes, rec.Name) {
					entry.Recipes = append(entry.Recipes, rec.Name)
				}
			}
		}
	})
	if err != nil {
		return GroupedList{}, err
	}

	for _, cat := range sectionOrder(order) {
		section := GroupedSection{Category: cat}
		for _, entry := range grouped[cat] {
			section.Items = append(section.Items, *entry)
		}
		list.Sections = append(list.Sections, section)
	}
	return list, nil
}

// eachPlannedRecipe resolves the week's non-empty slots in day order and
// invokes fn once per resolved recipe. Dangling references are skipped
// silently; only real lookup failures propagate.
func eachPlannedRecipe(ctx context.Context, assignments map[string]string, catalog Resolver, fn func(*recipe.Recipe)) error {
	for _, day := range mealplan.Days {
		id := assignments[day]
		if id == "" {
			continue
		}
		rec, err := catalog.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to resolve recipe %s: %w", id, err)
		}
		if rec == nil {
			continue
		}
		fn(rec)
	}
	return nil
}

// sectionOrder arranges populated categories canonically (Protein, Starch,
// Produce, Pantry) with any open-set extras after them in first-seen order.
func sectionOrder(populated []string) []string {
	isPopulated := make(map[string]bool, len(populated))
	for _, cat := range populated {
		isPopulated[cat] = true
	}

	var out []string
	for _, cat := range recipe.CanonicalCategories {
		if isPopulated[cat] {
			out = append(out, cat)
			isPopulated[cat] = false
		}
	}
	for _, cat := range populated {
		if isPopulated[cat] {
			out = append(out, cat)
		}
	}
	return out
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

type sectionCollector struct {
	order []string
	items map[string][]string
	seen  map[string]map[string]bool
}

func newSectionCollector() *sectionCollector {
	return &sectionCollector{
		items: map[string][]string{},
		seen:  map[string]map[string]bool{},
	}
}

func (c *sectionCollector) add(category, display string) {
	if c.seen[category] == nil {
		c.seen[category] = map[string]bool{}
		c.order = append(c.order, category)
	}
	if c.seen[category][display] {
		return
	}
	c.seen[category][display] = true
	c.items[category] = append(c.items[category], display)
}
