package recipe

import "sort"

// Canonical ingredient categories. The set is open: recipes may carry other
// category labels, and those pass through aggregation unchanged.
const (
	CategoryProtein = "Protein"
	CategoryStarch  = "Starch"
	CategoryProduce = "Produce"
	CategoryPantry  = "Pantry"
)

// legacyVeggies is the pre-rename label for CategoryProduce still present in
// older stored recipes.
const legacyVeggies = "Veggies"

// LinkNotAvailable is the sentinel stored when a recipe has no source URL.
const LinkNotAvailable = "Not available"

// CanonicalCategories lists the conventional categories in display order.
var CanonicalCategories = []string{
	CategoryProtein,
	CategoryStarch,
	CategoryProduce,
	CategoryPantry,
}

// Recipe is a stored recipe owned by a single user.
type Recipe struct {
	ID           string              `json:"id,omitempty"`
	OwnerID      string              `json:"-"`
	Name         string              `json:"name"`
	Ingredients  map[string][]string `json:"ingredients"`
	Instructions string              `json:"instructions,omitempty"`
	Link         string              `json:"link,omitempty"`
}

// CanonicalCategory folds legacy category labels into their canonical name.
// Unrecognized labels are returned unchanged.
func CanonicalCategory(name string) string {
	if name == legacyVeggies {
		return CategoryProduce
	}
	return name
}

// Normalize folds legacy category labels and guarantees that every canonical
// category maps to a sequence, never nil. Safe to call on recipes loaded from
// old data as well as freshly generated ones. Folding order is fixed so the
// result is identical on every call: canonical labels keep their items first,
// legacy labels append after them, extras follow sorted by name.
func (r *Recipe) Normalize() {
	normalized := make(map[string][]string, len(CanonicalCategories))
	for _, cat := range CanonicalCategories {
		normalized[cat] = append([]string{}, r.Ingredients[cat]...)
	}
	normalized[CategoryProduce] = append(normalized[CategoryProduce], r.Ingredients[legacyVeggies]...)

	var extras []string
	for cat := range r.Ingredients {
		if cat != legacyVeggies && !isCanonical(cat) {
			extras = append(extras, cat)
		}
	}
	sort.Strings(extras)
	for _, cat := range extras {
		normalized[cat] = r.Ingredients[cat]
	}

	r.Ingredients = normalized
}

func isCanonical(cat string) bool {
	for _, canonical := range CanonicalCategories {
		if cat == canonical {
			return true
		}
	}
	return false
}

// HasLink reports whether the recipe carries a real source URL.
func (r Recipe) HasLink() bool {
	return r.Link != "" && r.Link != LinkNotAvailable
}

// OrderedCategories returns the recipe's category labels in deterministic
// order: canonical categories first, then any extra labels sorted by name.
func (r Recipe) OrderedCategories() []string {
	ordered := make([]string, 0, len(r.Ingredients))
	seen := make(map[string]bool, len(r.Ingredients))
	for _, cat := range CanonicalCategories {
		if _, ok := r.Ingredients[cat]; ok {
			ordered = append(ordered, cat)
			seen[cat] = true
		}
	}

	var extras []string
	for cat := range r.Ingredients {
		if !seen[cat] {
			extras = append(extras, cat)
		}
	}
	sort.Strings(extras)
	return append(ordered, extras...)
}
