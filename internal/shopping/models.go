package shopping

// Section is one category's deduplicated, ordered entries. Items are display
// strings of the form "<ingredient> (<recipe name>)".
type Section struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// List is the derived shopping list for one week. It is recomputed in full on
// every input change and never persisted. Categories with no items are
// omitted.
type List struct {
	Week     string    `json:"week"`
	Sections []Section `json:"sections"`
}

// GroupedItem is one bare ingredient with the names of every recipe that
// contributed it.
type GroupedItem struct {
	Ingredient string   `json:"ingredient"`
	Recipes    []string `json:"recipes"`
}

// GroupedSection is one category's entries in the grouped variant, where
// deduplication is keyed by the bare ingredient string.
type GroupedSection struct {
	Category string        `json:"category"`
	Items    []GroupedItem `json:"items"`
}

// GroupedList is the grouped variant of List.
type GroupedList struct {
	Week     string           `json:"week"`
	Sections []GroupedSection `json:"sections"`
}
