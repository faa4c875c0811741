package recipe

import (
	"reflect"
	"testing"
)

func TestCanonicalCategory(t *testing.T) {
	if got := CanonicalCategory("Veggies"); got != "Produce" {
		t.Errorf("Expected 'Veggies' to fold into 'Produce', got '%s'", got)
	}
	if got := CanonicalCategory("Produce"); got != "Produce" {
		t.Errorf("Expected 'Produce' to pass through, got '%s'", got)
	}
	if got := CanonicalCategory("Spices"); got != "Spices" {
		t.Errorf("Expected unknown category to pass through, got '%s'", got)
	}
}

func TestNormalize_BackfillsCanonicalCategories(t *testing.T) {
	rec := Recipe{Name: "Chili", Ingredients: map[string][]string{
		"Protein": {"beef"},
	}}
	rec.Normalize()

	for _, cat := range CanonicalCategories {
		items, ok := rec.Ingredients[cat]
		if !ok {
			t.Fatalf("Expected category %s to be present", cat)
		}
		if items == nil {
			t.Errorf("Expected category %s to be a non-nil sequence", cat)
		}
	}
	if len(rec.Ingredients["Protein"]) != 1 || rec.Ingredients["Protein"][0] != "beef" {
		t.Errorf("Expected Protein to keep its items, got %v", rec.Ingredients["Protein"])
	}
}

func TestNormalize_NilIngredients(t *testing.T) {
	rec := Recipe{Name: "Empty"}
	rec.Normalize()

	if len(rec.Ingredients) != len(CanonicalCategories) {
		t.Errorf("Expected %d categories, got %d", len(CanonicalCategories), len(rec.Ingredients))
	}
}

func TestNormalize_FoldsLegacyVeggies(t *testing.T) {
	rec := Recipe{Name: "Poke", Ingredients: map[string][]string{
		"Produce": {"avocado"},
		"Veggies": {"2 scallion", "1 maui onion"},
	}}
	rec.Normalize()

	if _, ok := rec.Ingredients["Veggies"]; ok {
		t.Error("Expected 'Veggies' key to be gone after normalization")
	}
	want := []string{"avocado", "2 scallion", "1 maui onion"}
	if !reflect.DeepEqual(rec.Ingredients["Produce"], want) {
		t.Errorf("Expected Produce %v, got %v", want, rec.Ingredients["Produce"])
	}
}

func TestNormalize_FoldOrderIsStable(t *testing.T) {
	// Map iteration order is randomized, so the fold has to impose its own:
	// canonical items keep their position and legacy items append after them,
	// identically on every run.
	want := []string{"avocado", "2 scallion", "1 maui onion"}
	for i := 0; i < 50; i++ {
		rec := Recipe{Name: "Poke", Ingredients: map[string][]string{
			"Produce": {"avocado"},
			"Veggies": {"2 scallion", "1 maui onion"},
		}}
		rec.Normalize()
		if !reflect.DeepEqual(rec.Ingredients["Produce"], want) {
			t.Fatalf("Expected Produce %v on iteration %d, got %v", want, i, rec.Ingredients["Produce"])
		}
	}
}

func TestNormalize_KeepsOpenSetCategories(t *testing.T) {
	rec := Recipe{Name: "Curry", Ingredients: map[string][]string{
		"Spices": {"garam masala"},
	}}
	rec.Normalize()

	if !reflect.DeepEqual(rec.Ingredients["Spices"], []string{"garam masala"}) {
		t.Errorf("Expected open-set category to survive, got %v", rec.Ingredients["Spices"])
	}
}

func TestOrderedCategories(t *testing.T) {
	rec := Recipe{Name: "Curry", Ingredients: map[string][]string{
		"Spices":  {"garam masala"},
		"Protein": {"chicken"},
	}}
	rec.Normalize()

	want := []string{"Protein", "Starch", "Produce", "Pantry", "Spices"}
	if !reflect.DeepEqual(rec.OrderedCategories(), want) {
		t.Errorf("Expected order %v, got %v", want, rec.OrderedCategories())
	}
}

func TestHasLink(t *testing.T) {
	if (Recipe{Link: "Not available"}).HasLink() {
		t.Error("Expected the sentinel link to count as no link")
	}
	if (Recipe{}).HasLink() {
		t.Error("Expected an empty link to count as no link")
	}
	if !(Recipe{Link: "https://example.com/poke"}).HasLink() {
		t.Error("Expected a URL to count as a link")
	}
}
