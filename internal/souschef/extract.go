package souschef

import (
	"encoding/json"
	"errors"
	"strings"

	"mise-server/internal/recipe"
)

var errNoJSONObject = errors.New("reply contains no JSON object")
var errMissingName = errors.New("reply has no recipe name")

// extractJSON carves the JSON candidate out of an untrusted model reply. The
// reply may wrap the object in commentary or markdown fencing, so the
// candidate is the span from the first '{' to the last '}' inclusive.
func extractJSON(raw string) (string, error) {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first == -1 || last < first {
		return "", &ParseError{Raw: raw, Err: errNoJSONObject}
	}
	return raw[first : last+1], nil
}

// decodeRecipe turns a raw model reply into a normalized recipe. Any failure
// is a ParseError carrying the full raw reply.
func decodeRecipe(raw string) (*recipe.Recipe, error) {
	candidate, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Name         string              `json:"name"`
		Ingredients  map[string][]string `json:"ingredients"`
		Instructions string              `json:"instructions"`
		Link         string              `json:"link"`
	}
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	if strings.TrimSpace(payload.Name) == "" {
		return nil, &ParseError{Raw: raw, Err: errMissingName}
	}

	rec := &recipe.Recipe{
		Name:         payload.Name,
		Ingredients:  payload.Ingredients,
		Instructions: payload.Instructions,
		Link:         payload.Link,
	}
	// Missing categories are backfilled as empty sequences, not rejected.
	rec.Normalize()
	return rec, nil
}
