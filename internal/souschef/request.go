package souschef

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Surface identifies one of the independent generation entry points. Each
// surface owns its own transient result, so requests on different surfaces
// may be outstanding at the same time.
type Surface string

const (
	SurfaceLink     Surface = "link"
	SurfaceRoulette Surface = "roulette"
	SurfaceCustom   Surface = "custom"
)

// LinkImportRequest asks for a recipe extracted from a source URL.
type LinkImportRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// RouletteRequest asks for a recipe generated from fixed named choices. All
// fields are required; validation fails before any LLM call.
type RouletteRequest struct {
	MainIngredient string `json:"main_ingredient" validate:"required"`
	Cuisine        string `json:"cuisine" validate:"required"`
	Style          string `json:"style" validate:"required"`
	Chef           string `json:"chef" validate:"required"`
	Difficulty     string `json:"difficulty" validate:"required"`
	Servings       string `json:"servings" validate:"required"`
}

// CustomRequest asks for a recipe generated from a free-text prompt.
type CustomRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// checkRequest runs struct validation and converts validator output into the
// pipeline's ValidationError.
func checkRequest(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		missing := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			missing = append(missing, fe.Field())
		}
		return &ValidationError{Missing: missing}
	}
	return err
}
