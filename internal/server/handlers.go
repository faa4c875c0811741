package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mise-server/internal/app"
	"mise-server/internal/mealplan"
	"mise-server/internal/recipe"
	"mise-server/internal/souschef"

	"github.com/go-chi/chi/v5"
)

// --- Recipes ---

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.app.ListRecipes(r.Context(), ownerID(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	respondJSON(w, http.StatusOK, recipes)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var rec recipe.Recipe
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	saved, err := s.app.SaveRecipe(r.Context(), ownerID(r), rec)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.app.GetRecipe(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteRecipe(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceIngredients(w http.ResponseWriter, r *http.Request) {
	var items []string
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := s.app.ReplaceIngredients(
		r.Context(), ownerID(r), chi.URLParam(r, "id"), chi.URLParam(r, "category"), items)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// --- Meal plan ---

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	weeks, prefs, err := s.app.Plan(r.Context(), ownerID(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"weeks":       weeks,
		"preferences": prefs,
	})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RecipeID string `json:"recipe_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	list, err := s.app.Assign(
		r.Context(), ownerID(r), chi.URLParam(r, "week"), chi.URLParam(r, "day"), body.RecipeID)
	if errors.Is(err, app.ErrUnknownDay) {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs mealplan.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.app.SetPreferences(r.Context(), ownerID(r), prefs); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Shopping list ---

func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	week := chi.URLParam(r, "week")

	if r.URL.Query().Get("grouped") == "true" {
		list, err := s.app.GroupedShoppingList(r.Context(), ownerID(r), week)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
		return
	}

	list, err := s.app.ShoppingList(r.Context(), ownerID(r), week)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// --- Sous chef ---

func (s *Server) handleGenerateLink(w http.ResponseWriter, r *http.Request) {
	var req souschef.LinkImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.app.GenerateFromLink(r.Context(), ownerID(r), req)
	s.respondGeneration(w, rec, err)
}

func (s *Server) handleGenerateRoulette(w http.ResponseWriter, r *http.Request) {
	var req souschef.RouletteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.app.GenerateRoulette(r.Context(), ownerID(r), req)
	s.respondGeneration(w, rec, err)
}

func (s *Server) handleGenerateCustom(w http.ResponseWriter, r *http.Request) {
	var req souschef.CustomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.app.GenerateCustom(r.Context(), ownerID(r), req)
	s.respondGeneration(w, rec, err)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var rec recipe.Recipe
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	saved, err := s.app.ConfirmRecipe(r.Context(), ownerID(r), rec)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// respondGeneration maps the pipeline's failure taxonomy onto HTTP statuses.
// Parse failures carry the raw model reply so the caller can diagnose what
// the model actually produced.
func (s *Server) respondGeneration(w http.ResponseWriter, rec *recipe.Recipe, err error) {
	if err == nil {
		respondJSON(w, http.StatusOK, rec)
		return
	}

	var validationErr *souschef.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   validationErr.Error(),
			"missing": validationErr.Missing,
		})
		return
	}

	var parseErr *souschef.ParseError
	if errors.As(err, &parseErr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": parseErr.Error(),
			"raw":   parseErr.Raw,
		})
		return
	}

	var transportErr *souschef.TransportError
	if errors.As(err, &transportErr) {
		respondError(w, http.StatusBadGateway, transportErr)
		return
	}

	respondError(w, http.StatusInternalServerError, err)
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
