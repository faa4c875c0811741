package server

import (
	"net/http"
	"time"

	"mise-server/internal/app"
	"mise-server/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server exposes the application over a JSON HTTP API.
type Server struct {
	router chi.Router
	app    *app.App
}

// New builds the router with middleware and routes.
func New(cfg *config.Config, application *app.App) *Server {
	s := &Server{
		router: chi.NewRouter(),
		app:    application,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(120 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(ownerAuth(cfg.AuthSecret))

		r.Get("/recipes", s.handleListRecipes)
		r.Post("/recipes", s.handleCreateRecipe)
		r.Get("/recipes/{id}", s.handleGetRecipe)
		r.Delete("/recipes/{id}", s.handleDeleteRecipe)
		r.Put("/recipes/{id}/ingredients/{category}", s.handleReplaceIngredients)

		r.Get("/plan", s.handleGetPlan)
		r.Put("/plan/{week}/{day}", s.handleAssign)
		r.Put("/plan/preferences", s.handleSetPreferences)

		r.Get("/shopping-list/{week}", s.handleShoppingList)

		r.Post("/sous-chef/link", s.handleGenerateLink)
		r.Post("/sous-chef/roulette", s.handleGenerateRoulette)
		r.Post("/sous-chef/custom", s.handleGenerateCustom)
		r.Post("/sous-chef/confirm", s.handleConfirm)
	})

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
