package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mise-server/internal/app"
	"mise-server/internal/clipper"
	"mise-server/internal/config"
	"mise-server/internal/database"
	"mise-server/internal/llm"
	"mise-server/internal/mealplan"
	"mise-server/internal/metrics"
	"mise-server/internal/recipe"
	"mise-server/internal/server"
	"mise-server/internal/souschef"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.AuthSecret == "" {
		log.Fatalf("MISE_AUTH_SECRET environment variable not set")
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	textGen, closeGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	defer closeGen()

	recipeRepo := recipe.NewRepository(db.SQL)
	settingsRepo := mealplan.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)
	pipeline := souschef.New(textGen, clipper.New())

	application := app.New(recipeRepo, settingsRepo, pipeline, metricsStore)
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.New(cfg, application).Handler(),
	}

	go func() {
		log.Printf("Mise server listening on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, func(), error) {
	if cfg.LLMProvider == config.ProviderGemini {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if closer, ok := client.(llm.Closer); ok {
				closer.Close()
			}
		}
		return client, closeFn, nil
	}
	return llm.NewProxyClient(cfg.LLMProxyURL), func() {}, nil
}
