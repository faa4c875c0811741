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
	"mise-server/internal/souschef"
	"mise-server/internal/telegram"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramWebhookURL == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL environment variables must be set")
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	var textGen llm.TextGenerator
	if cfg.LLMProvider == config.ProviderGemini {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		if closer, ok := geminiClient.(llm.Closer); ok {
			defer closer.Close()
		}
		textGen = geminiClient
	} else {
		textGen = llm.NewProxyClient(cfg.LLMProxyURL)
	}

	recipeRepo := recipe.NewRepository(db.SQL)
	settingsRepo := mealplan.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)
	pipeline := souschef.New(textGen, clipper.New())
	application := app.New(recipeRepo, settingsRepo, pipeline, metricsStore)

	bot, err := telegram.NewBot(cfg, application)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := cfg.HTTPPort
	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
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
