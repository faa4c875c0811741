package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LLM provider selection values.
const (
	ProviderProxy  = "proxy"
	ProviderGemini = "gemini"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string

	// LLM Config
	LLMProvider  string
	LLMProxyURL  string
	GeminiAPIKey string

	// HTTP Server Config
	HTTPPort       string
	AuthSecret     string
	AllowedOrigins []string

	// Telegram Config (only required for the bot binary)
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	dbPath := os.Getenv("MISE_DB_PATH")
	if dbPath == "" {
		dbPath = "data/mise.db"
	}

	provider := os.Getenv("MISE_LLM_PROVIDER")
	if provider == "" {
		provider = ProviderProxy
	}

	proxyURL := os.Getenv("LLM_PROXY_URL")
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	switch provider {
	case ProviderProxy:
		if proxyURL == "" {
			return nil, fmt.Errorf("LLM_PROXY_URL environment variable not set")
		}
	case ProviderGemini:
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unknown MISE_LLM_PROVIDER %q", provider)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	origins := []string{"*"}
	if raw := os.Getenv("MISE_ALLOWED_ORIGINS"); raw != "" {
		origins = splitAndTrim(raw)
	}

	var allowedIDs []int64
	if raw := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); raw != "" {
		for _, part := range splitAndTrim(raw) {
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
			}
			allowedIDs = append(allowedIDs, id)
		}
	}

	return &Config{
		DatabasePath:           dbPath,
		LLMProvider:            provider,
		LLMProxyURL:            proxyURL,
		GeminiAPIKey:           geminiAPIKey,
		HTTPPort:               port,
		AuthSecret:             os.Getenv("MISE_AUTH_SECRET"),
		AllowedOrigins:         origins,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
	}, nil
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
