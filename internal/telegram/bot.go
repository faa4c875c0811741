package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"mise-server/internal/app"
	"mise-server/internal/config"
	"mise-server/internal/mealplan"
	"mise-server/internal/souschef"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram API around the application: a URL message runs the
// link-import surface, /shopping renders this week's list and /plan shows the
// current assignments.
type Bot struct {
	api *tgbotapi.BotAPI
	app *app.App
	cfg *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{api: bot, app: application, cfg: cfg}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		log.Printf("Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	owner := fmt.Sprintf("tg:%d", msg.From.ID)

	switch {
	case msg.Text == "/shopping":
		b.handleShoppingRequest(msg, owner)
	case msg.Text == "/plan":
		b.handlePlanRequest(msg, owner)
	case strings.HasPrefix(msg.Text, "http://") || strings.HasPrefix(msg.Text, "https://"):
		b.handleLinkImport(msg, owner)
	default:
		b.reply(msg.Chat.ID, "Send a recipe URL to import it, /plan for this week's plan, or /shopping for the shopping list.")
	}
}

func (b *Bot) handleLinkImport(msg *tgbotapi.Message, owner string) {
	sent, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "Importing recipe..."))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx := context.Background()
	rec, err := b.app.GenerateFromLink(ctx, owner, souschef.LinkImportRequest{URL: msg.Text})

	var finalText string
	if err != nil {
		log.Printf("Error importing recipe: %v", err)
		finalText = fmt.Sprintf("Error importing recipe: %v", err)
	} else {
		// The bot has no confirmation card, so a successful import is added
		// to the catalog right away.
		saved, saveErr := b.app.ConfirmRecipe(ctx, owner, *rec)
		if saveErr != nil {
			finalText = fmt.Sprintf("Parsed %q but failed to save it: %v", rec.Name, saveErr)
		} else {
			finalText = fmt.Sprintf("Added %q to your recipes.", saved.Name)
		}
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, finalText)
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit reply: %v", err)
	}
}

func (b *Bot) handleShoppingRequest(msg *tgbotapi.Message, owner string) {
	ctx := context.Background()
	week := mealplan.WeekStart(time.Now())

	list, err := b.app.ShoppingList(ctx, owner, week)
	if err != nil {
		log.Printf("Error building shopping list: %v", err)
		b.reply(msg.Chat.ID, fmt.Sprintf("Error building shopping list: %v", err))
		return
	}

	if len(list.Sections) == 0 {
		b.reply(msg.Chat.ID, "Nothing on the list: no meals planned this week.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Shopping list for week of %s:\n", list.Week)
	for _, section := range list.Sections {
		fmt.Fprintf(&sb, "\n%s:\n", section.Category)
		for _, item := range section.Items {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message, owner string) {
	ctx := context.Background()

	weeks, _, err := b.app.Plan(ctx, owner)
	if err != nil {
		log.Printf("Error loading plan: %v", err)
		b.reply(msg.Chat.ID, fmt.Sprintf("Error loading plan: %v", err))
		return
	}

	var sb strings.Builder
	for _, week := range weeks {
		fmt.Fprintf(&sb, "%s (%s):\n", week.Label, week.Week)
		for _, day := range mealplan.Days {
			id := week.Assignments[day]
			if id == "" {
				continue
			}
			rec, err := b.app.GetRecipe(ctx, owner, id)
			if err != nil || rec == nil {
				continue
			}
			fmt.Fprintf(&sb, "%-4s %s\n", day, rec.Name)
		}
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		text = "No meals planned yet."
	}
	b.reply(msg.Chat.ID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}
