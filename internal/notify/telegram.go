package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"storefront/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of *tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts a message to the admin chat for every placed order.
type Telegram struct {
	bot    sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = false
	log.Printf("Authorized telegram bot %s", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) OrderPlaced(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatOrder(order))
	_, err := t.bot.Send(msg)
	return err
}

func FormatOrder(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n", order.ID)
	fmt.Fprintf(&b, "User: %s\n", order.UserID)
	for _, it := range order.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s\n", it.Product.Name, it.Quantity, it.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s", order.TotalPrice.StringFixed(2))
	if order.Description != nil {
		fmt.Fprintf(&b, "\nNote: %s", *order.Description)
	}
	return b.String()
}
