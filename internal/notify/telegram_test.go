package notify

import (
	"context"
	"testing"

	"storefront/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func testOrder() *models.Order {
	note := "leave at the door"
	return &models.Order{
		ID:          uuid.MustParse("11111111-1111-4111-8111-111111111111"),
		UserID:      uuid.MustParse("22222222-2222-4222-8222-222222222222"),
		Description: &note,
		TotalPrice:  decimal.NewFromInt(400),
		Items: []models.OrderItem{
			{Quantity: 2, Price: decimal.NewFromInt(100), Product: models.ProductRef{Name: "A"}},
			{Quantity: 1, Price: decimal.NewFromInt(200), Product: models.ProductRef{Name: "B"}},
		},
	}
}

func TestFormatOrder(t *testing.T) {
	text := FormatOrder(testOrder())
	assert.Equal(t, "New order 11111111-1111-4111-8111-111111111111\n"+
		"User: 22222222-2222-4222-8222-222222222222\n"+
		"- A x2 @ 100.00\n"+
		"- B x1 @ 200.00\n"+
		"Total: 400.00\n"+
		"Note: leave at the door", text)
}

func TestOrderPlacedSendsToAdminChat(t *testing.T) {
	fake := &fakeSender{}
	n := &Telegram{bot: fake, chatID: 42}

	require.NoError(t, n.OrderPlaced(context.Background(), testOrder()))
	require.Len(t, fake.sent, 1)

	msg, ok := fake.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "Total: 400.00")
}

func TestOrderPlacedHonoursCancelledContext(t *testing.T) {
	fake := &fakeSender{}
	n := &Telegram{bot: fake, chatID: 42}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.OrderPlaced(ctx, testOrder()), context.Canceled)
	assert.Empty(t, fake.sent)
}
