package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	tele "gopkg.in/telebot.v4"
)

type TelegramChannel struct {
	bot *tele.Bot
}

// NewTelegramChannel builds a send-only bot. Offline skips the getMe call so
// startup does not depend on Telegram being reachable.
func NewTelegramChannel(token string, client *http.Client) (*TelegramChannel, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
		Client:  client,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramChannel{bot: b}, nil
}

// Push sends to the chat id in m.To. telebot has no context support, so ctx
// is only checked before sending; the http client timeout bounds the call.
func (c *TelegramChannel) Push(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(m.To, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", m.To, err)
	}
	if _, err := c.bot.Send(tele.ChatID(chatID), m.Text); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}
