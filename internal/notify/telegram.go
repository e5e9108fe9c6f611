package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"PulseWatch/internal/domain/models"
)

// Telegram pushes signals to a chat via the Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram notifier. The token is verified
// against the API during construction.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, s *models.Signal) error {
	msg := tgbotapi.NewMessage(t.chatID, formatSignal(s))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *Telegram) Close() error {
	t.bot.StopReceivingUpdates()
	return nil
}

func formatSignal(s *models.Signal) string {
	arrow := "🟢"
	if s.Direction == models.Short {
		arrow = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b> %s %s\n", arrow, s.Symbol, s.Type, s.Direction)
	fmt.Fprintf(&b, "Confidence: <b>%d</b> (%s)\n", s.Confidence.Score, s.Confidence.Level)
	fmt.Fprintf(&b, "Price: %s\n", formatPrice(s.Price))
	fmt.Fprintf(&b, "Entry %s | TP1 %s | TP2 %s | TP3 %s\n",
		formatPrice(s.Levels.Entry), formatPrice(s.Levels.TP1),
		formatPrice(s.Levels.TP2), formatPrice(s.Levels.TP3))
	fmt.Fprintf(&b, "Stop %s | R/R %s\n", formatPrice(s.Levels.StopLoss), s.Levels.RiskReward)
	if s.Sustained {
		b.WriteString("⏫ sustained\n")
	}
	for _, f := range s.Confidence.Factors {
		fmt.Fprintf(&b, "• %s\n", f)
	}
	return b.String()
}

// formatPrice keeps enough precision for sub-cent pairs without
// printing 8 decimals on majors.
func formatPrice(p float64) string {
	switch {
	case p >= 100:
		return fmt.Sprintf("%.2f", p)
	case p >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.8f", p)
	}
}
