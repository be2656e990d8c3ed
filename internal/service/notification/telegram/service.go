package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KNICEX/trade-alert/internal/service/notification"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var _ notification.Notifier = (*Service)(nil)

type Service struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewService(bot *tgbotapi.BotAPI, chatID int64) *Service {
	return &Service{
		bot:    bot,
		chatID: chatID,
	}
}

func (s *Service) Notify(ctx context.Context, alert notification.Alert) error {
	text := fmt.Sprintf("📈 %s %s\nprice: %s\ntime: %s\n%s",
		alert.Symbol,
		strings.ToUpper(alert.Kind),
		alert.Price,
		alert.Timestamp.Format(time.DateTime),
		alert.Message,
	)
	_, err := s.bot.Send(tgbotapi.NewMessage(s.chatID, text))
	return err
}

func (s *Service) NotifyTest(ctx context.Context) error {
	_, err := s.bot.Send(tgbotapi.NewMessage(s.chatID, "TradeAlert notification channel is working."))
	return err
}
