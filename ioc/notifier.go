package ioc

import (
	"fmt"

	"github.com/KNICEX/trade-alert/internal/service/notification"
	"github.com/KNICEX/trade-alert/internal/service/notification/email"
	"github.com/KNICEX/trade-alert/internal/service/notification/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/viper"
)

// InitNotifier 邮件优先, 其次 telegram, 都未配置直接 panic
// start 命令必须有可用的通知通道, 否则告警会静默丢失
func InitNotifier() notification.Notifier {
	if host := viper.GetString("notify.email.host"); host != "" {
		svc, err := email.NewService(email.Config{
			Host:     host,
			Port:     viper.GetInt("notify.email.port"),
			Username: viper.GetString("notify.email.username"),
			Password: viper.GetString("notify.email.password"),
			To:       viper.GetString("notify.email.to"),
		})
		if err != nil {
			panic(fmt.Errorf("notify.email config: %w", err))
		}
		return svc
	}

	if token := viper.GetString("notify.telegram.token"); token != "" {
		bot, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			panic(fmt.Errorf("notify.telegram: %w", err))
		}
		chatID := viper.GetInt64("notify.telegram.chat_id")
		if chatID == 0 {
			panic("notify.telegram.chat_id not set")
		}
		return telegram.NewService(bot, chatID)
	}

	panic("no notification transport configured, set notify.email or notify.telegram")
}
