package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Alert 待投递的告警内容
type Alert struct {
	Symbol    string
	Price     decimal.Decimal
	Kind      string // upper / lower / change
	Message   string
	Timestamp time.Time
}

type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
	NotifyTest(ctx context.Context) error
}

type consoleNotifier struct {
}

// NewConsoleNotifier 控制台兜底通知, 用于未配置真实通道的场景
func NewConsoleNotifier() Notifier {
	return consoleNotifier{}
}

func (c consoleNotifier) Notify(ctx context.Context, alert Alert) error {
	fmt.Printf("[ALERT] %s %s price=%s %s\n", alert.Symbol, alert.Kind, alert.Price, alert.Message)
	return nil
}

func (c consoleNotifier) NotifyTest(ctx context.Context) error {
	fmt.Println("[ALERT] test notification")
	return nil
}
