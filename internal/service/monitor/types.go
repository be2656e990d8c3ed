package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidSymbol = errors.New("invalid symbol")

// Monitor 对外展示的监控配置
type Monitor struct {
	Symbol     string
	UpperPrice decimal.NullDecimal
	LowerPrice decimal.NullDecimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Service 股票监控服务接口
type Service interface {
	AddMonitor(ctx context.Context, symbol string, upper, lower decimal.NullDecimal) error
	RemoveMonitor(ctx context.Context, symbol string) (bool, error)
	ListMonitors(ctx context.Context) ([]Monitor, error)
	// CheckAll 对所有激活的监控执行一轮规则评估
	CheckAll(ctx context.Context) error
}
