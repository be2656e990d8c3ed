package market

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnavailable 行情暂时拿不到(休市/接口抖动), 属于正常情况, 调用方跳过本轮即可
var ErrUnavailable = errors.New("market data unavailable")

// Change 价格变动
type Change struct {
	Fraction decimal.Decimal // 最新收盘相对 N 个交易日前收盘的变动比例
	Price    decimal.Decimal // 最新收盘价
}

type DataService interface {
	// ValidSymbol 仅在添加监控时调用一次, 轮询过程中不再复查
	ValidSymbol(ctx context.Context, symbol string) (bool, error)
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	PriceChange(ctx context.Context, symbol string, days int) (Change, error)
}
