package binance

import (
	"context"
	"fmt"

	"github.com/KNICEX/trade-alert/internal/service/market"
	"github.com/KNICEX/trade-alert/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

var _ market.DataService = (*DataService)(nil)

type DataService struct {
	cli *binance.Client
}

// NewDataService 创建行情数据服务
func NewDataService(cli *binance.Client) *DataService {
	return &DataService{cli: cli}
}

func (s *DataService) ValidSymbol(ctx context.Context, symbol string) (bool, error) {
	res, err := s.cli.NewExchangeInfoService().Symbol(symbol).Do(ctx)
	if err != nil {
		// 未知交易对也以错误形式返回, 统一视为无效
		return false, nil
	}
	for _, info := range res.Symbols {
		if info.Symbol == symbol && info.Status == "TRADING" {
			return true, nil
		}
	}
	return false, nil
}

func (s *DataService) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := s.cli.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", market.ErrUnavailable, err)
	}
	if len(prices) == 0 {
		return decimal.Zero, market.ErrUnavailable
	}
	return decimal.NewFromString(prices[0].Price)
}

func (s *DataService) PriceChange(ctx context.Context, symbol string, days int) (market.Change, error) {
	klines, err := s.cli.NewKlinesService().
		Symbol(symbol).
		Interval("1d").
		Limit(days + 1).
		Do(ctx)
	if err != nil {
		return market.Change{}, fmt.Errorf("%w: %v", market.ErrUnavailable, err)
	}
	if len(klines) < days+1 {
		return market.Change{}, market.ErrUnavailable
	}

	prev, err := decimal.NewFromString(klines[len(klines)-1-days].Close)
	if err != nil {
		return market.Change{}, err
	}
	cur, err := decimal.NewFromString(klines[len(klines)-1].Close)
	if err != nil {
		return market.Change{}, err
	}
	return market.Change{
		Fraction: decimalx.FractionalChange(prev, cur),
		Price:    cur,
	}, nil
}
