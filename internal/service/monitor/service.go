package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KNICEX/trade-alert/internal/entity"
	"github.com/KNICEX/trade-alert/internal/repo"
	"github.com/KNICEX/trade-alert/internal/service/market"
	"github.com/KNICEX/trade-alert/internal/service/notification"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DefaultChangeThreshold 日内涨跌幅告警阈值
var DefaultChangeThreshold = decimal.NewFromFloat(0.02)

type monitorService struct {
	monitorRepo repo.MonitorRepo
	alertRepo   repo.AlertRepo
	dataSvc     market.DataService
	notifier    notification.Notifier

	changeThreshold decimal.Decimal
}

type Option func(s *monitorService)

func WithNotifier(notifier notification.Notifier) Option {
	return func(s *monitorService) {
		s.notifier = notifier
	}
}

func WithChangeThreshold(threshold decimal.Decimal) Option {
	return func(s *monitorService) {
		s.changeThreshold = threshold
	}
}

func NewService(monitorRepo repo.MonitorRepo, alertRepo repo.AlertRepo, dataSvc market.DataService, opts ...Option) Service {
	svc := &monitorService{
		monitorRepo:     monitorRepo,
		alertRepo:       alertRepo,
		dataSvc:         dataSvc,
		notifier:        notification.NewConsoleNotifier(),
		changeThreshold: DefaultChangeThreshold,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// AddMonitor 添加或更新监控, 只在这里校验一次交易对有效性
func (s *monitorService) AddMonitor(ctx context.Context, symbol string, upper, lower decimal.NullDecimal) error {
	symbol = normalizeSymbol(symbol)
	ok, err := s.dataSvc.ValidSymbol(ctx, symbol)
	if err != nil {
		return fmt.Errorf("validate symbol %s: %w", symbol, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidSymbol, symbol)
	}
	return s.monitorRepo.Upsert(ctx, symbol, upper, lower)
}

func (s *monitorService) RemoveMonitor(ctx context.Context, symbol string) (bool, error) {
	return s.monitorRepo.Remove(ctx, normalizeSymbol(symbol))
}

func (s *monitorService) ListMonitors(ctx context.Context) ([]Monitor, error) {
	monitors, err := s.monitorRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(monitors, func(m entity.StockMonitor, index int) Monitor {
		return Monitor{
			Symbol:     m.Symbol,
			UpperPrice: m.UpperPrice,
			LowerPrice: m.LowerPrice,
			CreatedAt:  m.CreatedAt,
			UpdatedAt:  m.UpdatedAt,
		}
	}), nil
}

// CheckAll 按入库顺序串行评估, 单个监控出错不影响其余
func (s *monitorService) CheckAll(ctx context.Context) error {
	monitors, err := s.monitorRepo.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("load active monitors: %w", err)
	}
	for _, m := range monitors {
		s.checkSymbol(ctx, m)
	}
	return nil
}

func (s *monitorService) checkSymbol(ctx context.Context, m entity.StockMonitor) {
	price, err := s.dataSvc.CurrentPrice(ctx, m.Symbol)
	if err != nil {
		if errors.Is(err, market.ErrUnavailable) {
			slog.Info("price unavailable, skip", "symbol", m.Symbol)
		} else {
			slog.Error("failed to fetch price", "symbol", m.Symbol, "error", err)
		}
		return
	}

	// 三条规则互相独立, 同一轮内都基于这一次取到的价格
	if m.UpperPrice.Valid && price.GreaterThanOrEqual(m.UpperPrice.Decimal) {
		s.fireAlert(ctx, m.Symbol, price, entity.AlertTypeUpper,
			fmt.Sprintf("price %s breached upper bound %s", price, m.UpperPrice.Decimal))
	}
	if m.LowerPrice.Valid && price.LessThanOrEqual(m.LowerPrice.Decimal) {
		s.fireAlert(ctx, m.Symbol, price, entity.AlertTypeLower,
			fmt.Sprintf("price %s breached lower bound %s", price, m.LowerPrice.Decimal))
	}

	change, err := s.dataSvc.PriceChange(ctx, m.Symbol, 1)
	if err != nil {
		if errors.Is(err, market.ErrUnavailable) {
			slog.Info("price change unavailable, skip", "symbol", m.Symbol)
		} else {
			slog.Error("failed to fetch price change", "symbol", m.Symbol, "error", err)
		}
		return
	}
	if change.Fraction.Abs().GreaterThanOrEqual(s.changeThreshold) {
		s.fireAlert(ctx, m.Symbol, price, entity.AlertTypeChange,
			fmt.Sprintf("price moved %s%% in a day, threshold %s%%",
				change.Fraction.Mul(decimal.NewFromInt(100)).StringFixed(2),
				s.changeThreshold.Mul(decimal.NewFromInt(100)).StringFixed(2)))
	}
}

// fireAlert 先落库(notified=false), 投递成功后再标记, 投递失败不重试
func (s *monitorService) fireAlert(ctx context.Context, symbol string, price decimal.Decimal, kind, message string) {
	now := time.Now()
	id, err := s.alertRepo.Create(ctx, entity.AlertRecord{
		Symbol:    symbol,
		Price:     price,
		AlertType: kind,
		Message:   message,
		CreatedAt: now,
	})
	if err != nil {
		slog.Error("failed to save alert", "symbol", symbol, "kind", kind, "error", err)
		return
	}

	err = s.notifier.Notify(ctx, notification.Alert{
		Symbol:    symbol,
		Price:     price,
		Kind:      kind,
		Message:   message,
		Timestamp: now,
	})
	if err != nil {
		slog.Error("failed to dispatch alert", "id", id, "symbol", symbol, "kind", kind, "error", err)
		return
	}

	if err = s.alertRepo.MarkNotified(ctx, id); err != nil {
		slog.Error("failed to mark alert notified", "id", id, "error", err)
	}
}
