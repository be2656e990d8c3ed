package monitor

import (
	"context"
	"fmt"
	"testing"

	"github.com/KNICEX/trade-alert/internal/repo"
	"github.com/KNICEX/trade-alert/internal/service/market"
	"github.com/KNICEX/trade-alert/internal/service/notification"
	"github.com/KNICEX/trade-alert/pkg/decimalx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ============ Mock 定义 ============

type MockDataService struct {
	mock.Mock
}

func (m *MockDataService) ValidSymbol(ctx context.Context, symbol string) (bool, error) {
	args := m.Called(ctx, symbol)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataService) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDataService) PriceChange(ctx context.Context, symbol string, days int) (market.Change, error) {
	args := m.Called(ctx, symbol, days)
	return args.Get(0).(market.Change), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, alert notification.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockNotifier) NotifyTest(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ============ 测试环境 ============

type testEnv struct {
	svc         Service
	monitorRepo repo.MonitorRepo
	alertRepo   repo.AlertRepo
	dataSvc     *MockDataService
	notifier    *MockNotifier
}

func initTestEnv(t *testing.T) *testEnv {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repo.InitTables(db))

	env := &testEnv{
		monitorRepo: repo.NewMonitorRepo(db),
		alertRepo:   repo.NewAlertRepo(db),
		dataSvc:     new(MockDataService),
		notifier:    new(MockNotifier),
	}
	env.svc = NewService(env.monitorRepo, env.alertRepo, env.dataSvc,
		WithNotifier(env.notifier))
	return env
}

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimalx.MustFromString(s), Valid: true}
}

func price(s string) decimal.Decimal {
	return decimalx.MustFromString(s)
}

func flatChange() market.Change {
	return market.Change{Fraction: decimal.NewFromFloat(0.001)}
}

// ============ AddMonitor ============

func TestAddMonitor_InvalidSymbol(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	env.dataSvc.On("ValidSymbol", mock.Anything, "FAKE").Return(false, nil)

	err := env.svc.AddMonitor(ctx, "fake", nd("100"), decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrInvalidSymbol)

	monitors, err := env.svc.ListMonitors(ctx)
	require.NoError(t, err)
	assert.Empty(t, monitors)
}

func TestAddMonitor_NormalizeAndUpsert(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	env.dataSvc.On("ValidSymbol", mock.Anything, "XYZ").Return(true, nil)

	require.NoError(t, env.svc.AddMonitor(ctx, " xyz ", nd("100"), nd("80")))
	require.NoError(t, env.svc.AddMonitor(ctx, "XYZ", nd("120"), nd("90")))

	monitors, err := env.svc.ListMonitors(ctx)
	require.NoError(t, err)
	require.Len(t, monitors, 1)
	assert.Equal(t, "XYZ", monitors[0].Symbol)
	assert.True(t, monitors[0].UpperPrice.Decimal.Equal(price("120")))
	assert.True(t, monitors[0].LowerPrice.Decimal.Equal(price("90")))
}

func TestRemoveMonitor_Missing(t *testing.T) {
	env := initTestEnv(t)

	ok, err := env.svc.RemoveMonitor(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, ok)
}

// ============ CheckAll ============

func TestCheckAll_NoAlertInsideBounds(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.monitorRepo.Upsert(ctx, "XYZ", nd("100"), nd("80")))

	env.dataSvc.On("CurrentPrice", mock.Anything, "XYZ").Return(price("90"), nil)
	env.dataSvc.On("PriceChange", mock.Anything, "XYZ", 1).Return(flatChange(), nil)

	require.NoError(t, env.svc.CheckAll(ctx))

	alerts, err := env.alertRepo.FindBySymbol(ctx, "XYZ")
	require.NoError(t, err)
	assert.Empty(t, alerts)
	env.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCheckAll_UpperBreach(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.monitorRepo.Upsert(ctx, "XYZ", nd("100"), nd("80")))

	env.dataSvc.On("CurrentPrice", mock.Anything, "XYZ").Return(price("105"), nil)
	env.dataSvc.On("PriceChange", mock.Anything, "XYZ", 1).Return(flatChange(), nil)
	env.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(a notification.Alert) bool {
		return a.Symbol == "XYZ" && a.Kind == "upper" && a.Price.Equal(price("105"))
	})).Return(nil)

	require.NoError(t, env.svc.CheckAll(ctx))

	alerts, err := env.alertRepo.FindBySymbol(ctx, "XYZ")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "upper", alerts[0].AlertType)
	assert.True(t, alerts[0].Price.Equal(price("105")))
	assert.True(t, alerts[0].Notified)
	env.notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestCheckAll_LowerBoundaryInclusive(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.monitorRepo.Upsert(ctx, "XYZ", decimal.NullDecimal{}, nd("80")))

	env.dataSvc.On("CurrentPrice", mock.Anything, "XYZ").Return(price("80"), nil)
	env.dataSvc.On("PriceChange", mock.Anything, "XYZ", 1).Return(flatChange(), nil)
	env.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, env.svc.CheckAll(ctx))

	alerts, err := env.alertRepo.FindBySymbol(ctx, "XYZ")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "lower", alerts[0].AlertType)
}

func TestCheckAll_ChangeBoundaryInclusive(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.monitorRepo.Upsert(ctx, "XYZ", decimal.NullDecimal{}, decimal.NullDecimal{}))

	env.dataSvc.On("CurrentPrice", mock.Anything, "XYZ").Return(price("50"), nil)
	// 恰好等于默认阈值 0.02, 按 >= 触发
	env.dataSvc.On("PriceChange", mock.Anything, "XYZ", 1).
		Return(market.Change{Fraction: decimal.NewFromFloat(-0.02), Price: price("50")}, nil)
	env.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, env.svc.CheckAll(ctx))

	alerts, err := env.alertRepo.FindBySymbol(ctx, "XYZ")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "change", alerts[0].AlertType)
}

func TestCheckAll_MultipleRulesSameTick(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.monitorRepo.Upsert(ctx, "XYZ", nd("100"), decimal.NullDecimal{}))

	env.dataSvc.On("CurrentPrice", mock.Anything, "XYZ").Return(price("105"), nil)
	env.dataSvc.On("PriceChange", mock.Anything, "XYZ", 1).
		Return(market.Change{Fraction: decimal.NewFromFloat(0.05), Price: price("105")}, nil)
	env.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, env.svc.CheckAll(ctx))

	alerts, err := env.alertRepo.FindBySymbol(ctx, "XYZ")
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "upper", alerts[0].AlertType)
	assert.Equal(t, "change", alerts[1].AlertType)
}

func TestCheckAll_UnavailableSkipsSymbol(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.monitorRepo.Upsert(ctx, "ABC", nd("10"), decimal.NullDecimal{}))
	require.NoError(t, env.monitorRepo.Upsert(ctx, "XYZ", nd("100"), decimal.NullDecimal{}))

	env.dataSvc.On("CurrentPrice", mock.Anything, "ABC").Return(decimal.Zero, market.ErrUnavailable)
	env.dataSvc.On("CurrentPrice", mock.Anything, "XYZ").Return(price("105"), nil)
	env.dataSvc.On("PriceChange", mock.Anything, "XYZ", 1).Return(flatChange(), nil)
	env.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, env.svc.CheckAll(ctx))

	alerts, err := env.alertRepo.FindBySymbol(ctx, "ABC")
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// 后续监控不受影响
	alerts, err = env.alertRepo.FindBySymbol(ctx, "XYZ")
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestCheckAll_NotifyFailureKeepsRecord(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.monitorRepo.Upsert(ctx, "XYZ", nd("100"), decimal.NullDecimal{}))

	env.dataSvc.On("CurrentPrice", mock.Anything, "XYZ").Return(price("105"), nil)
	env.dataSvc.On("PriceChange", mock.Anything, "XYZ", 1).Return(flatChange(), nil)
	env.notifier.On("Notify", mock.Anything, mock.Anything).Return(fmt.Errorf("smtp down"))

	require.NoError(t, env.svc.CheckAll(ctx))

	alerts, err := env.alertRepo.FindBySymbol(ctx, "XYZ")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].Notified)
}

func TestCheckAll_RepeatedTicksNoDedup(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.monitorRepo.Upsert(ctx, "XYZ", nd("100"), decimal.NullDecimal{}))

	env.dataSvc.On("CurrentPrice", mock.Anything, "XYZ").Return(price("105"), nil)
	env.dataSvc.On("PriceChange", mock.Anything, "XYZ", 1).Return(flatChange(), nil)
	env.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, env.svc.CheckAll(ctx))
	require.NoError(t, env.svc.CheckAll(ctx))

	alerts, err := env.alertRepo.FindBySymbol(ctx, "XYZ")
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestCheckAll_CustomThreshold(t *testing.T) {
	env := initTestEnv(t)
	ctx := context.Background()
	svc := NewService(env.monitorRepo, env.alertRepo, env.dataSvc,
		WithNotifier(env.notifier),
		WithChangeThreshold(decimal.NewFromFloat(0.1)))
	require.NoError(t, env.monitorRepo.Upsert(ctx, "XYZ", decimal.NullDecimal{}, decimal.NullDecimal{}))

	env.dataSvc.On("CurrentPrice", mock.Anything, "XYZ").Return(price("50"), nil)
	env.dataSvc.On("PriceChange", mock.Anything, "XYZ", 1).
		Return(market.Change{Fraction: decimal.NewFromFloat(0.05), Price: price("50")}, nil)

	require.NoError(t, svc.CheckAll(ctx))

	alerts, err := env.alertRepo.FindBySymbol(ctx, "XYZ")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestCheckTask(t *testing.T) {
	env := initTestEnv(t)
	task := NewCheckTask(env.svc)
	assert.NotEmpty(t, task.Name())
	// 空监控列表, 一轮直接结束
	assert.NoError(t, task.Run(context.Background()))
}
