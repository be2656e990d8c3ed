package repo

import (
	"context"
	"time"

	"github.com/KNICEX/trade-alert/internal/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MonitorRepo interface {
	Upsert(ctx context.Context, symbol string, upper, lower decimal.NullDecimal) error
	Remove(ctx context.Context, symbol string) (bool, error)
	FindActive(ctx context.Context) ([]entity.StockMonitor, error)
	FindBySymbol(ctx context.Context, symbol string) (entity.StockMonitor, error)
}

type monitorRepo struct {
	db *gorm.DB
}

func NewMonitorRepo(db *gorm.DB) MonitorRepo {
	return &monitorRepo{
		db: db,
	}
}

// Upsert symbol 唯一, 已存在则原地更新阈值并重新激活
func (r *monitorRepo) Upsert(ctx context.Context, symbol string, upper, lower decimal.NullDecimal) error {
	now := time.Now()
	monitor := entity.StockMonitor{
		Symbol:     symbol,
		UpperPrice: upper,
		LowerPrice: lower,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"upper_price", "lower_price", "active", "updated_at"}),
	}).Create(&monitor).Error
}

func (r *monitorRepo) Remove(ctx context.Context, symbol string) (bool, error) {
	res := r.db.WithContext(ctx).Where("symbol = ?", symbol).Delete(&entity.StockMonitor{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *monitorRepo) FindActive(ctx context.Context) ([]entity.StockMonitor, error) {
	var monitors []entity.StockMonitor
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&monitors).Error
	if err != nil {
		return nil, err
	}
	return monitors, nil
}

func (r *monitorRepo) FindBySymbol(ctx context.Context, symbol string) (entity.StockMonitor, error) {
	var monitor entity.StockMonitor
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&monitor).Error
	if err != nil {
		return entity.StockMonitor{}, err
	}
	return monitor, nil
}
