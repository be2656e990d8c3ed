package repo

import (
	"context"

	"github.com/KNICEX/trade-alert/internal/entity"
	"gorm.io/gorm"
)

type AlertRepo interface {
	Create(ctx context.Context, alert entity.AlertRecord) (int64, error)
	MarkNotified(ctx context.Context, id int64) error
	FindBySymbol(ctx context.Context, symbol string) ([]entity.AlertRecord, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepo {
	return &alertRepo{
		db: db,
	}
}

func (r *alertRepo) Create(ctx context.Context, alert entity.AlertRecord) (int64, error) {
	err := r.db.WithContext(ctx).Create(&alert).Error
	if err != nil {
		return 0, err
	}
	return alert.Id, nil
}

func (r *alertRepo) MarkNotified(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Model(&entity.AlertRecord{}).Where("id = ?", id).Update("notified", true).Error
	if err != nil {
		return err
	}
	return nil
}

func (r *alertRepo) FindBySymbol(ctx context.Context, symbol string) ([]entity.AlertRecord, error) {
	var alerts []entity.AlertRecord
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).Order("id").Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}
