package repo

import (
	"github.com/KNICEX/trade-alert/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.StockMonitor{}, &entity.AlertRecord{})
}
