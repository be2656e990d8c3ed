package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMonitor 股票监控配置
type StockMonitor struct {
	Id         int64  `gorm:"primaryKey;autoIncrement"`
	Symbol     string `gorm:"uniqueIndex;size:16"`
	UpperPrice decimal.NullDecimal `gorm:"type:decimal(20,8)"`
	LowerPrice decimal.NullDecimal `gorm:"type:decimal(20,8)"`
	Active     bool `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
