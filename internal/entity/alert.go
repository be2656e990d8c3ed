package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertRecord 告警记录, 只追加, 除 Notified 外不再修改
type AlertRecord struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	Symbol    string `gorm:"index;size:16"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8)"`
	AlertType string `gorm:"index;size:20"` // upper / lower / change
	Message   string `gorm:"size:200"`
	Notified  bool
	CreatedAt time.Time `gorm:"index"`
}

const (
	AlertTypeUpper  = "upper"
	AlertTypeLower  = "lower"
	AlertTypeChange = "change"
)
