package model

import (
	baseModel "mini_shop/pkg/model"

	"github.com/shopspring/decimal"
)

const (
	StatusSucceeded = "succeeded"

	MethodCard = "card"
)

// Payment 支付流水
type Payment struct {
	baseModel.BaseModel
	TransactionID string          `gorm:"size:64;uniqueIndex;not null" json:"transactionId"`
	OrderID       uint            `gorm:"index;not null" json:"orderId"`
	UserID        uint            `gorm:"index;not null" json:"userId"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method        string          `gorm:"size:32;not null" json:"method"`
	Status        string          `gorm:"size:16;not null" json:"status"`
}
