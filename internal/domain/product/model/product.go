package model

import (
	baseModel "mini_shop/pkg/model"

	"github.com/shopspring/decimal"
)

// Product 商品
type Product struct {
	baseModel.BaseModel
	Name        string          `gorm:"size:200;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Description string          `gorm:"type:text" json:"description"`
	Stock       int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"` // 剩余库存
}
