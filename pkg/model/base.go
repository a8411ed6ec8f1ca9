package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseModel 基础模型，自增主键保证 ID 顺序分配
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func init() {
	// 金额在 JSON 中以数字输出，与前端约定一致
	decimal.MarshalJSONWithoutQuotes = true
}
