package model

import (
	"time"

	baseModel "mini_shop/pkg/model"
)

// Review 商品评价
type Review struct {
	baseModel.BaseModel
	ProductID uint      `gorm:"index;not null" json:"productId"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Date      time.Time `gorm:"not null" json:"date"`
}

// ReviewView 列表展示用，附带评价人用户名
type ReviewView struct {
	Review
	Username string `json:"username"`
}
