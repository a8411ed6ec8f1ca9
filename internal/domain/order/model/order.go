package model

import (
	"strings"
	"time"

	baseModel "mini_shop/pkg/model"

	"github.com/shopspring/decimal"
)

// 退货状态，空字符串表示未申请退货
const (
	ReturnNone     = ""
	ReturnPending  = "pending"
	ReturnReturned = "returned"
	ReturnRejected = "rejected"
)

// Order 订单
type Order struct {
	baseModel.BaseModel
	UserID          uint            `gorm:"index;not null" json:"userId"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Date            time.Time       `gorm:"not null;index" json:"date"`
	ShippingAddress ShippingAddress `gorm:"serializer:json;type:text" json:"shippingAddress"`
	PaymentInfo     PaymentInfo     `gorm:"serializer:json;type:text" json:"paymentInfo"`

	ReturnStatus           string     `gorm:"size:16;index" json:"returnStatus,omitempty"`
	ReturnRequestDate      *time.Time `json:"returnRequestDate,omitempty"`
	ReturnReason           string     `gorm:"size:500" json:"returnReason,omitempty"`
	ReturnDate             *time.Time `json:"returnDate,omitempty"`
	ReturnRejectedDate     *time.Time `json:"returnRejectedDate,omitempty"`
	ReturnNotificationRead bool       `gorm:"not null;default:false" json:"returnNotificationRead"`
}

// OrderItem 订单行，JSON 中的 id 为商品 ID
type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   uint            `gorm:"index;not null" json:"-"`
	ProductID uint            `gorm:"index;not null" json:"id"`
	Name      string          `gorm:"size:200" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

type ShippingAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// PaymentInfo 只保存脱敏后的卡号
type PaymentInfo struct {
	Card string `json:"card"`
}

// ContainsProduct 订单中是否包含指定商品
func (o *Order) ContainsProduct(productID uint) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// MaskCard 只保留卡号后四位
func MaskCard(card string) string {
	digits := make([]rune, 0, len(card))
	for _, r := range card {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return strings.Repeat("*", len(card))
	}
	return "**** **** **** " + string(digits[len(digits)-4:])
}
