package model

import (
	"time"

	baseModel "mini_shop/pkg/model"
)

const (
	StatusOpen     = "Open"
	StatusResolved = "Resolved"
	StatusClosed   = "Closed"
)

// Ticket 客服工单
type Ticket struct {
	baseModel.BaseModel
	UserID           uint       `gorm:"index;not null" json:"userId"`
	Subject          string     `gorm:"size:200;not null" json:"subject"`
	Description      string     `gorm:"type:text" json:"description"`
	Status           string     `gorm:"size:16;index;not null" json:"status"`
	ResolvedAt       *time.Time `json:"resolvedAt,omitempty"`
	ClosedAt         *time.Time `json:"closedAt,omitempty"`
	NotificationRead bool       `gorm:"not null;default:false" json:"notificationRead"`
}
