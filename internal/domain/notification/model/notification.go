package model

import "time"

const (
	TypeReturn = "return"
	TypeTicket = "ticket"
)

// Notification 由订单退货结果和工单处理结果实时计算得到，不落库
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
	OrderID   uint      `json:"orderId,omitempty"`
	TicketID  uint      `json:"ticketId,omitempty"`
}
