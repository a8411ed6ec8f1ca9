package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"mini_shop/internal/domain/notification/model"
	orderModel "mini_shop/internal/domain/order/model"
	ticketModel "mini_shop/internal/domain/ticket/model"
	"mini_shop/pkg/apperr"
)

// ReturnSource 订单侧的通知来源
type ReturnSource interface {
	ListUnreadReturnResults(ctx context.Context, userID uint) ([]orderModel.Order, error)
	MarkReturnNotificationRead(ctx context.Context, id, userID uint) error
}

// TicketSource 工单侧的通知来源
type TicketSource interface {
	ListUnreadResults(ctx context.Context, userID uint) ([]ticketModel.Ticket, error)
	MarkNotificationRead(ctx context.Context, id, userID uint) error
}

type NotificationService interface {
	// ListNotifications 最新的在前
	ListNotifications(ctx context.Context, userID uint) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID uint, kind string, id uint) error
}

type notificationService struct {
	returns ReturnSource
	tickets TicketSource
}

func NewNotificationService(returns ReturnSource, tickets TicketSource) NotificationService {
	return &notificationService{returns: returns, tickets: tickets}
}

func (s *notificationService) ListNotifications(ctx context.Context, userID uint) ([]model.Notification, error) {
	orders, err := s.returns.ListUnreadReturnResults(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list return results: %w", err)
	}
	tickets, err := s.tickets.ListUnreadResults(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ticket results: %w", err)
	}

	notifications := make([]model.Notification, 0, len(orders)+len(tickets))
	for i := range orders {
		notifications = append(notifications, fromOrder(&orders[i]))
	}
	for i := range tickets {
		notifications = append(notifications, fromTicket(&tickets[i]))
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID uint, kind string, id uint) error {
	switch kind {
	case model.TypeReturn:
		return s.returns.MarkReturnNotificationRead(ctx, id, userID)
	case model.TypeTicket:
		return s.tickets.MarkNotificationRead(ctx, id, userID)
	default:
		return apperr.Newf(apperr.ErrInvalidParam, "Unknown notification type %q", kind)
	}
}

func fromOrder(o *orderModel.Order) model.Notification {
	title := "Return Rejected"
	createdAt := deref(o.ReturnRejectedDate)
	if o.ReturnStatus == orderModel.ReturnReturned {
		title = "Return Approved"
		createdAt = deref(o.ReturnDate)
	}
	return model.Notification{
		ID:        fmt.Sprintf("return-%d", o.ID),
		Type:      model.TypeReturn,
		Title:     title,
		Message:   fmt.Sprintf("Your return request for Order #%d has been %s", o.ID, o.ReturnStatus),
		Link:      fmt.Sprintf("/order/%d", o.ID),
		CreatedAt: createdAt,
		OrderID:   o.ID,
	}
}

func fromTicket(t *ticketModel.Ticket) model.Notification {
	createdAt := deref(t.ClosedAt)
	if t.Status == ticketModel.StatusResolved {
		createdAt = deref(t.ResolvedAt)
	}
	return model.Notification{
		ID:        fmt.Sprintf("ticket-%d", t.ID),
		Type:      model.TypeTicket,
		Title:     "Ticket " + t.Status,
		Message:   fmt.Sprintf("Your ticket %q has been %s", t.Subject, strings.ToLower(t.Status)),
		Link:      "/tickets",
		CreatedAt: createdAt,
		TicketID:  t.ID,
	}
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
