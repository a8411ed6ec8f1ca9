package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mini_shop/internal/domain/order/model"
	"mini_shop/internal/domain/order/repository"
	"mini_shop/pkg/apperr"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IsReturnEligible 下单后整天数不超过 windowDays 时可以退货，第 windowDays 天当天仍可申请
func IsReturnEligible(orderDate, now time.Time, windowDays int) bool {
	days := int(now.Sub(orderDate) / (24 * time.Hour))
	return days <= windowDays
}

func (s *orderService) IsReturnEligible(date time.Time) bool {
	return IsReturnEligible(date, s.now(), s.opts.ReturnWindowDays)
}

// RequestReturn 用户申请退货：none -> pending
func (s *orderService) RequestReturn(ctx context.Context, id, userID uint, reason string) (*model.Order, error) {
	order, err := s.orders.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := requestable(order); err != nil {
		return nil, err
	}
	now := s.now()
	if !IsReturnEligible(order.Date, now, s.opts.ReturnWindowDays) {
		return nil, apperr.Newf(apperr.ErrExpiredWindow, "Return window has expired (%d days)", s.opts.ReturnWindowDays)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = s.opts.DefaultReturnReason
	}

	ok, err := s.orders.TransitionReturn(ctx, id, model.ReturnNone, map[string]interface{}{
		"return_status":            model.ReturnPending,
		"return_request_date":      now,
		"return_reason":            reason,
		"return_notification_read": false,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// 并发请求已经改变了状态
		return nil, s.reloadForError(ctx, id, requestable)
	}

	s.metrics.RecordReturnTransition(model.ReturnPending)
	s.log.Info("return requested", zap.Uint("order_id", id), zap.Uint("user_id", userID), zap.String("reason", reason))
	return s.orders.GetByID(ctx, id)
}

// ApproveReturn 管理员同意退货：pending -> returned，并归还每个订单行的库存
func (s *orderService) ApproveReturn(ctx context.Context, id uint) (*model.Order, error) {
	var order *model.Order
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		oRepo := s.orders.WithTx(tx)
		pRepo := s.products.WithTx(tx)

		ok, err := oRepo.TransitionReturn(ctx, id, model.ReturnPending, map[string]interface{}{
			"return_status":            model.ReturnReturned,
			"return_date":              s.now(),
			"return_notification_read": false,
		})
		if err != nil {
			return err
		}
		if !ok {
			return reloadForError(ctx, oRepo, id, resolvable)
		}

		order, err = oRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range order.Items {
			quantity := item.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			if err := pRepo.IncreaseStock(ctx, item.ProductID, quantity); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					// 商品已下架，跳过
					s.log.Warn("returned product no longer exists",
						zap.Uint("order_id", id), zap.Uint("product_id", item.ProductID))
					continue
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.catalog.Invalidate(ctx)
	s.metrics.RecordReturnTransition(model.ReturnReturned)
	s.log.Info("return approved", zap.Uint("order_id", id), zap.Int("items", len(order.Items)))
	return order, nil
}

// RejectReturn 管理员拒绝退货：pending -> rejected，库存不变
func (s *orderService) RejectReturn(ctx context.Context, id uint) (*model.Order, error) {
	ok, err := s.orders.TransitionReturn(ctx, id, model.ReturnPending, map[string]interface{}{
		"return_status":            model.ReturnRejected,
		"return_rejected_date":     s.now(),
		"return_notification_read": false,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.reloadForError(ctx, id, resolvable)
	}

	s.metrics.RecordReturnTransition(model.ReturnRejected)
	s.log.Info("return rejected", zap.Uint("order_id", id))
	return s.orders.GetByID(ctx, id)
}

func (s *orderService) PendingReturns(ctx context.Context) ([]model.Order, error) {
	return s.orders.ListByReturnStatus(ctx, model.ReturnPending)
}

// requestable 只有未申请过退货的订单可以申请
func requestable(o *model.Order) error {
	switch o.ReturnStatus {
	case model.ReturnNone:
		return nil
	case model.ReturnPending:
		return apperr.New(apperr.ErrInvalidState, "Return request already pending")
	case model.ReturnReturned:
		return apperr.New(apperr.ErrInvalidState, "Order has already been returned")
	default:
		return apperr.New(apperr.ErrInvalidState, "Return request was already rejected")
	}
}

// resolvable 只有审核中的退货可以被处理
func resolvable(o *model.Order) error {
	if o.ReturnStatus != model.ReturnPending {
		return apperr.New(apperr.ErrInvalidState, "Return request is not pending")
	}
	return nil
}

func (s *orderService) reloadForError(ctx context.Context, id uint, check func(*model.Order) error) error {
	return reloadForError(ctx, s.orders, id, check)
}

// reloadForError 条件更新未命中时重新读取订单，区分不存在与状态不合法
func reloadForError(ctx context.Context, repo repository.OrderRepository, id uint, check func(*model.Order) error) error {
	order, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := check(order); err != nil {
		return err
	}
	return apperr.New(apperr.ErrInvalidState, "Order changed concurrently, please retry")
}
