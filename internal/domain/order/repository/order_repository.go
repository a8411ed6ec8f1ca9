package repository

import (
	"context"
	"errors"
	"fmt"

	"mini_shop/internal/domain/order/model"
	"mini_shop/pkg/apperr"

	"gorm.io/gorm"
)

type OrderRepository interface {
	// WithTx 返回绑定到事务的仓库
	WithTx(tx *gorm.DB) OrderRepository
	// Create 同时写入订单行
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uint) (*model.Order, error)
	// GetByIDForUser 订单不存在或不属于该用户时都返回 NotFound
	GetByIDForUser(ctx context.Context, id, userID uint) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Order, error)
	ListByReturnStatus(ctx context.Context, status string) ([]model.Order, error)
	// ListUnreadReturnResults 已处理且未读的退货结果
	ListUnreadReturnResults(ctx context.Context, userID uint) ([]model.Order, error)
	UpdateDetails(ctx context.Context, order *model.Order) error
	// TransitionReturn 仅当当前退货状态等于 from 时写入 updates，返回是否命中
	TransitionReturn(ctx context.Context, id uint, from string, updates map[string]interface{}) (bool, error)
	MarkReturnNotificationRead(ctx context.Context, id, userID uint) error
	// DeleteUnlessPending 删除订单及订单行，退货审核中的订单不会被删除
	DeleteUnlessPending(ctx context.Context, id, userID uint) (bool, error)
	HasPurchased(ctx context.Context, userID, productID uint) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloaded(ctx).First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (r *orderRepository) GetByIDForUser(ctx context.Context, id, userID uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloaded(ctx).Where("user_id = ?", userID).First(&order, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// ListByUser 最新的订单在前
func (r *orderRepository) ListByUser(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloaded(ctx).Where("user_id = ?", userID).Order("date DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListByReturnStatus(ctx context.Context, status string) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloaded(ctx).Where("return_status = ?", status).Order("return_request_date ASC, id ASC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListUnreadReturnResults(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND return_status IN ? AND return_notification_read = ?",
			userID, []string{model.ReturnReturned, model.ReturnRejected}, false).
		Find(&orders).Error
	return orders, err
}

// UpdateDetails 只更新收货地址和支付信息
func (r *orderRepository) UpdateDetails(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Model(order).Select("shipping_address", "payment_info").Updates(order).Error
}

func (r *orderRepository) TransitionReturn(ctx context.Context, id uint, from string, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND return_status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) MarkReturnNotificationRead(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("return_notification_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "Order not found")
	}
	return nil
}

func (r *orderRepository) DeleteUnlessPending(ctx context.Context, id, userID uint) (bool, error) {
	db := r.db.WithContext(ctx)
	result := db.Where("id = ? AND user_id = ? AND return_status <> ?", id, userID, model.ReturnPending).
		Delete(&model.Order{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	if err := db.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return false, fmt.Errorf("delete order items: %w", err)
	}
	return true, nil
}

func (r *orderRepository) HasPurchased(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.ErrNotFound, "Order not found")
	}
	return err
}
