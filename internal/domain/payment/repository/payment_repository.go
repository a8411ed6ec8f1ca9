package repository

import (
	"context"

	"mini_shop/internal/domain/payment/model"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	ListByOrder(ctx context.Context, orderID uint) ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID uint) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&payments).Error
	return payments, err
}
