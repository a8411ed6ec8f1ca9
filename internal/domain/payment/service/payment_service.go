package service

import (
	"context"
	"fmt"

	"mini_shop/internal/domain/payment/model"
	"mini_shop/internal/domain/payment/repository"
	"mini_shop/internal/domain/payment/strategy"
	orderModel "mini_shop/internal/domain/order/model"
	"mini_shop/pkg/apperr"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderLookup 只允许为自己的订单付款
type OrderLookup interface {
	GetByIDForUser(ctx context.Context, id, userID uint) (*orderModel.Order, error)
}

type PayParams struct {
	OrderID uint
	Amount  *decimal.Decimal
	Method  string
}

type PaymentService interface {
	Pay(ctx context.Context, userID uint, params PayParams) (*model.Payment, error)
	RegisterStrategy(method string, strategy strategy.PaymentStrategy)
}

type paymentService struct {
	repo       repository.PaymentRepository
	orders     OrderLookup
	strategies map[string]strategy.PaymentStrategy
	log        *zap.Logger
}

func NewPaymentService(repo repository.PaymentRepository, orders OrderLookup, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:       repo,
		orders:     orders,
		strategies: make(map[string]strategy.PaymentStrategy),
		log:        log,
	}
}

// RegisterStrategy 注册支付策略
func (s *paymentService) RegisterStrategy(method string, strategy strategy.PaymentStrategy) {
	s.strategies[method] = strategy
}

func (s *paymentService) Pay(ctx context.Context, userID uint, params PayParams) (*model.Payment, error) {
	method := params.Method
	if method == "" {
		method = model.MethodCard
	}
	st, ok := s.strategies[method]
	if !ok {
		return nil, apperr.Newf(apperr.ErrInvalidParam, "Unsupported payment method %q", method)
	}

	order, err := s.orders.GetByIDForUser(ctx, params.OrderID, userID)
	if err != nil {
		return nil, err
	}

	// 未指定金额时按订单总额支付
	amount := order.Total
	if params.Amount != nil {
		if !params.Amount.IsPositive() {
			return nil, apperr.New(apperr.ErrInvalidParam, "Amount must be positive")
		}
		amount = params.Amount.Round(2)
	}

	txID, err := st.Pay(ctx, order.ID, amount)
	if err != nil {
		return nil, fmt.Errorf("pay order %d: %w", order.ID, err)
	}

	payment := &model.Payment{
		TransactionID: txID,
		OrderID:       order.ID,
		UserID:        userID,
		Amount:        amount,
		Method:        method,
		Status:        model.StatusSucceeded,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.log.Info("payment recorded",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("transaction_id", txID),
		zap.String("amount", amount.StringFixed(2)),
	)
	return payment, nil
}
