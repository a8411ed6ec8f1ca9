package service

import (
	"context"
	"errors"
	"testing"

	orderModel "mini_shop/internal/domain/order/model"
	"mini_shop/internal/domain/payment/model"
	"mini_shop/internal/domain/payment/repository"
	"mini_shop/internal/domain/payment/strategy"
	"mini_shop/pkg/apperr"
	"mini_shop/pkg/database"
	baseModel "mini_shop/pkg/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOrderLookup struct {
	mock.Mock
}

func (m *MockOrderLookup) GetByIDForUser(ctx context.Context, id, userID uint) (*orderModel.Order, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

type failingStrategy struct{}

func (failingStrategy) Pay(context.Context, uint, decimal.Decimal) (string, error) {
	return "", errors.New("gateway down")
}

func newTestService(t *testing.T, orders OrderLookup) (PaymentService, repository.PaymentRepository) {
	db, err := database.NewMemory(false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Payment{}))

	repo := repository.NewPaymentRepository(db)
	svc := NewPaymentService(repo, orders, zap.NewNop())
	svc.RegisterStrategy(model.MethodCard, strategy.NewStubStrategy())
	return svc, repo
}

func TestPay(t *testing.T) {
	ctx := context.Background()
	order := &orderModel.Order{BaseModel: baseModel.BaseModel{ID: 5}, UserID: 2, Total: decimal.RequireFromString("42.50")}

	t.Run("Defaults to order total", func(t *testing.T) {
		orders := new(MockOrderLookup)
		orders.On("GetByIDForUser", ctx, uint(5), uint(2)).Return(order, nil)
		svc, repo := newTestService(t, orders)

		payment, err := svc.Pay(ctx, 2, PayParams{OrderID: 5})
		require.NoError(t, err)
		_, err = uuid.Parse(payment.TransactionID)
		assert.NoError(t, err)
		assert.Equal(t, "42.50", payment.Amount.StringFixed(2))
		assert.Equal(t, model.MethodCard, payment.Method)

		stored, err := repo.ListByOrder(ctx, 5)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, payment.TransactionID, stored[0].TransactionID)
	})

	t.Run("Explicit amount", func(t *testing.T) {
		orders := new(MockOrderLookup)
		orders.On("GetByIDForUser", ctx, uint(5), uint(2)).Return(order, nil)
		svc, _ := newTestService(t, orders)

		amount := decimal.RequireFromString("10.005")
		payment, err := svc.Pay(ctx, 2, PayParams{OrderID: 5, Amount: &amount, Method: model.MethodCard})
		require.NoError(t, err)
		assert.Equal(t, "10.01", payment.Amount.StringFixed(2))
	})

	t.Run("Foreign order", func(t *testing.T) {
		orders := new(MockOrderLookup)
		orders.On("GetByIDForUser", ctx, uint(5), uint(3)).Return(nil, apperr.New(apperr.ErrNotFound, "Order not found"))
		svc, repo := newTestService(t, orders)

		_, err := svc.Pay(ctx, 3, PayParams{OrderID: 5})
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		stored, err := repo.ListByOrder(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("Unsupported method", func(t *testing.T) {
		orders := new(MockOrderLookup)
		svc, _ := newTestService(t, orders)

		_, err := svc.Pay(ctx, 2, PayParams{OrderID: 5, Method: "bitcoin"})
		assert.ErrorIs(t, err, apperr.ErrInvalidParam)
		orders.AssertNotCalled(t, "GetByIDForUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Non-positive amount", func(t *testing.T) {
		orders := new(MockOrderLookup)
		orders.On("GetByIDForUser", ctx, uint(5), uint(2)).Return(order, nil)
		svc, _ := newTestService(t, orders)

		zero := decimal.Zero
		_, err := svc.Pay(ctx, 2, PayParams{OrderID: 5, Amount: &zero})
		assert.ErrorIs(t, err, apperr.ErrInvalidParam)
	})

	t.Run("Strategy failure records nothing", func(t *testing.T) {
		orders := new(MockOrderLookup)
		orders.On("GetByIDForUser", ctx, uint(5), uint(2)).Return(order, nil)
		svc, repo := newTestService(t, orders)
		svc.RegisterStrategy("flaky", failingStrategy{})

		_, err := svc.Pay(ctx, 2, PayParams{OrderID: 5, Method: "flaky"})
		assert.EqualError(t, err, "pay order 5: gateway down")

		stored, err := repo.ListByOrder(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}
