package service

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mini_shop/internal/domain/order/model"
	"mini_shop/internal/domain/order/repository"
	productModel "mini_shop/internal/domain/product/model"
	productRepo "mini_shop/internal/domain/product/repository"
	productService "mini_shop/internal/domain/product/service"
	"mini_shop/pkg/apperr"
	"mini_shop/pkg/cache"
	"mini_shop/pkg/database"
	"mini_shop/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc      OrderService
	orders   repository.OrderRepository
	products productRepo.ProductRepository
	clock    *clock
}

var ctx = context.Background()

const (
	alice uint = 1
	bob   uint = 2
)

func newFixture(t *testing.T) *fixture {
	db, err := database.NewMemory(false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&productModel.Product{}, &model.Order{}, &model.OrderItem{}))

	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	orders := repository.NewOrderRepository(db)
	products := productRepo.NewProductRepository(db)
	m := metrics.NewMetricsCollector(prometheus.NewRegistry())
	catalog := productService.NewCatalogCache(cache.NewMemoryCache(), m, zap.NewNop())

	svc := NewOrderService(orders, products, database.NewTransactor(db), catalog, m, zap.NewNop(),
		Options{ReturnWindowDays: 30, DefaultReturnReason: "No reason provided"}, c.Now)
	return &fixture{svc: svc, orders: orders, products: products, clock: c}
}

func (f *fixture) product(t *testing.T, name string, stock int) *productModel.Product {
	p := &productModel.Product{Name: name, Price: decimal.RequireFromString("10.50"), Stock: stock}
	require.NoError(t, f.products.Create(ctx, p))
	return p
}

func (f *fixture) stock(t *testing.T, id uint) int {
	p, err := f.products.GetByID(ctx, id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) buy(t *testing.T, userID uint, p *productModel.Product, quantity int) *model.Order {
	o, err := f.svc.CreateOrder(ctx, userID, CreateParams{
		Items: []ItemInput{{ProductID: p.ID, Quantity: quantity}},
	})
	require.NoError(t, err)
	return o
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	lamp := f.product(t, "Lamp", 5)
	desk := f.product(t, "Desk", 2)

	order, err := f.svc.CreateOrder(ctx, alice, CreateParams{
		Items: []ItemInput{
			{ProductID: lamp.ID, Quantity: 2},
			{ProductID: desk.ID, Name: "Desk (client)", Price: decimal.RequireFromString("99.99")},
		},
		ShippingAddress: model.ShippingAddress{Street: "1 Main St", City: "Springfield"},
		PaymentInfo:     model.PaymentInfo{Card: "4111 1111 1111 1234"},
	})
	require.NoError(t, err)

	assert.NotZero(t, order.ID)
	assert.Equal(t, alice, order.UserID)
	assert.Equal(t, f.clock.Now(), order.Date)
	assert.Equal(t, "**** **** **** 1234", order.PaymentInfo.Card)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Lamp", order.Items[0].Name)
	assert.Equal(t, 1, order.Items[1].Quantity, "quantity defaults to 1")
	assert.Equal(t, "Desk (client)", order.Items[1].Name)
	assert.Equal(t, "120.99", order.Total.StringFixed(2))

	assert.Equal(t, 3, f.stock(t, lamp.ID))
	assert.Equal(t, 1, f.stock(t, desk.ID))

	stored, err := f.svc.GetOrder(ctx, order.ID, alice)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "Springfield", stored.ShippingAddress.City)

	t.Run("Client total is kept", func(t *testing.T) {
		total := decimal.RequireFromString("5")
		o, err := f.svc.CreateOrder(ctx, alice, CreateParams{
			Items: []ItemInput{{ProductID: lamp.ID}},
			Total: &total,
		})
		require.NoError(t, err)
		assert.True(t, o.Total.Equal(total))
	})

	t.Run("Empty order rejected", func(t *testing.T) {
		_, err := f.svc.CreateOrder(ctx, alice, CreateParams{})
		assert.ErrorIs(t, err, apperr.ErrInvalidParam)
	})

	t.Run("Oversized quantities rejected without mutation", func(t *testing.T) {
		vase := f.product(t, "Vase", 3)

		cases := [][]ItemInput{
			{{ProductID: vase.ID, Quantity: math.MaxInt}, {ProductID: vase.ID, Quantity: 2}},
			{{ProductID: vase.ID, Quantity: MaxQuantity}, {ProductID: vase.ID, Quantity: 1}},
			{{ProductID: vase.ID, Quantity: MaxQuantity + 1}},
		}
		for _, items := range cases {
			_, err := f.svc.CreateOrder(ctx, bob, CreateParams{Items: items})
			assert.ErrorIs(t, err, apperr.ErrInvalidParam)
		}

		assert.Equal(t, 3, f.stock(t, vase.ID))
		orders, err := f.svc.ListOrders(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("Unknown product", func(t *testing.T) {
		_, err := f.svc.CreateOrder(ctx, alice, CreateParams{Items: []ItemInput{{ProductID: 999}}})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestCreateOrderInsufficientStockLeavesStockUnchanged(t *testing.T) {
	f := newFixture(t)
	lamp := f.product(t, "Lamp", 5)
	desk := f.product(t, "Desk", 1)

	_, err := f.svc.CreateOrder(ctx, alice, CreateParams{
		Items: []ItemInput{
			{ProductID: lamp.ID, Quantity: 2},
			{ProductID: desk.ID, Quantity: 3},
		},
	})

	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, "Only 1 in stock for Desk", err.Error())
	assert.Equal(t, 5, f.stock(t, lamp.ID))
	assert.Equal(t, 1, f.stock(t, desk.ID))

	orders, err := f.svc.ListOrders(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, orders)

	t.Run("Repeated lines are summed", func(t *testing.T) {
		_, err := f.svc.CreateOrder(ctx, alice, CreateParams{
			Items: []ItemInput{
				{ProductID: lamp.ID, Quantity: 3},
				{ProductID: lamp.ID, Quantity: 3},
			},
		})
		assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
		assert.Equal(t, 5, f.stock(t, lamp.ID))
	})
}

func TestSequentialOrdersExhaustStock(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 3)

	f.buy(t, alice, widget, 2)
	assert.Equal(t, 1, f.stock(t, widget.ID))

	_, err := f.svc.CreateOrder(ctx, bob, CreateParams{Items: []ItemInput{{ProductID: widget.ID, Quantity: 2}}})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, "Only 1 in stock for Widget", err.Error())
	assert.Equal(t, 1, f.stock(t, widget.ID))
}

func TestConcurrentCheckoutNeverOversells(t *testing.T) {
	f := newFixture(t)
	widget := f.product(t, "Widget", 5)

	var wg sync.WaitGroup
	var succeeded, rejected int32
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := f.svc.CreateOrder(ctx, userID, CreateParams{Items: []ItemInput{{ProductID: widget.ID, Quantity: 1}}})
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case assert.ErrorIs(t, err, apperr.ErrInsufficientStock):
				atomic.AddInt32(&rejected, 1)
			}
		}(uint(i + 1))
	}
	wg.Wait()

	assert.Equal(t, int32(5), succeeded)
	assert.Equal(t, int32(7), rejected)
	assert.Equal(t, 0, f.stock(t, widget.ID))
}

func TestReturnWorkflow(t *testing.T) {
	f := newFixture(t)
	lamp := f.product(t, "Lamp", 7)

	t.Run("Approve restores stock", func(t *testing.T) {
		order := f.buy(t, alice, lamp, 2)
		require.Equal(t, 5, f.stock(t, lamp.ID))

		requested, err := f.svc.RequestReturn(ctx, order.ID, alice, "Too bright")
		require.NoError(t, err)
		assert.Equal(t, model.ReturnPending, requested.ReturnStatus)
		assert.Equal(t, "Too bright", requested.ReturnReason)
		require.NotNil(t, requested.ReturnRequestDate)
		assert.False(t, requested.ReturnNotificationRead)

		pending, err := f.svc.PendingReturns(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, order.ID, pending[0].ID)

		approved, err := f.svc.ApproveReturn(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReturnReturned, approved.ReturnStatus)
		assert.NotNil(t, approved.ReturnDate)
		assert.Equal(t, 7, f.stock(t, lamp.ID))

		_, err = f.svc.ApproveReturn(ctx, order.ID)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
		_, err = f.svc.RejectReturn(ctx, order.ID)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
		_, err = f.svc.RequestReturn(ctx, order.ID, alice, "again")
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
		assert.Equal(t, 7, f.stock(t, lamp.ID))
	})

	t.Run("Reject keeps stock", func(t *testing.T) {
		order := f.buy(t, alice, lamp, 1)
		_, err := f.svc.RequestReturn(ctx, order.ID, alice, "")
		require.NoError(t, err)

		rejected, err := f.svc.RejectReturn(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReturnRejected, rejected.ReturnStatus)
		assert.Equal(t, "No reason provided", rejected.ReturnReason)
		assert.NotNil(t, rejected.ReturnRejectedDate)
		assert.Equal(t, 6, f.stock(t, lamp.ID))

		_, err = f.svc.RequestReturn(ctx, order.ID, alice, "please")
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
		_, err = f.svc.ApproveReturn(ctx, order.ID)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
	})

	t.Run("Only pending returns can be resolved", func(t *testing.T) {
		order := f.buy(t, alice, lamp, 1)

		_, err := f.svc.ApproveReturn(ctx, order.ID)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
		_, err = f.svc.RejectReturn(ctx, order.ID)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)

		_, err = f.svc.RequestReturn(ctx, order.ID, alice, "x")
		require.NoError(t, err)
		_, err = f.svc.RequestReturn(ctx, order.ID, alice, "x")
		assert.ErrorIs(t, err, apperr.ErrInvalidState)

		_, err = f.svc.ApproveReturn(ctx, 999)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Orders of other users are not found", func(t *testing.T) {
		order := f.buy(t, alice, lamp, 1)

		_, err := f.svc.RequestReturn(ctx, order.ID, bob, "mine now")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = f.svc.RequestReturn(ctx, 999, alice, "")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestApproveReturnSkipsDeletedProduct(t *testing.T) {
	f := newFixture(t)
	lamp := f.product(t, "Lamp", 3)
	desk := f.product(t, "Desk", 3)

	order, err := f.svc.CreateOrder(ctx, alice, CreateParams{Items: []ItemInput{
		{ProductID: lamp.ID, Quantity: 1},
		{ProductID: desk.ID, Quantity: 2},
	}})
	require.NoError(t, err)
	_, err = f.svc.RequestReturn(ctx, order.ID, alice, "")
	require.NoError(t, err)
	require.NoError(t, f.products.Delete(ctx, lamp.ID))

	_, err = f.svc.ApproveReturn(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, desk.ID))
}

func TestReturnWindow(t *testing.T) {
	f := newFixture(t)
	lamp := f.product(t, "Lamp", 10)

	atBoundary := f.buy(t, alice, lamp, 1)
	lastHour := f.buy(t, alice, lamp, 1)
	expired := f.buy(t, alice, lamp, 1)

	f.clock.Advance(30 * 24 * time.Hour)
	_, err := f.svc.RequestReturn(ctx, atBoundary.ID, alice, "")
	assert.NoError(t, err, "exactly 30 days is still eligible")

	f.clock.Advance(23*time.Hour + 59*time.Minute)
	_, err = f.svc.RequestReturn(ctx, lastHour.ID, alice, "")
	assert.NoError(t, err, "30 whole days plus a partial day is still eligible")

	f.clock.Advance(time.Minute)
	_, err = f.svc.RequestReturn(ctx, expired.ID, alice, "")
	require.ErrorIs(t, err, apperr.ErrExpiredWindow)

	stored, err := f.svc.GetOrder(ctx, expired.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, model.ReturnNone, stored.ReturnStatus)
}

func TestIsReturnEligible(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"same day", base, true},
		{"29 days", base.Add(29 * 24 * time.Hour), true},
		{"30 days", base.Add(30 * 24 * time.Hour), true},
		{"30 days 23 hours", base.Add(30*24*time.Hour + 23*time.Hour), true},
		{"31 days", base.Add(31 * 24 * time.Hour), false},
		{"a year", base.AddDate(1, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReturnEligible(base, tt.now, 30))
		})
	}
}

func TestUpdateAndDeleteOrder(t *testing.T) {
	f := newFixture(t)
	lamp := f.product(t, "Lamp", 10)

	t.Run("Update only touches address and payment", func(t *testing.T) {
		order := f.buy(t, alice, lamp, 1)

		updated, err := f.svc.UpdateOrder(ctx, order.ID, alice, UpdateParams{
			ShippingAddress: &model.ShippingAddress{Street: "2 Side St", City: "Shelbyville"},
			PaymentInfo:     &model.PaymentInfo{Card: "5500000000009876"},
		})
		require.NoError(t, err)
		assert.Equal(t, "**** **** **** 9876", updated.PaymentInfo.Card)

		stored, err := f.svc.GetOrder(ctx, order.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, "Shelbyville", stored.ShippingAddress.City)
		assert.Equal(t, model.ReturnNone, stored.ReturnStatus)
		assert.True(t, stored.Total.Equal(order.Total))

		_, err = f.svc.UpdateOrder(ctx, order.ID, bob, UpdateParams{})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Delete does not restore stock", func(t *testing.T) {
		order := f.buy(t, alice, lamp, 2)
		before := f.stock(t, lamp.ID)

		assert.ErrorIs(t, f.svc.DeleteOrder(ctx, order.ID, bob), apperr.ErrNotFound)
		require.NoError(t, f.svc.DeleteOrder(ctx, order.ID, alice))

		_, err := f.svc.GetOrder(ctx, order.ID, alice)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Equal(t, before, f.stock(t, lamp.ID))
	})

	t.Run("Delete refused while return pending", func(t *testing.T) {
		order := f.buy(t, alice, lamp, 1)
		_, err := f.svc.RequestReturn(ctx, order.ID, alice, "")
		require.NoError(t, err)

		assert.ErrorIs(t, f.svc.DeleteOrder(ctx, order.ID, alice), apperr.ErrInvalidState)

		_, err = f.svc.RejectReturn(ctx, order.ID)
		require.NoError(t, err)
		assert.NoError(t, f.svc.DeleteOrder(ctx, order.ID, alice))
	})
}

func TestListOrdersNewestFirst(t *testing.T) {
	f := newFixture(t)
	lamp := f.product(t, "Lamp", 10)

	first := f.buy(t, alice, lamp, 1)
	f.clock.Advance(time.Hour)
	second := f.buy(t, alice, lamp, 1)
	f.buy(t, bob, lamp, 1)

	orders, err := f.svc.ListOrders(ctx, alice)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Len(t, orders[0].Items, 1)
}
