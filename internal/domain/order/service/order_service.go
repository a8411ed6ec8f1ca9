package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"mini_shop/internal/domain/order/model"
	"mini_shop/internal/domain/order/repository"
	productModel "mini_shop/internal/domain/product/model"
	productRepo "mini_shop/internal/domain/product/repository"
	productService "mini_shop/internal/domain/product/service"
	"mini_shop/pkg/apperr"
	"mini_shop/pkg/database"
	"mini_shop/pkg/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxQuantity 单个商品在一笔订单中的数量上限
const MaxQuantity = 1000000

// ItemInput 下单的商品行，名称和价格为空时取商品当前值
type ItemInput struct {
	ProductID uint
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// CreateParams 下单参数，Total 为空时按订单行计算
type CreateParams struct {
	Items           []ItemInput
	Total           *decimal.Decimal
	ShippingAddress model.ShippingAddress
	PaymentInfo     model.PaymentInfo
}

// UpdateParams 可修改的订单信息
type UpdateParams struct {
	ShippingAddress *model.ShippingAddress
	PaymentInfo     *model.PaymentInfo
}

// Options 退货规则
type Options struct {
	ReturnWindowDays    int
	DefaultReturnReason string
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, params CreateParams) (*model.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]model.Order, error)
	GetOrder(ctx context.Context, id, userID uint) (*model.Order, error)
	UpdateOrder(ctx context.Context, id, userID uint, params UpdateParams) (*model.Order, error)
	DeleteOrder(ctx context.Context, id, userID uint) error

	RequestReturn(ctx context.Context, id, userID uint, reason string) (*model.Order, error)
	ApproveReturn(ctx context.Context, id uint) (*model.Order, error)
	RejectReturn(ctx context.Context, id uint) (*model.Order, error)
	PendingReturns(ctx context.Context) ([]model.Order, error)
	IsReturnEligible(date time.Time) bool
}

type orderService struct {
	orders   repository.OrderRepository
	products productRepo.ProductRepository
	tx       database.Transactor
	catalog  *productService.CatalogCache
	metrics  *metrics.MetricsCollector
	log      *zap.Logger
	opts     Options
	now      func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	products productRepo.ProductRepository,
	tx database.Transactor,
	catalog *productService.CatalogCache,
	m *metrics.MetricsCollector,
	log *zap.Logger,
	opts Options,
	now func() time.Time,
) OrderService {
	if now == nil {
		now = time.Now
	}
	return &orderService{
		orders:   orders,
		products: products,
		tx:       tx,
		catalog:  catalog,
		metrics:  m,
		log:      log,
		opts:     opts,
		now:      now,
	}
}

// CreateOrder 下单：先完整校验一遍库存，再在同一事务中写订单并逐项条件扣减
func (s *orderService) CreateOrder(ctx context.Context, userID uint, params CreateParams) (*model.Order, error) {
	if len(params.Items) == 0 {
		return nil, apperr.New(apperr.ErrInvalidParam, "Order must contain at least one item")
	}

	items, demand, err := normalizeItems(params.Items)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	// 固定加锁顺序，避免并发下单互相等待
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 1. 预检查，任何一项不满足都不做修改
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, apperr.Newf(apperr.ErrNotFound, "Product %d not found", item.ProductID)
		}
		if product.Stock < demand[item.ProductID] {
			s.metrics.RecordStockRejection()
			return nil, insufficientStock(product)
		}
	}

	order := &model.Order{
		UserID:          userID,
		Items:           make([]model.OrderItem, 0, len(items)),
		Date:            s.now(),
		ShippingAddress: params.ShippingAddress,
		PaymentInfo:     model.PaymentInfo{Card: model.MaskCard(params.PaymentInfo.Card)},
	}
	total := decimal.Zero
	for _, item := range items {
		product := products[item.ProductID]
		line := model.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
		if line.Name == "" {
			line.Name = product.Name
		}
		if line.Price.IsZero() {
			line.Price = product.Price
		}
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		order.Items = append(order.Items, line)
	}
	order.Total = total.Round(2)
	if params.Total != nil {
		order.Total = params.Total.Round(2)
	}

	// 2. 写订单并扣减库存，并发下单导致的库存不足在这里被拦截并整体回滚
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		pRepo := s.products.WithTx(tx)
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, id := range ids {
			if err := pRepo.DecreaseStock(ctx, id, demand[id]); err != nil {
				if !errors.Is(err, productRepo.ErrStockNotEnough) {
					return fmt.Errorf("decrease stock: %w", err)
				}
				current, getErr := pRepo.GetByID(ctx, id)
				if getErr != nil {
					return getErr
				}
				return insufficientStock(current)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInsufficientStock) {
			s.metrics.RecordStockRejection()
		}
		return nil, err
	}

	s.catalog.Invalidate(ctx)
	s.metrics.RecordOrderCreated()
	s.log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *orderService) GetOrder(ctx context.Context, id, userID uint) (*model.Order, error) {
	return s.orders.GetByIDForUser(ctx, id, userID)
}

// UpdateOrder 只允许修改收货地址和支付信息
func (s *orderService) UpdateOrder(ctx context.Context, id, userID uint, params UpdateParams) (*model.Order, error) {
	order, err := s.orders.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if params.ShippingAddress != nil {
		order.ShippingAddress = *params.ShippingAddress
	}
	if params.PaymentInfo != nil {
		order.PaymentInfo = model.PaymentInfo{Card: model.MaskCard(params.PaymentInfo.Card)}
	}
	if err := s.orders.UpdateDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder 删除订单，不归还库存
func (s *orderService) DeleteOrder(ctx context.Context, id, userID uint) error {
	var deleted bool
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = s.orders.WithTx(tx).DeleteUnlessPending(ctx, id, userID)
		return err
	})
	if err != nil {
		return err
	}
	if deleted {
		s.log.Info("order deleted", zap.Uint("order_id", id), zap.Uint("user_id", userID))
		return nil
	}

	if _, err := s.orders.GetByIDForUser(ctx, id, userID); err != nil {
		return err
	}
	return apperr.New(apperr.ErrInvalidState, "Cannot delete an order with a pending return request")
}

// normalizeItems 数量缺省为 1，同一商品多行时合并计算需求量
func normalizeItems(inputs []ItemInput) ([]ItemInput, map[uint]int, error) {
	items := make([]ItemInput, 0, len(inputs))
	demand := make(map[uint]int, len(inputs))
	for _, in := range inputs {
		if in.ProductID == 0 {
			return nil, nil, apperr.New(apperr.ErrInvalidParam, "Item id is required")
		}
		if in.Quantity == 0 {
			in.Quantity = 1
		}
		if in.Quantity < 0 {
			return nil, nil, apperr.Newf(apperr.ErrInvalidParam, "Invalid quantity for %s", in.Name)
		}
		if in.Price.IsNegative() {
			return nil, nil, apperr.Newf(apperr.ErrInvalidParam, "Invalid price for %s", in.Name)
		}
		// 同一商品多行合并后也不能超过上限
		if in.Quantity > MaxQuantity || demand[in.ProductID] > MaxQuantity-in.Quantity {
			return nil, nil, apperr.Newf(apperr.ErrInvalidParam, "Quantity for product %d exceeds %d", in.ProductID, MaxQuantity)
		}
		items = append(items, in)
		demand[in.ProductID] += in.Quantity
	}
	return items, demand, nil
}

func insufficientStock(p *productModel.Product) error {
	return apperr.Newf(apperr.ErrInsufficientStock, "Only %d in stock for %s", p.Stock, p.Name)
}
