package service

import (
	"context"

	"mini_shop/internal/domain/product/model"
	"mini_shop/internal/domain/product/repository"
	"mini_shop/pkg/apperr"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateParams 新增商品参数
type CreateParams struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Stock       int
}

// UpdateParams 修改商品参数
type UpdateParams struct {
	Name        string
	Price       decimal.Decimal
	Description string
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, params CreateParams) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, params UpdateParams) (*model.Product, error)
	UpdateStock(ctx context.Context, id uint, stock int) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	// SeedDemoProducts 商品表为空时写入演示数据
	SeedDemoProducts(ctx context.Context) error
}

type productService struct {
	repo    repository.ProductRepository
	catalog *CatalogCache
	log     *zap.Logger
}

func NewProductService(repo repository.ProductRepository, catalog *CatalogCache, log *zap.Logger) ProductService {
	return &productService{repo: repo, catalog: catalog, log: log}
}

// ListProducts 获取商品列表（带缓存）
func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, version, ok := s.catalog.Get(ctx)
	if ok {
		return products, nil
	}

	// 缓存未命中，从数据库获取
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.catalog.Store(ctx, version, products)
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *productService) CreateProduct(ctx context.Context, params CreateParams) (*model.Product, error) {
	if err := checkPrice(params.Price); err != nil {
		return nil, err
	}
	if params.Stock < 0 {
		return nil, apperr.New(apperr.ErrInvalidParam, "Stock cannot be negative")
	}

	product := &model.Product{
		Name:        params.Name,
		Price:       params.Price.Round(2),
		Description: params.Description,
		Stock:       params.Stock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.catalog.Invalidate(ctx)
	s.log.Info("product created", zap.Uint("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, params UpdateParams) (*model.Product, error) {
	if err := checkPrice(params.Price); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = params.Name
	product.Price = params.Price.Round(2)
	product.Description = params.Description

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return product, nil
}

func (s *productService) UpdateStock(ctx context.Context, id uint, stock int) (*model.Product, error) {
	if stock < 0 {
		return nil, apperr.New(apperr.ErrInvalidParam, "Stock cannot be negative")
	}
	if err := s.repo.SetStock(ctx, id, stock); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)

	s.log.Info("product stock set", zap.Uint("product_id", id), zap.Int("stock", stock))
	return s.repo.GetByID(ctx, id)
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	s.log.Info("product deleted", zap.Uint("product_id", id))
	return nil
}

func (s *productService) SeedDemoProducts(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, p := range demoProducts() {
		product := p
		if err := s.repo.Create(ctx, &product); err != nil {
			return err
		}
	}
	s.catalog.Invalidate(ctx)
	s.log.Info("demo products seeded", zap.Int("count", len(demoProducts())))
	return nil
}

func checkPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return apperr.New(apperr.ErrInvalidParam, "Price must be greater than 0")
	}
	return nil
}

func demoProducts() []model.Product {
	return []model.Product{
		{Name: "Wireless Mouse", Price: decimal.RequireFromString("25.99"), Description: "Ergonomic 2.4GHz wireless mouse", Stock: 50},
		{Name: "Mechanical Keyboard", Price: decimal.RequireFromString("89.50"), Description: "Tenkeyless keyboard with brown switches", Stock: 20},
		{Name: "USB-C Hub", Price: decimal.RequireFromString("39.00"), Description: "7-in-1 hub with HDMI and card reader", Stock: 35},
		{Name: "Noise Cancelling Headphones", Price: decimal.RequireFromString("199.99"), Description: "Over-ear headphones with 30h battery", Stock: 10},
		{Name: "27\" Monitor", Price: decimal.RequireFromString("249.00"), Description: "1440p IPS monitor", Stock: 5},
	}
}
