package repository

import (
	"context"
	"errors"
	"fmt"

	"mini_shop/internal/domain/product/model"
	"mini_shop/pkg/apperr"

	"gorm.io/gorm"
)

// ErrStockNotEnough 条件扣减未命中：商品不存在或库存不足
var ErrStockNotEnough = errors.New("stock not enough")

type ProductRepository interface {
	// WithTx 返回绑定到事务的仓库
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uint) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, product *model.Product) error
	SetStock(ctx context.Context, id uint, stock int) error
	Delete(ctx context.Context, id uint) error
	DecreaseStock(ctx context.Context, id uint, quantity int) error
	IncreaseStock(ctx context.Context, id uint, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Product not found")
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*model.Product, error) {
	result := make(map[uint]*model.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error
	return count, err
}

// Update 更新名称、价格、描述，库存只能通过 SetStock 或条件增减修改
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	result := r.db.WithContext(ctx).Model(product).Select("name", "price", "description").Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "Product not found")
	}
	return nil
}

func (r *productRepository) SetStock(ctx context.Context, id uint, stock int) error {
	result := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).UpdateColumn("stock", stock)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "Product not found")
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "Product not found")
	}
	return nil
}

// DecreaseStock 条件扣减库存，检查与扣减在同一条 UPDATE 中完成
func (r *productRepository) DecreaseStock(ctx context.Context, id uint, quantity int) error {
	result := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStockNotEnough
	}
	return nil
}

// IncreaseStock 归还库存
func (r *productRepository) IncreaseStock(ctx context.Context, id uint, quantity int) error {
	result := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "Product not found")
	}
	return nil
}
