package repository

import (
	"context"

	"mini_shop/internal/domain/review/model"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	// List productID 为 0 时返回全部评价
	List(ctx context.Context, productID uint) ([]model.Review, error)
	Exists(ctx context.Context, userID, productID uint) (bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) List(ctx context.Context, productID uint) ([]model.Review, error) {
	var reviews []model.Review
	q := r.db.WithContext(ctx).Order("id ASC")
	if productID != 0 {
		q = q.Where("product_id = ?", productID)
	}
	err := q.Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) Exists(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}
