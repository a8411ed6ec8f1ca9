package service

import (
	"context"
	"time"

	"mini_shop/internal/domain/review/model"
	"mini_shop/internal/domain/review/repository"
	"mini_shop/pkg/apperr"

	"go.uber.org/zap"
)

// AnonymousName 评价人已不存在时展示的名称
const AnonymousName = "Anonymous"

// PurchaseChecker 查询用户是否买过某个商品
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, userID, productID uint) (bool, error)
}

// UsernameLookup 批量查询用户名
type UsernameLookup interface {
	GetUsernames(ctx context.Context, ids []uint) (map[uint]string, error)
}

type ReviewService interface {
	// SubmitReview 只有买过该商品的用户可以评价
	SubmitReview(ctx context.Context, userID, productID uint, rating int, comment string) (*model.Review, error)
	ListReviews(ctx context.Context, productID uint) ([]model.ReviewView, error)
}

type reviewService struct {
	repo            repository.ReviewRepository
	purchases       PurchaseChecker
	users           UsernameLookup
	allowDuplicates bool
	log             *zap.Logger
	now             func() time.Time
}

func NewReviewService(repo repository.ReviewRepository, purchases PurchaseChecker, users UsernameLookup,
	allowDuplicates bool, log *zap.Logger, now func() time.Time) ReviewService {
	if now == nil {
		now = time.Now
	}
	return &reviewService{
		repo:            repo,
		purchases:       purchases,
		users:           users,
		allowDuplicates: allowDuplicates,
		log:             log,
		now:             now,
	}
}

func (s *reviewService) SubmitReview(ctx context.Context, userID, productID uint, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.New(apperr.ErrInvalidParam, "Rating must be between 1 and 5")
	}

	purchased, err := s.purchases.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, apperr.New(apperr.ErrForbidden, "You can only review products you have purchased.")
	}

	if !s.allowDuplicates {
		exists, err := s.repo.Exists(ctx, userID, productID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.New(apperr.ErrConflict, "You have already reviewed this product.")
		}
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		Date:      s.now(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.log.Info("review submitted", zap.Uint("review_id", review.ID), zap.Uint("product_id", productID), zap.Uint("user_id", userID))
	return review, nil
}

func (s *reviewService) ListReviews(ctx context.Context, productID uint) ([]model.ReviewView, error) {
	reviews, err := s.repo.List(ctx, productID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(reviews))
	seen := make(map[uint]struct{}, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.UserID]; !ok {
			seen[r.UserID] = struct{}{}
			ids = append(ids, r.UserID)
		}
	}
	names, err := s.users.GetUsernames(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]model.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		name, ok := names[r.UserID]
		if !ok {
			name = AnonymousName
		}
		views = append(views, model.ReviewView{Review: r, Username: name})
	}
	return views, nil
}
