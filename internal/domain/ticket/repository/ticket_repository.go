package repository

import (
	"context"
	"errors"

	"mini_shop/internal/domain/ticket/model"
	"mini_shop/pkg/apperr"

	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) error
	GetByID(ctx context.Context, id uint) (*model.Ticket, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Ticket, error)
	ListAll(ctx context.Context) ([]model.Ticket, error)
	// Transition 仅当当前状态属于 from 时写入 updates，返回是否命中
	Transition(ctx context.Context, id uint, from []string, updates map[string]interface{}) (bool, error)
	// ListUnreadResults 已处理且未读的工单
	ListUnreadResults(ctx context.Context, userID uint) ([]model.Ticket, error)
	MarkNotificationRead(ctx context.Context, id, userID uint) error
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) GetByID(ctx context.Context, id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "Ticket not found")
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID uint) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepository) Transition(ctx context.Context, id uint, from []string, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ticketRepository) ListUnreadResults(ctx context.Context, userID uint) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ? AND notification_read = ?",
			userID, []string{model.StatusResolved, model.StatusClosed}, false).
		Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepository) MarkNotificationRead(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("notification_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.ErrNotFound, "Ticket not found")
	}
	return nil
}
