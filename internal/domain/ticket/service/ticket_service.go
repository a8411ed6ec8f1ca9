package service

import (
	"context"
	"time"

	"mini_shop/internal/domain/ticket/model"
	"mini_shop/internal/domain/ticket/repository"
	"mini_shop/pkg/apperr"
	"mini_shop/pkg/metrics"

	"go.uber.org/zap"
)

type TicketService interface {
	CreateTicket(ctx context.Context, userID uint, subject, description string) (*model.Ticket, error)
	ListTickets(ctx context.Context, userID uint) ([]model.Ticket, error)
	ListAllTickets(ctx context.Context) ([]model.Ticket, error)
	// ResolveTicket Open -> Resolved
	ResolveTicket(ctx context.Context, id uint) (*model.Ticket, error)
	// CloseTicket Open/Resolved -> Closed
	CloseTicket(ctx context.Context, id uint) (*model.Ticket, error)
}

type ticketService struct {
	repo    repository.TicketRepository
	metrics *metrics.MetricsCollector
	log     *zap.Logger
	now     func() time.Time
}

func NewTicketService(repo repository.TicketRepository, m *metrics.MetricsCollector, log *zap.Logger, now func() time.Time) TicketService {
	if now == nil {
		now = time.Now
	}
	return &ticketService{repo: repo, metrics: m, log: log, now: now}
}

func (s *ticketService) CreateTicket(ctx context.Context, userID uint, subject, description string) (*model.Ticket, error) {
	ticket := &model.Ticket{
		UserID:      userID,
		Subject:     subject,
		Description: description,
		Status:      model.StatusOpen,
	}
	ticket.CreatedAt = s.now()

	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.log.Info("ticket submitted", zap.Uint("ticket_id", ticket.ID), zap.Uint("user_id", userID))
	return ticket, nil
}

func (s *ticketService) ListTickets(ctx context.Context, userID uint) ([]model.Ticket, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *ticketService) ListAllTickets(ctx context.Context) ([]model.Ticket, error) {
	return s.repo.ListAll(ctx)
}

func (s *ticketService) ResolveTicket(ctx context.Context, id uint) (*model.Ticket, error) {
	return s.transition(ctx, id, []string{model.StatusOpen}, model.StatusResolved, "resolved_at")
}

func (s *ticketService) CloseTicket(ctx context.Context, id uint) (*model.Ticket, error) {
	return s.transition(ctx, id, []string{model.StatusOpen, model.StatusResolved}, model.StatusClosed, "closed_at")
}

// transition 状态变化时重置通知已读标记
func (s *ticketService) transition(ctx context.Context, id uint, from []string, to, stampColumn string) (*model.Ticket, error) {
	ok, err := s.repo.Transition(ctx, id, from, map[string]interface{}{
		"status":            to,
		stampColumn:         s.now(),
		"notification_read": false,
	})
	if err != nil {
		return nil, err
	}

	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Newf(apperr.ErrInvalidState, "Ticket is already %s", ticket.Status)
	}

	s.metrics.RecordTicketTransition(to)
	s.log.Info("ticket "+toVerb(to), zap.Uint("ticket_id", id))
	return ticket, nil
}

func toVerb(status string) string {
	if status == model.StatusResolved {
		return "resolved"
	}
	return "closed"
}
