package notificationservice

import (
	"context"
	"errors"
	"time"

	"github.com/sahajm/carewallet/internal/domain"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListByUserID(ctx context.Context, userID int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID int) (bool, error)
}

var ErrNotFound = errors.New("notification not found")

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{repo: repo}
}

// Notify records a notification for the user. It is best-effort: the
// flows that call it have already committed, so a failure here is logged
// and swallowed.
func (s *Service) Notify(ctx context.Context, userID int, title, body string) {
	_, err := s.repo.Create(ctx, &domain.Notification{
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	})
	if err != nil {
		zap.L().Error("failed to store notification",
			zap.Int("userID", userID), zap.String("title", title), zap.Error(err))
	}
}

func (s *Service) List(ctx context.Context, userID int) ([]domain.Notification, error) {
	notifications, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch notifications", zap.Error(err))
		return nil, err
	}
	return notifications, nil
}

// MarkRead flips the read flag; the userID guard keeps users from
// touching each other's notifications.
func (s *Service) MarkRead(ctx context.Context, id, userID int) error {
	found, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		zap.L().Error("failed to mark notification read", zap.Int("id", id), zap.Error(err))
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
