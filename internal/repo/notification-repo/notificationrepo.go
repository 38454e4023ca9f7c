package notificationrepo

import (
	"context"

	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, title, body, read, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, n.UserID, n.Title, n.Body, n.CreatedAt).Scan(&n.ID)
	if err != nil {
		zap.L().Error("can't save notification", zap.Error(err))
		return nil, err
	}
	return n, nil
}

func (r *Repository) ListByUserID(ctx context.Context, userID int) ([]domain.Notification, error) {
	query := `
        SELECT id, user_id, title, body, read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("failed to fetch notifications", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Read, &n.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan notification row", zap.Error(err))
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (r *Repository) MarkRead(ctx context.Context, id, userID int) (bool, error) {
	query := `
        UPDATE notifications
        SET read = TRUE
        WHERE id = $1 AND user_id = $2
    `
	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		zap.L().Error("failed to mark notification read", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
