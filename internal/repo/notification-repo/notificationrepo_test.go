package notificationrepo

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"github.com/sahajm/carewallet/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	n := &domain.Notification{
		UserID:    1,
		Title:     "Withdrawal approved",
		Body:      "Your withdrawal of 250.00 was approved.",
		CreatedAt: time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO notifications (user_id, title, body, read, created_at)`)).
		WithArgs(n.UserID, n.Title, n.Body, n.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(3))

	saved, err := repo.Create(context.Background(), n)
	assert.NoError(t, err)
	assert.Equal(t, 3, saved.ID)
}

func TestRepository_ListByUserID(t *testing.T) {
	repo, mock := NewMock(t)

	rows := pgxmock.NewRows([]string{"id", "user_id", "title", "body", "read", "created_at"}).
		AddRow(3, 1, "Withdrawal approved", "", false, time.Now()).
		AddRow(2, 1, "Claim rejected", "bill is not readable", true, time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM notifications WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs(1).
		WillReturnRows(rows)

	notifications, err := repo.ListByUserID(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, notifications, 2)
	assert.False(t, notifications[0].Read)
}

func TestRepository_MarkRead(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`)).
		WithArgs(3, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	marked, err := repo.MarkRead(context.Background(), 3, 1)
	assert.NoError(t, err)
	assert.True(t, marked)
}
