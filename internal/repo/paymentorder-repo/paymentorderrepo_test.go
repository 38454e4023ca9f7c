package paymentorderrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
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

	order := &domain.PaymentOrder{
		UserID:         1,
		GatewayOrderID: "order_NXhf2oditM4rPn",
		Amount:         500.0,
		Currency:       "INR",
		Status:         domain.PaymentOrderCreated,
		CreatedAt:      time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC),
	}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO payment_orders (user_id, gateway_order_id, amount, currency, status, created_at)`)).
		WithArgs(order.UserID, order.GatewayOrderID, order.Amount, order.Currency, order.Status, order.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(4))

	saved, err := repo.Create(context.Background(), order)
	assert.NoError(t, err)
	assert.Equal(t, 4, saved.ID)
}

func TestRepository_GetByGatewayOrderID(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		orderID   string
		mockSetup func()
		expectErr bool
		found     bool
	}{
		{
			name:    "Existing order",
			orderID: "order_NXhf2oditM4rPn",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{
					"id", "user_id", "gateway_order_id", "gateway_payment_id",
					"amount", "currency", "status", "created_at", "paid_at",
				}).AddRow(
					4, 1, "order_NXhf2oditM4rPn", "",
					500.0, "INR", domain.PaymentOrderCreated, time.Now(), nil,
				)
				mock.ExpectQuery(`SELECT (.+) FROM payment_orders WHERE gateway_order_id = \$1`).
					WithArgs("order_NXhf2oditM4rPn").
					WillReturnRows(rows)
			},
			found: true,
		},
		{
			name:    "Missing order",
			orderID: "order_unknown",
			mockSetup: func() {
				mock.ExpectQuery(`SELECT (.+) FROM payment_orders WHERE gateway_order_id = \$1`).
					WithArgs("order_unknown").
					WillReturnError(pgx.ErrNoRows)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			o, err := repo.GetByGatewayOrderID(context.Background(), tt.orderID)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.found {
				assert.NotNil(t, o)
			} else {
				assert.Nil(t, o)
			}
		})
	}
}

func TestRepository_MarkPaid(t *testing.T) {
	repo, mock := NewMock(t)

	paidAt := time.Now()
	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		marked    bool
	}{
		{
			name: "First settlement wins",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE payment_orders SET status = 'paid', gateway_payment_id = $1, paid_at = $2 WHERE gateway_order_id = $3 AND status = 'created'`)).
					WithArgs("pay_NXhgAqnf2bBMLZ", paidAt, "order_NXhf2oditM4rPn").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			marked: true,
		},
		{
			name: "Replayed callback is a no-op",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE payment_orders SET status = 'paid', gateway_payment_id = $1, paid_at = $2 WHERE gateway_order_id = $3 AND status = 'created'`)).
					WithArgs("pay_NXhgAqnf2bBMLZ", paidAt, "order_NXhf2oditM4rPn").
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			marked: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE payment_orders SET status = 'paid', gateway_payment_id = $1, paid_at = $2 WHERE gateway_order_id = $3 AND status = 'created'`)).
					WithArgs("pay_NXhgAqnf2bBMLZ", paidAt, "order_NXhf2oditM4rPn").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			marked, err := repo.MarkPaid(context.Background(), "order_NXhf2oditM4rPn", "pay_NXhgAqnf2bBMLZ", paidAt)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.marked, marked)
		})
	}
}

func TestRepository_FindStale(t *testing.T) {
	repo, mock := NewMock(t)

	cutoff := time.Now().Add(-10 * time.Minute)
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "gateway_order_id", "gateway_payment_id",
		"amount", "currency", "status", "created_at", "paid_at",
	}).AddRow(
		4, 1, "order_NXhf2oditM4rPn", "",
		500.0, "INR", domain.PaymentOrderCreated, time.Now().Add(-time.Hour), nil,
	)
	mock.ExpectQuery(`SELECT (.+) FROM payment_orders WHERE status = 'created' AND created_at < \$1`).
		WithArgs(cutoff, 100).
		WillReturnRows(rows)

	orders, err := repo.FindStale(context.Background(), cutoff, 100)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, "order_NXhf2oditM4rPn", orders[0].GatewayOrderID)
}
