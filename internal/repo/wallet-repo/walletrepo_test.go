package walletrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

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

func TestRepository_GetByUserID(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		userID    int
		mockSetup func()
		expectErr bool
		result    *domain.Wallet
	}{
		{
			name:   "Valid userID returns wallet",
			userID: 1,
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"id", "user_id", "balance", "added_money"}).
					AddRow(1, 1, 500.0, 200.0)
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, balance, added_money FROM wallets WHERE user_id = $1`)).
					WithArgs(1).
					WillReturnRows(rows)
			},
			result: &domain.Wallet{ID: 1, UserID: 1, Balance: 500.0, AddedMoney: 200.0},
		},
		{
			name:   "Missing wallet returns nil",
			userID: 99,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, balance, added_money FROM wallets WHERE user_id = $1`)).
					WithArgs(99).
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name:   "Database error",
			userID: 1,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, balance, added_money FROM wallets WHERE user_id = $1`)).
					WithArgs(1).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.GetByUserID(context.Background(), tt.userID)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`
        INSERT INTO wallets (user_id, balance, added_money)
        VALUES ($1, 0, 0)
        RETURNING id, user_id, balance, added_money`)).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "balance", "added_money"}).
			AddRow(1, 1, 0.0, 0.0))

	wallet, err := repo.Create(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, &domain.Wallet{ID: 1, UserID: 1}, wallet)
}

func TestRepository_Credit(t *testing.T) {
	repo, mock := NewMock(t)

	queryRe := regexp.QuoteMeta(`
        UPDATE wallets
        SET balance = balance + $1, added_money = added_money + $2
        WHERE user_id = $3
          AND balance + $1 >= added_money + $2
          AND added_money + $2 >= 0
        RETURNING id, user_id, balance, added_money`)

	tests := []struct {
		name        string
		amount      float64
		addedAmount float64
		mockSetup   func()
		expectErr   bool
		result      *domain.Wallet
	}{
		{
			name:        "Top-up credits both buckets",
			amount:      100.0,
			addedAmount: 100.0,
			mockSetup: func() {
				mock.ExpectQuery(queryRe).
					WithArgs(100.0, 100.0, 1).
					WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "balance", "added_money"}).
						AddRow(1, 1, 600.0, 300.0))
			},
			result: &domain.Wallet{ID: 1, UserID: 1, Balance: 600.0, AddedMoney: 300.0},
		},
		{
			name:        "Refund credit leaves added money untouched",
			amount:      300.0,
			addedAmount: 0.0,
			mockSetup: func() {
				mock.ExpectQuery(queryRe).
					WithArgs(300.0, 0.0, 1).
					WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "balance", "added_money"}).
						AddRow(1, 1, 800.0, 200.0))
			},
			result: &domain.Wallet{ID: 1, UserID: 1, Balance: 800.0, AddedMoney: 200.0},
		},
		{
			name:        "Violating delta affects no rows",
			amount:      -500.0,
			addedAmount: 0.0,
			mockSetup: func() {
				mock.ExpectQuery(queryRe).
					WithArgs(-500.0, 0.0, 1).
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Credit(context.Background(), 1, tt.amount, tt.addedAmount)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
		})
	}
}

func TestRepository_Debit(t *testing.T) {
	repo, mock := NewMock(t)

	queryRe := regexp.QuoteMeta(`
        UPDATE wallets
        SET balance = balance - $1
        WHERE user_id = $2
          AND balance - $1 >= added_money
          AND balance - $1 >= $3
        RETURNING id, user_id, balance, added_money`)

	tests := []struct {
		name      string
		amount    float64
		mockSetup func()
		expectErr bool
		result    *domain.Wallet
	}{
		{
			name:   "Successful debit",
			amount: 250.0,
			mockSetup: func() {
				mock.ExpectQuery(queryRe).
					WithArgs(250.0, 1, 1.0).
					WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "balance", "added_money"}).
						AddRow(1, 1, 250.0, 200.0))
			},
			result: &domain.Wallet{ID: 1, UserID: 1, Balance: 250.0, AddedMoney: 200.0},
		},
		{
			name:   "Insufficient withdrawable funds",
			amount: 400.0,
			mockSetup: func() {
				mock.ExpectQuery(queryRe).
					WithArgs(400.0, 1, 1.0).
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name:   "Database error",
			amount: 100.0,
			mockSetup: func() {
				mock.ExpectQuery(queryRe).
					WithArgs(100.0, 1, 1.0).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Debit(context.Background(), 1, tt.amount, 1.0)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
		})
	}
}
