package walletrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

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

func (r *Repository) GetByUserID(ctx context.Context, userID int) (*domain.Wallet, error) {
	query := `
        SELECT id, user_id, balance, added_money
        FROM wallets
        WHERE user_id = $1
    `
	row := r.db.QueryRow(ctx, query, userID)
	var wallet domain.Wallet
	err := row.Scan(&wallet.ID, &wallet.UserID, &wallet.Balance, &wallet.AddedMoney)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("failed to get wallet", zap.Error(err))
		return nil, err
	}
	return &wallet, nil
}

func (r *Repository) Create(ctx context.Context, userID int) (*domain.Wallet, error) {
	query := `
        INSERT INTO wallets (user_id, balance, added_money)
        VALUES ($1, 0, 0)
        RETURNING id, user_id, balance, added_money
    `
	row := r.db.QueryRow(ctx, query, userID)
	var wallet domain.Wallet
	err := row.Scan(&wallet.ID, &wallet.UserID, &wallet.Balance, &wallet.AddedMoney)
	if err != nil {
		zap.L().Error("failed to create wallet", zap.Error(err))
		return nil, err
	}
	return &wallet, nil
}

// Credit adds amount to the balance and addedAmount to the added-money
// bucket in one atomic statement. The WHERE clause keeps both buckets
// within the balance, so a violating delta affects zero rows and the
// method returns nil without touching the wallet.
func (r *Repository) Credit(ctx context.Context, userID int, amount, addedAmount float64) (*domain.Wallet, error) {
	query := `
        UPDATE wallets
        SET balance = balance + $1, added_money = added_money + $2
        WHERE user_id = $3
          AND balance + $1 >= added_money + $2
          AND added_money + $2 >= 0
        RETURNING id, user_id, balance, added_money
    `
	row := r.db.QueryRow(ctx, query, amount, addedAmount, userID)
	var wallet domain.Wallet
	err := row.Scan(&wallet.ID, &wallet.UserID, &wallet.Balance, &wallet.AddedMoney)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("failed to credit wallet", zap.Error(err))
		return nil, err
	}
	return &wallet, nil
}

// Debit removes amount from the withdrawable part of the balance. The
// added-money bucket is never touched and the remaining balance must stay
// at or above floor. Returns nil when the funds do not cover the debit.
func (r *Repository) Debit(ctx context.Context, userID int, amount, floor float64) (*domain.Wallet, error) {
	query := `
        UPDATE wallets
        SET balance = balance - $1
        WHERE user_id = $2
          AND balance - $1 >= added_money
          AND balance - $1 >= $3
        RETURNING id, user_id, balance, added_money
    `
	row := r.db.QueryRow(ctx, query, amount, userID, floor)
	var wallet domain.Wallet
	err := row.Scan(&wallet.ID, &wallet.UserID, &wallet.Balance, &wallet.AddedMoney)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("failed to debit wallet", zap.Error(err))
		return nil, err
	}
	return &wallet, nil
}
