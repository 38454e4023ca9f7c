package walletservice

import (
	"context"
	"errors"
	"time"

	"github.com/sahajm/carewallet/internal/domain"
	"go.uber.org/zap"
)

type WalletRepo interface {
	GetByUserID(ctx context.Context, userID int) (*domain.Wallet, error)
	Create(ctx context.Context, userID int) (*domain.Wallet, error)
	Credit(ctx context.Context, userID int, amount, addedAmount float64) (*domain.Wallet, error)
	Debit(ctx context.Context, userID int, amount, floor float64) (*domain.Wallet, error)
}

type WithdrawalCounter interface {
	CountSince(ctx context.Context, userID int, since time.Time) (int, error)
}

type Service struct {
	walletRepo WalletRepo
	counter    WithdrawalCounter
}

func New(walletRepo WalletRepo, counter WithdrawalCounter) *Service {
	return &Service{
		walletRepo: walletRepo,
		counter:    counter,
	}
}

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrWalletMissing = errors.New("wallet not found")
)

// GetWallet returns the user's wallet together with how many withdrawal
// requests they filed today. A user who never topped up gets a zero wallet
// without one being created.
func (s *Service) GetWallet(ctx context.Context, userID int) (*domain.Wallet, int, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get wallet", zap.Error(err))
		return nil, 0, err
	}
	if wallet == nil {
		wallet = &domain.Wallet{UserID: userID}
	}

	count, err := s.counter.CountSince(ctx, userID, StartOfDay(time.Now()))
	if err != nil {
		zap.L().Error("failed to count today's withdrawals", zap.Error(err))
		return nil, 0, err
	}
	return wallet, count, nil
}

// AddFunds credits the added-money bucket directly, bypassing the payment
// gateway. Only reachable in test mode.
func (s *Service) AddFunds(ctx context.Context, userID int, amount float64) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if err := s.EnsureWallet(ctx, userID); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.Credit(ctx, userID, amount, amount)
	if err != nil {
		zap.L().Error("failed to credit wallet", zap.Error(err))
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletMissing
	}
	return wallet, nil
}

// EnsureWallet creates the wallet row on first use.
func (s *Service) EnsureWallet(ctx context.Context, userID int) error {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get wallet", zap.Error(err))
		return err
	}
	if wallet != nil {
		return nil
	}
	if _, err := s.walletRepo.Create(ctx, userID); err != nil {
		zap.L().Error("failed to create wallet", zap.Error(err))
		return err
	}
	return nil
}

// StartOfDay returns local midnight for the given moment. The daily
// withdrawal cap resets on this boundary.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
