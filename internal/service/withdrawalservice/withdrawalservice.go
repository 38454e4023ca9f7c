package withdrawalservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/internal/pg"
	"github.com/sahajm/carewallet/internal/service/walletservice"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, wr *domain.WithdrawalRequest) (*domain.WithdrawalRequest, error)
	GetByID(ctx context.Context, id int) (*domain.WithdrawalRequest, error)
	ListByUserID(ctx context.Context, userID int) ([]domain.WithdrawalRequest, error)
	ListByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]domain.WithdrawalRequest, error)
	ListAll(ctx context.Context) ([]domain.WithdrawalRequest, error)
	CountSince(ctx context.Context, userID int, since time.Time) (int, error)
	Transition(ctx context.Context, id int, from, to domain.WithdrawalStatus, notes string, processedAt *time.Time) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID int, title, body string)
}

var (
	ErrNotFound          = errors.New("withdrawal request not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrNotesRequired     = errors.New("notes are required when rejecting")
	ErrInsufficientFunds = errors.New("wallet no longer covers the requested amount")
)

type Service struct {
	repo       Repo
	walletRepo walletservice.WalletRepo
	txManager  pg.TXManager
	notifier   Notifier
}

func New(repo Repo, walletRepo walletservice.WalletRepo, txManager pg.TXManager, notifier Notifier) *Service {
	return &Service{
		repo:       repo,
		walletRepo: walletRepo,
		txManager:  txManager,
		notifier:   notifier,
	}
}

// Check runs the eligibility rules against the current wallet state
// without creating anything. Exposed so the client can validate a draft
// request before submitting.
func (s *Service) Check(ctx context.Context, userID int, in SubmitInput) error {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get wallet", zap.Error(err))
		return err
	}
	if wallet == nil {
		wallet = &domain.Wallet{UserID: userID}
	}

	todayCount, err := s.repo.CountSince(ctx, userID, walletservice.StartOfDay(time.Now()))
	if err != nil {
		zap.L().Error("failed to count today's withdrawals", zap.Error(err))
		return err
	}

	return CheckEligibility(wallet, in, todayCount)
}

// Submit re-runs the eligibility check against the current wallet state
// before persisting. The wallet is not debited here; that happens at
// approval.
func (s *Service) Submit(ctx context.Context, userID int, in SubmitInput) (*domain.WithdrawalRequest, error) {
	if err := s.Check(ctx, userID, in); err != nil {
		return nil, err
	}

	request := &domain.WithdrawalRequest{
		UserID:    userID,
		Amount:    in.Amount,
		Bank:      in.Bank,
		Bill:      in.Bill,
		Status:    domain.WithdrawalPending,
		CreatedAt: time.Now(),
	}
	created, err := s.repo.Create(ctx, request)
	if err != nil {
		zap.L().Error("failed to create withdrawal request", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int) ([]domain.WithdrawalRequest, error) {
	requests, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch withdrawal requests", zap.Error(err))
		return nil, err
	}
	return requests, nil
}

// ListForAdmin returns all requests, or only those in the given status.
func (s *Service) ListForAdmin(ctx context.Context, status domain.WithdrawalStatus) ([]domain.WithdrawalRequest, error) {
	if status == "" {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByStatus(ctx, status)
}

// Approve moves pending to approved and debits the withdrawable part of
// the wallet in the same transaction, so a wallet that no longer covers
// the amount rolls the status change back.
func (s *Service) Approve(ctx context.Context, id int, notes string) error {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if request == nil {
		return ErrNotFound
	}
	if !request.Status.CanTransition(domain.WithdrawalApproved) {
		return ErrIllegalTransition
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		moved, err := s.repo.Transition(ctx, id, request.Status, domain.WithdrawalApproved, notes, nil)
		if err != nil {
			return err
		}
		if !moved {
			return ErrIllegalTransition
		}
		wallet, err := s.walletRepo.Debit(ctx, request.UserID, request.Amount, MinBalanceFloor)
		if err != nil {
			return err
		}
		if wallet == nil {
			return ErrInsufficientFunds
		}
		return nil
	})
	if err != nil {
		zap.L().Error("failed to approve withdrawal request", zap.Int("id", id), zap.Error(err))
		return err
	}

	s.notifier.Notify(ctx, request.UserID, "Withdrawal approved",
		fmt.Sprintf("Your withdrawal request for %.2f was approved.", request.Amount))
	return nil
}

// Reject requires a non-empty note, surfaced to the customer.
func (s *Service) Reject(ctx context.Context, id int, notes string) error {
	if notes == "" {
		return ErrNotesRequired
	}
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if request == nil {
		return ErrNotFound
	}
	if !request.Status.CanTransition(domain.WithdrawalRejected) {
		return ErrIllegalTransition
	}

	now := time.Now()
	moved, err := s.repo.Transition(ctx, id, request.Status, domain.WithdrawalRejected, notes, &now)
	if err != nil {
		zap.L().Error("failed to reject withdrawal request", zap.Int("id", id), zap.Error(err))
		return err
	}
	if !moved {
		return ErrIllegalTransition
	}

	s.notifier.Notify(ctx, request.UserID, "Withdrawal rejected", notes)
	return nil
}

// Complete records that the transfer went out. Completing an already
// completed request is a no-op.
func (s *Service) Complete(ctx context.Context, id int, notes string) error {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if request == nil {
		return ErrNotFound
	}
	if request.Status == domain.WithdrawalCompleted {
		return nil
	}
	if !request.Status.CanTransition(domain.WithdrawalCompleted) {
		return ErrIllegalTransition
	}
	if notes == "" {
		notes = request.Notes
	}

	now := time.Now()
	moved, err := s.repo.Transition(ctx, id, request.Status, domain.WithdrawalCompleted, notes, &now)
	if err != nil {
		zap.L().Error("failed to complete withdrawal request", zap.Int("id", id), zap.Error(err))
		return err
	}
	if !moved {
		// Lost a race; a concurrent complete is still a no-op.
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current != nil && current.Status == domain.WithdrawalCompleted {
			return nil
		}
		return ErrIllegalTransition
	}

	s.notifier.Notify(ctx, request.UserID, "Withdrawal completed",
		fmt.Sprintf("Your withdrawal of %.2f was transferred to your bank account.", request.Amount))
	return nil
}
