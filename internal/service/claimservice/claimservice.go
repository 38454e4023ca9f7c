package claimservice

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
	Create(ctx context.Context, c *domain.ReimbursementClaim) (*domain.ReimbursementClaim, error)
	GetByID(ctx context.Context, id int) (*domain.ReimbursementClaim, error)
	ListByUserID(ctx context.Context, userID int) ([]domain.ReimbursementClaim, error)
	ListAll(ctx context.Context) ([]domain.ReimbursementClaim, error)
	Transition(ctx context.Context, id int, from, to domain.ClaimStatus, approvedAmount float64, reason string, resolvedAt *time.Time) (bool, error)
}

type WalletCreditor interface {
	EnsureWallet(ctx context.Context, userID int) error
}

type Notifier interface {
	Notify(ctx context.Context, userID int, title, body string)
}

var (
	ErrNotFound          = errors.New("claim not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrInvalidClaim      = errors.New("claim type, positive amount and documents are required")
	ErrInvalidApproval   = errors.New("approved amount must be positive and not exceed the claimed amount")
	ErrReasonRequired    = errors.New("a reason is required when rejecting")
)

type Service struct {
	repo       Repo
	wallets    WalletCreditor
	walletRepo walletservice.WalletRepo
	txManager  pg.TXManager
	notifier   Notifier
}

func New(repo Repo, wallets WalletCreditor, walletRepo walletservice.WalletRepo, txManager pg.TXManager, notifier Notifier) *Service {
	return &Service{
		repo:       repo,
		wallets:    wallets,
		walletRepo: walletRepo,
		txManager:  txManager,
		notifier:   notifier,
	}
}

// Submit files a claim with the customer's preferred payout method. The
// admin may still override the method at approval time.
func (s *Service) Submit(ctx context.Context, userID int, claimType string, amount float64, documents []string, method domain.PaymentMethod) (*domain.ReimbursementClaim, error) {
	if claimType == "" || amount <= 0 || len(documents) == 0 {
		return nil, ErrInvalidClaim
	}
	if method == "" {
		method = domain.PaymentMethodWallet
	}
	if method != domain.PaymentMethodWallet && method != domain.PaymentMethodBankTransfer {
		return nil, ErrInvalidClaim
	}

	claim := &domain.ReimbursementClaim{
		UserID:        userID,
		ClaimType:     claimType,
		Amount:        amount,
		Documents:     documents,
		Status:        domain.ClaimSubmitted,
		PaymentMethod: method,
		CreatedAt:     time.Now(),
	}
	created, err := s.repo.Create(ctx, claim)
	if err != nil {
		zap.L().Error("failed to create claim", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int) ([]domain.ReimbursementClaim, error) {
	claims, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to fetch claims", zap.Error(err))
		return nil, err
	}
	return claims, nil
}

func (s *Service) ListForAdmin(ctx context.Context) ([]domain.ReimbursementClaim, error) {
	return s.repo.ListAll(ctx)
}

// Review marks a submitted claim as being looked at. Purely informational
// for the customer; approval and rejection work from either state.
func (s *Service) Review(ctx context.Context, id int) error {
	claim, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if claim == nil {
		return ErrNotFound
	}
	if !claim.Status.CanTransition(domain.ClaimUnderReview) {
		return ErrIllegalTransition
	}

	moved, err := s.repo.Transition(ctx, id, claim.Status, domain.ClaimUnderReview, 0, "", nil)
	if err != nil {
		zap.L().Error("failed to move claim under review", zap.Int("id", id), zap.Error(err))
		return err
	}
	if !moved {
		return ErrIllegalTransition
	}
	return nil
}

// Approve settles a claim for up to the claimed amount. With the wallet
// payment method the approved amount lands in the bill-refund bucket,
// atomically with the status change.
func (s *Service) Approve(ctx context.Context, id int, approvedAmount float64, method domain.PaymentMethod) error {
	claim, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if claim == nil {
		return ErrNotFound
	}
	if !claim.Status.CanTransition(domain.ClaimApproved) {
		return ErrIllegalTransition
	}
	if approvedAmount <= 0 || approvedAmount > claim.Amount {
		return ErrInvalidApproval
	}
	if method == "" {
		method = claim.PaymentMethod
	}
	if method != domain.PaymentMethodWallet && method != domain.PaymentMethodBankTransfer {
		return ErrInvalidApproval
	}

	if method == domain.PaymentMethodWallet {
		if err := s.wallets.EnsureWallet(ctx, claim.UserID); err != nil {
			return err
		}
	}

	now := time.Now()
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		moved, err := s.repo.Transition(ctx, id, claim.Status, domain.ClaimApproved, approvedAmount, "", &now)
		if err != nil {
			return err
		}
		if !moved {
			return ErrIllegalTransition
		}
		if method == domain.PaymentMethodWallet {
			wallet, err := s.walletRepo.Credit(ctx, claim.UserID, approvedAmount, 0)
			if err != nil {
				return err
			}
			if wallet == nil {
				return walletservice.ErrWalletMissing
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("failed to approve claim", zap.Int("id", id), zap.Error(err))
		return err
	}

	body := fmt.Sprintf("Your %s claim was approved for %.2f.", claim.ClaimType, approvedAmount)
	if method == domain.PaymentMethodWallet {
		body += " The amount has been credited to your wallet."
	} else {
		body += " The amount will be transferred to your bank account."
	}
	s.notifier.Notify(ctx, claim.UserID, "Claim approved", body)
	return nil
}

func (s *Service) Reject(ctx context.Context, id int, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}
	claim, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if claim == nil {
		return ErrNotFound
	}
	if !claim.Status.CanTransition(domain.ClaimRejected) {
		return ErrIllegalTransition
	}

	now := time.Now()
	moved, err := s.repo.Transition(ctx, id, claim.Status, domain.ClaimRejected, 0, reason, &now)
	if err != nil {
		zap.L().Error("failed to reject claim", zap.Int("id", id), zap.Error(err))
		return err
	}
	if !moved {
		return ErrIllegalTransition
	}

	s.notifier.Notify(ctx, claim.UserID, "Claim rejected", reason)
	return nil
}
