package topupservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/internal/pg"
	"github.com/sahajm/carewallet/internal/service/walletservice"
	"go.uber.org/zap"
)

type OrderRepo interface {
	Create(ctx context.Context, o *domain.PaymentOrder) (*domain.PaymentOrder, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error)
	MarkPaid(ctx context.Context, gatewayOrderID, gatewayPaymentID string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, gatewayOrderID string) (bool, error)
	FindStale(ctx context.Context, olderThan time.Time, limit uint32) ([]domain.PaymentOrder, error)
}

// Gateway is the slice of the payment provider's API the top-up flow
// needs. Amounts cross this boundary in the smallest currency unit.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
	FetchOrderStatus(ctx context.Context, orderID string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type WalletCreditor interface {
	EnsureWallet(ctx context.Context, userID int) error
}

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrOrderNotFound    = errors.New("payment order not found")
	ErrInvalidSignature = errors.New("payment signature verification failed")
)

const defaultCurrency = "INR"

type Service struct {
	orderRepo  OrderRepo
	wallets    WalletCreditor
	walletRepo walletservice.WalletRepo
	gateway    Gateway
	txManager  pg.TXManager
}

func New(orderRepo OrderRepo, wallets WalletCreditor, walletRepo walletservice.WalletRepo, gateway Gateway, txManager pg.TXManager) *Service {
	return &Service{
		orderRepo:  orderRepo,
		wallets:    wallets,
		walletRepo: walletRepo,
		gateway:    gateway,
		txManager:  txManager,
	}
}

// CreateOrder registers a top-up with the payment gateway and records it
// locally in the created state. Nothing is credited until the payment is
// verified.
func (s *Service) CreateOrder(ctx context.Context, userID int, amount float64) (*domain.PaymentOrder, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	receipt := uuid.NewString()
	gatewayOrderID, err := s.gateway.CreateOrder(ctx, toMinorUnits(amount), defaultCurrency, receipt)
	if err != nil {
		zap.L().Error("gateway order creation failed", zap.Error(err))
		return nil, err
	}

	order := &domain.PaymentOrder{
		UserID:         userID,
		GatewayOrderID: gatewayOrderID,
		Amount:         amount,
		Currency:       defaultCurrency,
		Status:         domain.PaymentOrderCreated,
		CreatedAt:      time.Now(),
	}
	created, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		zap.L().Error("failed to persist payment order", zap.Error(err))
		return nil, err
	}
	return created, nil
}

// VerifyAndCredit checks the gateway's payment signature and credits the
// wallet's added-money bucket. The status guard on MarkPaid makes repeat
// calls with the same order a no-op, so retried callbacks cannot
// double-credit.
func (s *Service) VerifyAndCredit(ctx context.Context, userID int, gatewayOrderID, gatewayPaymentID, signature string) (*domain.Wallet, error) {
	if !s.gateway.VerifySignature(gatewayOrderID, gatewayPaymentID, signature) {
		return nil, ErrInvalidSignature
	}

	order, err := s.orderRepo.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	if err := s.wallets.EnsureWallet(ctx, userID); err != nil {
		return nil, err
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		paid, err := s.orderRepo.MarkPaid(ctx, gatewayOrderID, gatewayPaymentID, time.Now())
		if err != nil {
			return err
		}
		if !paid {
			// Already settled by an earlier callback or the reconciler.
			return nil
		}
		wallet, err := s.walletRepo.Credit(ctx, userID, order.Amount, order.Amount)
		if err != nil {
			return err
		}
		if wallet == nil {
			return walletservice.ErrWalletMissing
		}
		return nil
	})
	if err != nil {
		zap.L().Error("failed to credit top-up", zap.String("order", gatewayOrderID), zap.Error(err))
		return nil, err
	}

	return s.walletRepo.GetByUserID(ctx, userID)
}

// SettleOrder is the reconciler's entry point: it asks the gateway for
// the order's current state and settles the local record accordingly.
// Returns true when the order reached a terminal state.
func (s *Service) SettleOrder(ctx context.Context, order domain.PaymentOrder) (bool, error) {
	status, err := s.gateway.FetchOrderStatus(ctx, order.GatewayOrderID)
	if err != nil {
		return false, err
	}

	switch status {
	case "paid":
		if err := s.wallets.EnsureWallet(ctx, order.UserID); err != nil {
			return false, err
		}
		err := s.txManager.Begin(ctx, func(ctx context.Context) error {
			paid, err := s.orderRepo.MarkPaid(ctx, order.GatewayOrderID, order.GatewayPaymentID, time.Now())
			if err != nil {
				return err
			}
			if !paid {
				return nil
			}
			wallet, err := s.walletRepo.Credit(ctx, order.UserID, order.Amount, order.Amount)
			if err != nil {
				return err
			}
			if wallet == nil {
				return walletservice.ErrWalletMissing
			}
			return nil
		})
		if err != nil {
			return false, err
		}
		return true, nil
	case "failed", "cancelled":
		if _, err := s.orderRepo.MarkFailed(ctx, order.GatewayOrderID); err != nil {
			return false, err
		}
		return true, nil
	default:
		// Still attempted or created on the gateway side.
		return false, nil
	}
}

// StaleOrders lists orders stuck in the created state for longer than
// the given age.
func (s *Service) StaleOrders(ctx context.Context, age time.Duration, limit uint32) ([]domain.PaymentOrder, error) {
	return s.orderRepo.FindStale(ctx, time.Now().Add(-age), limit)
}

func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
