package claimservice

import (
	"context"
	"errors"
	"testing"

	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/internal/pg"
	"github.com/sahajm/carewallet/internal/service/walletservice"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockRepo, *MockWalletCreditor, *walletservice.MockWalletRepo, *pg.MockTXManager, *MockNotifier) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	wallets := NewMockWalletCreditor(ctrl)
	walletRepo := walletservice.NewMockWalletRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	notifier := NewMockNotifier(ctrl)
	service := New(repo, wallets, walletRepo, txManager, notifier)
	defer ctrl.Finish()
	return service, repo, wallets, walletRepo, txManager, notifier
}

func TestSubmit(t *testing.T) {
	service, repo, _, _, _, _ := NewMock(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		claimType     string
		amount        float64
		documents     []string
		prepareMock   func()
		expectedError error
	}{
		{
			name:      "Successful submission",
			claimType: "hospitalization",
			amount:    1200.0,
			documents: []string{"doc-1", "doc-2"},
			prepareMock: func() {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, c *domain.ReimbursementClaim) (*domain.ReimbursementClaim, error) {
						assert.Equal(t, domain.ClaimSubmitted, c.Status)
						c.ID = 3
						return c, nil
					})
			},
		},
		{
			name:          "Missing documents",
			claimType:     "pharmacy",
			amount:        100.0,
			documents:     nil,
			prepareMock:   func() {},
			expectedError: ErrInvalidClaim,
		},
		{
			name:          "Non-positive amount",
			claimType:     "pharmacy",
			amount:        0,
			documents:     []string{"doc-1"},
			prepareMock:   func() {},
			expectedError: ErrInvalidClaim,
		},
		{
			name:      "Repo error",
			claimType: "pharmacy",
			amount:    100.0,
			documents: []string{"doc-1"},
			prepareMock: func() {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			created, err := service.Submit(ctx, 1, tt.claimType, tt.amount, tt.documents, domain.PaymentMethodWallet)
			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, created)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, created)
			}
		})
	}
}

func TestApprove(t *testing.T) {
	service, repo, wallets, walletRepo, txManager, notifier := NewMock(t)
	ctx := context.Background()

	submitted := &domain.ReimbursementClaim{
		ID: 3, UserID: 1, ClaimType: "pharmacy", Amount: 500.0, Status: domain.ClaimSubmitted,
	}

	runTx := func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	}

	tests := []struct {
		name          string
		amount        float64
		method        domain.PaymentMethod
		prepareMock   func()
		expectedError error
	}{
		{
			name:   "Wallet payout credits the refund bucket",
			amount: 400.0,
			method: domain.PaymentMethodWallet,
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 3).Return(submitted, nil)
				wallets.EXPECT().EnsureWallet(gomock.Any(), 1).Return(nil)
				txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runTx)
				repo.EXPECT().Transition(gomock.Any(), 3, domain.ClaimSubmitted, domain.ClaimApproved, 400.0, "", gomock.Any()).Return(true, nil)
				walletRepo.EXPECT().Credit(gomock.Any(), 1, 400.0, 0.0).Return(&domain.Wallet{UserID: 1, Balance: 400.0}, nil)
				notifier.EXPECT().Notify(gomock.Any(), 1, "Claim approved", gomock.Any())
			},
		},
		{
			name:   "Bank transfer skips the wallet",
			amount: 500.0,
			method: domain.PaymentMethodBankTransfer,
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 3).Return(submitted, nil)
				txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runTx)
				repo.EXPECT().Transition(gomock.Any(), 3, domain.ClaimSubmitted, domain.ClaimApproved, 500.0, "", gomock.Any()).Return(true, nil)
				notifier.EXPECT().Notify(gomock.Any(), 1, "Claim approved", gomock.Any())
			},
		},
		{
			name:   "Approved amount above the claim",
			amount: 600.0,
			method: domain.PaymentMethodWallet,
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 3).Return(submitted, nil)
			},
			expectedError: ErrInvalidApproval,
		},
		{
			name:   "Already rejected claim",
			amount: 100.0,
			method: domain.PaymentMethodWallet,
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 3).Return(&domain.ReimbursementClaim{
					ID: 3, UserID: 1, Amount: 500.0, Status: domain.ClaimRejected,
				}, nil)
			},
			expectedError: ErrIllegalTransition,
		},
		{
			name:   "Unknown claim",
			amount: 100.0,
			method: domain.PaymentMethodWallet,
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 3).Return(nil, nil)
			},
			expectedError: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			err := service.Approve(ctx, 3, tt.amount, tt.method)
			assert.Equal(t, tt.expectedError, err)
		})
	}
}

func TestReject(t *testing.T) {
	service, repo, _, _, _, notifier := NewMock(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		reason        string
		prepareMock   func()
		expectedError error
	}{
		{
			name:   "Reject with reason",
			reason: "duplicate bill",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 3).Return(&domain.ReimbursementClaim{
					ID: 3, UserID: 1, Status: domain.ClaimUnderReview,
				}, nil)
				repo.EXPECT().Transition(gomock.Any(), 3, domain.ClaimUnderReview, domain.ClaimRejected, 0.0, "duplicate bill", gomock.Any()).Return(true, nil)
				notifier.EXPECT().Notify(gomock.Any(), 1, "Claim rejected", "duplicate bill")
			},
		},
		{
			name:          "Reject without reason is refused",
			reason:        "",
			prepareMock:   func() {},
			expectedError: ErrReasonRequired,
		},
		{
			name:   "Approved claim cannot be rejected",
			reason: "late",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 3).Return(&domain.ReimbursementClaim{
					ID: 3, UserID: 1, Status: domain.ClaimApproved,
				}, nil)
			},
			expectedError: ErrIllegalTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			err := service.Reject(ctx, 3, tt.reason)
			assert.Equal(t, tt.expectedError, err)
		})
	}
}

func TestReview(t *testing.T) {
	service, repo, _, _, _, _ := NewMock(t)
	ctx := context.Background()

	repo.EXPECT().GetByID(gomock.Any(), 3).Return(&domain.ReimbursementClaim{
		ID: 3, UserID: 1, Status: domain.ClaimSubmitted,
	}, nil)
	repo.EXPECT().Transition(gomock.Any(), 3, domain.ClaimSubmitted, domain.ClaimUnderReview, 0.0, "", nil).Return(true, nil)

	assert.NoError(t, service.Review(ctx, 3))

	repo.EXPECT().GetByID(gomock.Any(), 3).Return(&domain.ReimbursementClaim{
		ID: 3, UserID: 1, Status: domain.ClaimUnderReview,
	}, nil)
	assert.Equal(t, ErrIllegalTransition, service.Review(ctx, 3))
}
