package withdrawalservice

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

func NewMock(t *testing.T) (*Service, *MockRepo, *walletservice.MockWalletRepo, *pg.MockTXManager, *MockNotifier) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	walletRepo := walletservice.NewMockWalletRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	notifier := NewMockNotifier(ctrl)
	service := New(repo, walletRepo, txManager, notifier)
	defer ctrl.Finish()
	return service, repo, walletRepo, txManager, notifier
}

func validInput(amount float64) SubmitInput {
	return SubmitInput{
		Amount: amount,
		Bank: domain.BankDetails{
			AccountHolder: "Asha Rao",
			AccountNumber: "001122334455",
			IFSC:          "HDFC0001234",
			BankName:      "HDFC",
		},
		Bill: domain.BillMetadata{
			BillType:   "pharmacy",
			BillNumber: "INV-42",
			BillDate:   "2025-06-01",
			BillFileID: "file-42",
		},
	}
}

func TestCheckEligibility(t *testing.T) {
	wallet := &domain.Wallet{UserID: 1, Balance: 100.0, AddedMoney: 0}

	tests := []struct {
		name          string
		wallet        *domain.Wallet
		input         SubmitInput
		todayCount    int
		expectedError error
	}{
		{
			name:   "Amount up to balance minus floor is allowed",
			wallet: wallet,
			input:  validInput(99.0),
		},
		{
			name:          "Amount touching the floor is blocked",
			wallet:        wallet,
			input:         validInput(100.0),
			expectedError: ErrBelowMinimumBalance,
		},
		{
			name:          "Zero amount",
			wallet:        wallet,
			input:         validInput(0),
			expectedError: ErrInvalidAmount,
		},
		{
			name:          "Daily cap reached",
			wallet:        wallet,
			input:         validInput(10.0),
			todayCount:    DailyWithdrawalCap,
			expectedError: ErrDailyLimitReached,
		},
		{
			name:          "Topped-up money is not withdrawable",
			wallet:        &domain.Wallet{UserID: 1, Balance: 500.0, AddedMoney: 450.0},
			input:         validInput(60.0),
			expectedError: ErrInsufficientRefundBalance,
		},
		{
			name:   "Missing bill file",
			wallet: wallet,
			input: func() SubmitInput {
				in := validInput(50.0)
				in.Bill.BillFileID = ""
				return in
			}(),
			expectedError: ErrBillDetailsIncomplete,
		},
		{
			name:   "Missing IFSC",
			wallet: wallet,
			input: func() SubmitInput {
				in := validInput(50.0)
				in.Bank.IFSC = ""
				return in
			}(),
			expectedError: ErrBankDetailsIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEligibility(tt.wallet, tt.input, tt.todayCount)
			assert.Equal(t, tt.expectedError, err)
		})
	}
}

func TestSubmit(t *testing.T) {
	service, repo, walletRepo, _, _ := NewMock(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		input         SubmitInput
		prepareMock   func()
		expectedError error
	}{
		{
			name:  "Successful submission",
			input: validInput(200.0),
			prepareMock: func() {
				walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(&domain.Wallet{
					UserID: 1, Balance: 900.0, AddedMoney: 100.0,
				}, nil)
				repo.EXPECT().CountSince(gomock.Any(), 1, gomock.Any()).Return(1, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, wr *domain.WithdrawalRequest) (*domain.WithdrawalRequest, error) {
						assert.Equal(t, domain.WithdrawalPending, wr.Status)
						assert.Equal(t, 200.0, wr.Amount)
						wr.ID = 7
						return wr, nil
					})
			},
		},
		{
			name:  "Sixth request of the day is refused",
			input: validInput(10.0),
			prepareMock: func() {
				walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(&domain.Wallet{
					UserID: 1, Balance: 900.0,
				}, nil)
				repo.EXPECT().CountSince(gomock.Any(), 1, gomock.Any()).Return(5, nil)
			},
			expectedError: ErrDailyLimitReached,
		},
		{
			name:  "No wallet behaves as zero balance",
			input: validInput(10.0),
			prepareMock: func() {
				walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(nil, nil)
				repo.EXPECT().CountSince(gomock.Any(), 1, gomock.Any()).Return(0, nil)
			},
			expectedError: ErrBelowMinimumBalance,
		},
		{
			name:  "Wallet lookup error",
			input: validInput(10.0),
			prepareMock: func() {
				walletRepo.EXPECT().GetByUserID(gomock.Any(), 1).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			created, err := service.Submit(ctx, 1, tt.input)
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
	service, repo, walletRepo, txManager, notifier := NewMock(t)
	ctx := context.Background()

	pending := &domain.WithdrawalRequest{ID: 7, UserID: 1, Amount: 200.0, Status: domain.WithdrawalPending}

	runTx := func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	}

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Successful approval debits the wallet",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(pending, nil)
				txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runTx)
				repo.EXPECT().Transition(gomock.Any(), 7, domain.WithdrawalPending, domain.WithdrawalApproved, "ok", nil).Return(true, nil)
				walletRepo.EXPECT().Debit(gomock.Any(), 1, 200.0, MinBalanceFloor).Return(&domain.Wallet{UserID: 1, Balance: 700.0}, nil)
				notifier.EXPECT().Notify(gomock.Any(), 1, "Withdrawal approved", gomock.Any())
			},
		},
		{
			name: "Wallet drained since submission rolls back",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(pending, nil)
				txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(runTx)
				repo.EXPECT().Transition(gomock.Any(), 7, domain.WithdrawalPending, domain.WithdrawalApproved, "ok", nil).Return(true, nil)
				walletRepo.EXPECT().Debit(gomock.Any(), 1, 200.0, MinBalanceFloor).Return(nil, nil)
			},
			expectedError: ErrInsufficientFunds,
		},
		{
			name: "Rejected request cannot be approved",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(&domain.WithdrawalRequest{
					ID: 7, UserID: 1, Status: domain.WithdrawalRejected,
				}, nil)
			},
			expectedError: ErrIllegalTransition,
		},
		{
			name: "Unknown request",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(nil, nil)
			},
			expectedError: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			err := service.Approve(ctx, 7, "ok")
			assert.Equal(t, tt.expectedError, err)
		})
	}
}

func TestReject(t *testing.T) {
	service, repo, _, _, notifier := NewMock(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		notes         string
		prepareMock   func()
		expectedError error
	}{
		{
			name:  "Reject with notes",
			notes: "bill unreadable",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(&domain.WithdrawalRequest{
					ID: 7, UserID: 1, Status: domain.WithdrawalPending,
				}, nil)
				repo.EXPECT().Transition(gomock.Any(), 7, domain.WithdrawalPending, domain.WithdrawalRejected, "bill unreadable", gomock.Any()).Return(true, nil)
				notifier.EXPECT().Notify(gomock.Any(), 1, "Withdrawal rejected", "bill unreadable")
			},
		},
		{
			name:          "Reject without notes is refused",
			notes:         "",
			prepareMock:   func() {},
			expectedError: ErrNotesRequired,
		},
		{
			name:  "Completed request cannot be rejected",
			notes: "late",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(&domain.WithdrawalRequest{
					ID: 7, UserID: 1, Status: domain.WithdrawalCompleted,
				}, nil)
			},
			expectedError: ErrIllegalTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			err := service.Reject(ctx, 7, tt.notes)
			assert.Equal(t, tt.expectedError, err)
		})
	}
}

func TestComplete(t *testing.T) {
	service, repo, _, _, notifier := NewMock(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Approved request completes",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(&domain.WithdrawalRequest{
					ID: 7, UserID: 1, Amount: 200.0, Status: domain.WithdrawalApproved,
				}, nil)
				repo.EXPECT().Transition(gomock.Any(), 7, domain.WithdrawalApproved, domain.WithdrawalCompleted, "paid out", gomock.Any()).Return(true, nil)
				notifier.EXPECT().Notify(gomock.Any(), 1, "Withdrawal completed", gomock.Any())
			},
		},
		{
			name: "Completing twice is a no-op",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(&domain.WithdrawalRequest{
					ID: 7, UserID: 1, Status: domain.WithdrawalCompleted,
				}, nil)
			},
		},
		{
			name: "Concurrent completion also lands as a no-op",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(&domain.WithdrawalRequest{
					ID: 7, UserID: 1, Status: domain.WithdrawalApproved,
				}, nil)
				repo.EXPECT().Transition(gomock.Any(), 7, domain.WithdrawalApproved, domain.WithdrawalCompleted, "paid out", gomock.Any()).Return(false, nil)
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(&domain.WithdrawalRequest{
					ID: 7, UserID: 1, Status: domain.WithdrawalCompleted,
				}, nil)
			},
		},
		{
			name: "Pending request cannot be completed",
			prepareMock: func() {
				repo.EXPECT().GetByID(gomock.Any(), 7).Return(&domain.WithdrawalRequest{
					ID: 7, UserID: 1, Status: domain.WithdrawalPending,
				}, nil)
			},
			expectedError: ErrIllegalTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			err := service.Complete(ctx, 7, "paid out")
			assert.Equal(t, tt.expectedError, err)
		})
	}
}
