package withdrawalservice

import (
	"errors"

	"github.com/sahajm/carewallet/internal/domain"
)

const (
	// DailyWithdrawalCap bounds the number of requests a user may file
	// per calendar day, counting rejected ones.
	DailyWithdrawalCap = 5
	// MinBalanceFloor is the amount that must stay in the wallet at all
	// times.
	MinBalanceFloor = 1.0
)

var (
	ErrInvalidAmount             = errors.New("amount must be positive")
	ErrDailyLimitReached         = errors.New("daily withdrawal limit reached")
	ErrBelowMinimumBalance       = errors.New("amount would breach the minimum balance")
	ErrInsufficientRefundBalance = errors.New("insufficient bill refund balance")
	ErrBillDetailsIncomplete     = errors.New("bill type, number, date and file are required")
	ErrBankDetailsIncomplete     = errors.New("account number and IFSC are required")
)

type SubmitInput struct {
	Amount float64
	Bank   domain.BankDetails
	Bill   domain.BillMetadata
}

// CheckEligibility is the pre-flight gate for a withdrawal request. It is
// a pure function of the wallet, the proposed request and today's request
// count; Submit re-runs it server-side so the client call is a UX
// convenience only.
func CheckEligibility(wallet *domain.Wallet, in SubmitInput, todayCount int) error {
	if todayCount >= DailyWithdrawalCap {
		return ErrDailyLimitReached
	}
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	if in.Amount > wallet.Balance-MinBalanceFloor {
		return ErrBelowMinimumBalance
	}
	if in.Amount > wallet.BillRefundBalance() {
		return ErrInsufficientRefundBalance
	}
	if in.Bill.BillType == "" || in.Bill.BillNumber == "" || in.Bill.BillDate == "" || in.Bill.BillFileID == "" {
		return ErrBillDetailsIncomplete
	}
	if in.Bank.AccountNumber == "" || in.Bank.IFSC == "" {
		return ErrBankDetailsIncomplete
	}
	return nil
}
