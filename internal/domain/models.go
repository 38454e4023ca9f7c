package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID               int       `db:"id"`
	Login            string    `db:"login"`
	PasswordHash     string    `db:"password_hash"`
	Role             Role      `db:"role"`
	MembershipNumber string    `db:"membership_number"`
	CreatedAt        time.Time `db:"created_at"`
}

// Wallet holds a user's funds split into two buckets: AddedMoney came in
// through top-ups and can only be spent, never withdrawn; the remainder
// (balance - added_money) came from approved reimbursement claims and can
// be withdrawn to a bank account.
type Wallet struct {
	ID         int     `db:"id"`
	UserID     int     `db:"user_id"`
	Balance    float64 `db:"balance"`
	AddedMoney float64 `db:"added_money"`
}

func (w *Wallet) BillRefundBalance() float64 {
	return w.Balance - w.AddedMoney
}

type PaymentOrderStatus string

const (
	PaymentOrderCreated PaymentOrderStatus = "created"
	PaymentOrderPaid    PaymentOrderStatus = "paid"
	PaymentOrderFailed  PaymentOrderStatus = "failed"
)

type PaymentOrder struct {
	ID               int                `db:"id"`
	UserID           int                `db:"user_id"`
	GatewayOrderID   string             `db:"gateway_order_id"`
	GatewayPaymentID string             `db:"gateway_payment_id"`
	Amount           float64            `db:"amount"`
	Currency         string             `db:"currency"`
	Status           PaymentOrderStatus `db:"status"`
	CreatedAt        time.Time          `db:"created_at"`
	PaidAt           *time.Time         `db:"paid_at"`
}

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalApproved  WithdrawalStatus = "approved"
	WithdrawalRejected  WithdrawalStatus = "rejected"
	WithdrawalCompleted WithdrawalStatus = "completed"
)

var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalPending:  {WithdrawalApproved, WithdrawalRejected},
	WithdrawalApproved: {WithdrawalCompleted},
}

func (s WithdrawalStatus) CanTransition(to WithdrawalStatus) bool {
	for _, next := range withdrawalTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type BankDetails struct {
	AccountHolder string `db:"account_holder"`
	AccountNumber string `db:"account_number"`
	IFSC          string `db:"ifsc"`
	BankName      string `db:"bank_name"`
}

type BillMetadata struct {
	BillType   string `db:"bill_type"`
	BillNumber string `db:"bill_number"`
	BillDate   string `db:"bill_date"`
	BillFileID string `db:"bill_file_id"`
}

type WithdrawalRequest struct {
	ID          int              `db:"id"`
	UserID      int              `db:"user_id"`
	Amount      float64          `db:"amount"`
	Bank        BankDetails
	Bill        BillMetadata
	Status      WithdrawalStatus `db:"status"`
	Notes       string           `db:"notes"`
	CreatedAt   time.Time        `db:"created_at"`
	ProcessedAt *time.Time       `db:"processed_at"`
}

type ClaimStatus string

const (
	ClaimSubmitted   ClaimStatus = "submitted"
	ClaimUnderReview ClaimStatus = "under_review"
	ClaimApproved    ClaimStatus = "approved"
	ClaimRejected    ClaimStatus = "rejected"
)

var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimSubmitted:   {ClaimUnderReview, ClaimApproved, ClaimRejected},
	ClaimUnderReview: {ClaimApproved, ClaimRejected},
}

func (s ClaimStatus) CanTransition(to ClaimStatus) bool {
	for _, next := range claimTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodWallet       PaymentMethod = "wallet"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type ReimbursementClaim struct {
	ID              int           `db:"id"`
	UserID          int           `db:"user_id"`
	ClaimType       string        `db:"claim_type"`
	Amount          float64       `db:"amount"`
	Documents       []string      `db:"documents"`
	Status          ClaimStatus   `db:"status"`
	ApprovedAmount  float64       `db:"approved_amount"`
	RejectionReason string        `db:"rejection_reason"`
	PaymentMethod   PaymentMethod `db:"payment_method"`
	CreatedAt       time.Time     `db:"created_at"`
	ResolvedAt      *time.Time    `db:"resolved_at"`
}

type Notification struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}
