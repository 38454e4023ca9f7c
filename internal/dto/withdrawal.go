package dto

import "time"

type WithdrawalSubmitRequestDTO struct {
	Amount        float64 `json:"amount" example:"250"`
	AccountHolder string  `json:"account_holder" example:"R. Sharma"`
	AccountNumber string  `json:"account_number" example:"50100123456789"`
	IFSC          string  `json:"ifsc" example:"HDFC0001234"`
	BankName      string  `json:"bank_name" example:"HDFC Bank"`
	BillType      string  `json:"bill_type" example:"pharmacy"`
	BillNumber    string  `json:"bill_number" example:"INV-2041"`
	BillDate      string  `json:"bill_date" example:"2024-11-02"`
	BillFileID    string  `json:"bill_file_id" example:"uploads/bills/8f3c.pdf"`
}

type WithdrawalResponseDTO struct {
	ID          int        `json:"id" example:"12"`
	Amount      float64    `json:"amount" example:"250"`
	Status      string     `json:"status" example:"pending"`
	BankName    string     `json:"bank_name" example:"HDFC Bank"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

type WithdrawalActionRequestDTO struct {
	Notes string `json:"notes,omitempty"`
}

type WithdrawalCheckResponseDTO struct {
	Eligible bool   `json:"eligible" example:"false"`
	Reason   string `json:"reason,omitempty" example:"daily withdrawal limit reached"`
}
