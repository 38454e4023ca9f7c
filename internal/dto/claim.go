package dto

import "time"

type ClaimSubmitRequestDTO struct {
	ClaimType     string   `json:"claim_type" example:"pharmacy"`
	Amount        float64  `json:"amount" example:"1200"`
	Documents     []string `json:"documents"`
	PaymentMethod string   `json:"payment_method" example:"wallet"`
}

type ClaimResponseDTO struct {
	ID              int        `json:"id" example:"7"`
	ClaimType       string     `json:"claim_type" example:"pharmacy"`
	Amount          float64    `json:"amount" example:"1200"`
	Status          string     `json:"status" example:"submitted"`
	ApprovedAmount  float64    `json:"approved_amount,omitempty" example:"900"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	PaymentMethod   string     `json:"payment_method" example:"wallet"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

type ClaimApproveRequestDTO struct {
	ApprovedAmount float64 `json:"approved_amount" example:"900"`
	PaymentMethod  string  `json:"payment_method" example:"wallet"`
}

type ClaimRejectRequestDTO struct {
	Reason string `json:"reason" example:"bill is not readable"`
}
