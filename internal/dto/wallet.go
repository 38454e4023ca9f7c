package dto

type WalletResponseDTO struct {
	Balance           float64 `json:"balance" example:"500.5"`
	AddedMoney        float64 `json:"added_money" example:"200"`
	BillRefundBalance float64 `json:"bill_refund_balance" example:"300.5"`
	TodayWithdrawals  int     `json:"today_withdrawals" example:"1"`
}

type TopUpRequestDTO struct {
	Amount float64 `json:"amount" example:"500"`
}

type TopUpOrderResponseDTO struct {
	OrderID string  `json:"order_id" example:"order_NXhf2oditM4rPn"`
	KeyID   string  `json:"key_id" example:"rzp_test_abc123"`
	Amount  float64 `json:"amount" example:"500"`
}

type TopUpVerifyRequestDTO struct {
	OrderID   string `json:"order_id" example:"order_NXhf2oditM4rPn"`
	PaymentID string `json:"payment_id" example:"pay_NXhgAqnf2bBMLZ"`
	Signature string `json:"signature"`
}
