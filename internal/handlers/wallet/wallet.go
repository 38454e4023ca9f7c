package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/internal/dto"
	"github.com/sahajm/carewallet/internal/service/topupservice"
	"github.com/sahajm/carewallet/internal/service/walletservice"
	"github.com/sahajm/carewallet/pkg/auth"
	"github.com/sahajm/carewallet/pkg/utils"
)

type WalletService interface {
	GetWallet(ctx context.Context, userID int) (*domain.Wallet, int, error)
	AddFunds(ctx context.Context, userID int, amount float64) (*domain.Wallet, error)
}

type TopUpService interface {
	CreateOrder(ctx context.Context, userID int, amount float64) (*domain.PaymentOrder, error)
	VerifyAndCredit(ctx context.Context, userID int, gatewayOrderID, gatewayPaymentID, signature string) (*domain.Wallet, error)
}

type WalletHandler struct {
	walletService WalletService
	topUpService  TopUpService
	gatewayKeyID  string
	testMode      bool
}

func New(walletService WalletService, topUpService TopUpService, gatewayKeyID string, testMode bool) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		topUpService:  topUpService,
		gatewayKeyID:  gatewayKeyID,
		testMode:      testMode,
	}
}

func walletDTO(wallet *domain.Wallet, todayWithdrawals int) dto.WalletResponseDTO {
	return dto.WalletResponseDTO{
		Balance:           wallet.Balance,
		AddedMoney:        wallet.AddedMoney,
		BillRefundBalance: wallet.BillRefundBalance(),
		TodayWithdrawals:  todayWithdrawals,
	}
}

// GetWallet godoc
//
//	@Summary		Get current wallet state
//	@Description	Retrieve the wallet balance split into buckets, plus today's withdrawal request count.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.WalletResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/wallet [get]
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	wallet, todayCount, err := h.walletService.GetWallet(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, walletDTO(wallet, todayCount))
}

// CreateTopUpOrder godoc
//
//	@Summary		Start a wallet top-up
//	@Description	Create a payment gateway order for the given amount. The returned order id and key id are used by the client to open the payment widget.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.TopUpRequestDTO	true	"Top-up amount"
//	@Success		200		{object}	dto.TopUpOrderResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body or amount"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		502		{object}	utils.Response	"Payment gateway unavailable"
//	@Router			/api/user/wallet/topup [post]
func (h *WalletHandler) CreateTopUpOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.TopUpRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.topUpService.CreateOrder(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, topupservice.ErrInvalidAmount) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusBadGateway, "Payment gateway unavailable")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.TopUpOrderResponseDTO{
		OrderID: order.GatewayOrderID,
		KeyID:   h.gatewayKeyID,
		Amount:  order.Amount,
	})
}

// VerifyTopUp godoc
//
//	@Summary		Verify a gateway payment and credit the wallet
//	@Description	Check the payment signature returned by the gateway and credit the added-money bucket. Safe to retry.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.TopUpVerifyRequestDTO	true	"Gateway payment identifiers and signature"
//	@Success		200		{object}	dto.WalletResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body or signature"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		404		{object}	utils.Response	"Order not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/wallet/topup/verify [post]
func (h *WalletHandler) VerifyTopUp(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.TopUpVerifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wallet, err := h.topUpService.VerifyAndCredit(r.Context(), userID, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, topupservice.ErrInvalidSignature):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, topupservice.ErrOrderNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, walletDTO(wallet, 0))
}

// AddFunds godoc
//
//	@Summary		Credit the wallet directly (test mode)
//	@Description	Skip the payment gateway and credit the added-money bucket. Only enabled when the server runs in test mode.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.TopUpRequestDTO	true	"Amount to credit"
//	@Success		200		{object}	dto.WalletResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body or amount"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		404		{object}	utils.Response	"Not available"
//	@Router			/api/user/wallet/add [post]
func (h *WalletHandler) AddFunds(w http.ResponseWriter, r *http.Request) {
	if !h.testMode {
		utils.RespondWithError(w, http.StatusNotFound, "Not available")
		return
	}
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.TopUpRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wallet, err := h.walletService.AddFunds(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, walletservice.ErrInvalidAmount) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, walletDTO(wallet, 0))
}
