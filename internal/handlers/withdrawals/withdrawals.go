package withdrawals

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/internal/dto"
	"github.com/sahajm/carewallet/internal/service/withdrawalservice"
	"github.com/sahajm/carewallet/pkg/auth"
	"github.com/sahajm/carewallet/pkg/utils"
	"go.uber.org/zap"
)

type Service interface {
	Check(ctx context.Context, userID int, in withdrawalservice.SubmitInput) error
	Submit(ctx context.Context, userID int, in withdrawalservice.SubmitInput) (*domain.WithdrawalRequest, error)
	ListForUser(ctx context.Context, userID int) ([]domain.WithdrawalRequest, error)
	ListForAdmin(ctx context.Context, status domain.WithdrawalStatus) ([]domain.WithdrawalRequest, error)
	Approve(ctx context.Context, id int, notes string) error
	Reject(ctx context.Context, id int, notes string) error
	Complete(ctx context.Context, id int, notes string) error
}

type WithdrawalHandler struct {
	service Service
}

func New(service Service) *WithdrawalHandler {
	return &WithdrawalHandler{
		service: service,
	}
}

func submitInput(req dto.WithdrawalSubmitRequestDTO) withdrawalservice.SubmitInput {
	return withdrawalservice.SubmitInput{
		Amount: req.Amount,
		Bank: domain.BankDetails{
			AccountHolder: req.AccountHolder,
			AccountNumber: req.AccountNumber,
			IFSC:          req.IFSC,
			BankName:      req.BankName,
		},
		Bill: domain.BillMetadata{
			BillType:   req.BillType,
			BillNumber: req.BillNumber,
			BillDate:   req.BillDate,
			BillFileID: req.BillFileID,
		},
	}
}

func responseDTO(wr domain.WithdrawalRequest) dto.WithdrawalResponseDTO {
	return dto.WithdrawalResponseDTO{
		ID:          wr.ID,
		Amount:      wr.Amount,
		Status:      string(wr.Status),
		BankName:    wr.Bank.BankName,
		Notes:       wr.Notes,
		CreatedAt:   wr.CreatedAt,
		ProcessedAt: wr.ProcessedAt,
	}
}

// eligibilityErrors are user-facing rule violations, as opposed to
// infrastructure failures.
func isEligibilityError(err error) bool {
	switch {
	case errors.Is(err, withdrawalservice.ErrInvalidAmount),
		errors.Is(err, withdrawalservice.ErrDailyLimitReached),
		errors.Is(err, withdrawalservice.ErrBelowMinimumBalance),
		errors.Is(err, withdrawalservice.ErrInsufficientRefundBalance),
		errors.Is(err, withdrawalservice.ErrBillDetailsIncomplete),
		errors.Is(err, withdrawalservice.ErrBankDetailsIncomplete):
		return true
	}
	return false
}

// CheckEligibility godoc
//
//	@Summary		Pre-check a withdrawal request
//	@Description	Run the eligibility rules against a draft request without creating it. The same rules run again on submit.
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.WithdrawalSubmitRequestDTO	true	"Draft withdrawal request"
//	@Success		200		{object}	dto.WithdrawalCheckResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/withdrawals/check [post]
func (h *WithdrawalHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.WithdrawalSubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.service.Check(r.Context(), userID, submitInput(req))
	switch {
	case err == nil:
		utils.RespondWithJSON(w, http.StatusOK, dto.WithdrawalCheckResponseDTO{Eligible: true})
	case isEligibilityError(err):
		utils.RespondWithJSON(w, http.StatusOK, dto.WithdrawalCheckResponseDTO{Eligible: false, Reason: err.Error()})
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Submit godoc
//
//	@Summary		Submit a withdrawal request
//	@Description	File a request to withdraw bill-refund money to a bank account. Requires complete bank details and bill metadata.
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.WithdrawalSubmitRequestDTO	true	"Withdrawal request"
//	@Success		201		{object}	dto.WithdrawalResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		422		{object}	utils.Response	"Eligibility rule violated"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/withdrawals [post]
func (h *WithdrawalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.WithdrawalSubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Submit(r.Context(), userID, submitInput(req))
	if err != nil {
		if isEligibilityError(err) {
			utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, responseDTO(*created))
}

// GetWithdrawals godoc
//
//	@Summary		List own withdrawal requests
//	@Tags			Withdrawals
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.WithdrawalResponseDTO
//	@Success		204	"No requests yet"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/withdrawals [get]
func (h *WithdrawalHandler) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	requests, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(requests) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}

	response := make([]dto.WithdrawalResponseDTO, 0, len(requests))
	for _, wr := range requests {
		response = append(response, responseDTO(wr))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// ListAll godoc
//
//	@Summary		List withdrawal requests (admin)
//	@Description	List every withdrawal request, optionally filtered by status.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(pending, approved, rejected, completed)
//	@Success		200		{array}		dto.WithdrawalResponseDTO
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Admin role required"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/withdrawals [get]
func (h *WithdrawalHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	status := domain.WithdrawalStatus(r.URL.Query().Get("status"))

	requests, err := h.service.ListForAdmin(r.Context(), status)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.WithdrawalResponseDTO, 0, len(requests))
	for _, wr := range requests {
		response = append(response, responseDTO(wr))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *WithdrawalHandler) action(w http.ResponseWriter, r *http.Request, act func(ctx context.Context, id int, notes string) error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	var req dto.WithdrawalActionRequestDTO
	if r.Body != nil {
		// The body is optional for approve and complete.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	err = act(r.Context(), id, req.Notes)
	switch {
	case err == nil:
		utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "OK"})
	case errors.Is(err, withdrawalservice.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, withdrawalservice.ErrIllegalTransition):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, withdrawalservice.ErrNotesRequired),
		errors.Is(err, withdrawalservice.ErrInsufficientFunds):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Approve godoc
//
//	@Summary		Approve a withdrawal request (admin)
//	@Description	Move a pending request to approved and debit the wallet.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Request id"
//	@Param			request	body		dto.WithdrawalActionRequestDTO	false	"Optional notes"
//	@Success		200		{object}	utils.Response
//	@Failure		404		{object}	utils.Response	"Request not found"
//	@Failure		409		{object}	utils.Response	"Request is not pending"
//	@Failure		422		{object}	utils.Response	"Wallet no longer covers the amount"
//	@Router			/api/admin/withdrawals/{id}/approve [post]
func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.service.Approve)
}

// Reject godoc
//
//	@Summary		Reject a withdrawal request (admin)
//	@Description	Move a pending request to rejected. Notes are mandatory and shown to the customer.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Request id"
//	@Param			request	body		dto.WithdrawalActionRequestDTO	true	"Rejection notes"
//	@Success		200		{object}	utils.Response
//	@Failure		404		{object}	utils.Response	"Request not found"
//	@Failure		409		{object}	utils.Response	"Request is not pending"
//	@Failure		422		{object}	utils.Response	"Notes are required"
//	@Router			/api/admin/withdrawals/{id}/reject [post]
func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.service.Reject)
}

// Complete godoc
//
//	@Summary		Complete a withdrawal request (admin)
//	@Description	Record that the bank transfer for an approved request went out. Idempotent.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Request id"
//	@Param			request	body		dto.WithdrawalActionRequestDTO	false	"Optional notes"
//	@Success		200		{object}	utils.Response
//	@Failure		404		{object}	utils.Response	"Request not found"
//	@Failure		409		{object}	utils.Response	"Request is not approved"
//	@Router			/api/admin/withdrawals/{id}/complete [post]
func (h *WithdrawalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.service.Complete)
}

var exportHeader = []string{
	"id", "user_id", "amount", "status",
	"account_holder", "account_number", "ifsc", "bank_name",
	"bill_type", "bill_number", "bill_date",
	"notes", "created_at", "processed_at",
}

// Export godoc
//
//	@Summary		Export withdrawal requests as CSV (admin)
//	@Description	Download every withdrawal request, optionally filtered by status, as a CSV file.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		text/csv
//	@Param			status	query	string	false	"Filter by status"	Enums(pending, approved, rejected, completed)
//	@Success		200		{string}	string	"CSV payload"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Admin role required"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/withdrawals/export [get]
func (h *WithdrawalHandler) Export(w http.ResponseWriter, r *http.Request) {
	status := domain.WithdrawalStatus(r.URL.Query().Get("status"))

	requests, err := h.service.ListForAdmin(r.Context(), status)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="withdrawals-%s.csv"`, time.Now().Format("2006-01-02")))

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		zap.L().Error("can't write csv header", zap.Error(err))
		return
	}
	for _, wr := range requests {
		processedAt := ""
		if wr.ProcessedAt != nil {
			processedAt = wr.ProcessedAt.Format(time.RFC3339)
		}
		record := []string{
			strconv.Itoa(wr.ID),
			strconv.Itoa(wr.UserID),
			strconv.FormatFloat(wr.Amount, 'f', 2, 64),
			string(wr.Status),
			wr.Bank.AccountHolder,
			wr.Bank.AccountNumber,
			wr.Bank.IFSC,
			wr.Bank.BankName,
			wr.Bill.BillType,
			wr.Bill.BillNumber,
			wr.Bill.BillDate,
			wr.Notes,
			wr.CreatedAt.Format(time.RFC3339),
			processedAt,
		}
		if err := cw.Write(record); err != nil {
			zap.L().Error("can't write csv record", zap.Error(err))
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		zap.L().Error("can't flush csv", zap.Error(err))
	}
}
