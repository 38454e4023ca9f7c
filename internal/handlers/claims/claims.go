package claims

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/internal/dto"
	"github.com/sahajm/carewallet/internal/service/claimservice"
	"github.com/sahajm/carewallet/pkg/auth"
	"github.com/sahajm/carewallet/pkg/utils"
)

type Service interface {
	Submit(ctx context.Context, userID int, claimType string, amount float64, documents []string, method domain.PaymentMethod) (*domain.ReimbursementClaim, error)
	ListForUser(ctx context.Context, userID int) ([]domain.ReimbursementClaim, error)
	ListForAdmin(ctx context.Context) ([]domain.ReimbursementClaim, error)
	Review(ctx context.Context, id int) error
	Approve(ctx context.Context, id int, approvedAmount float64, method domain.PaymentMethod) error
	Reject(ctx context.Context, id int, reason string) error
}

type ClaimHandler struct {
	service Service
}

func New(service Service) *ClaimHandler {
	return &ClaimHandler{
		service: service,
	}
}

func responseDTO(c domain.ReimbursementClaim) dto.ClaimResponseDTO {
	return dto.ClaimResponseDTO{
		ID:              c.ID,
		ClaimType:       c.ClaimType,
		Amount:          c.Amount,
		Status:          string(c.Status),
		ApprovedAmount:  c.ApprovedAmount,
		RejectionReason: c.RejectionReason,
		PaymentMethod:   string(c.PaymentMethod),
		CreatedAt:       c.CreatedAt,
		ResolvedAt:      c.ResolvedAt,
	}
}

// Submit godoc
//
//	@Summary		Submit a reimbursement claim
//	@Description	File a claim for a medical expense with supporting documents.
//	@Tags			Claims
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ClaimSubmitRequestDTO	true	"Claim"
//	@Success		201		{object}	dto.ClaimResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body or claim"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/claims [post]
func (h *ClaimHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.ClaimSubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	claim, err := h.service.Submit(r.Context(), userID, req.ClaimType, req.Amount, req.Documents, domain.PaymentMethod(req.PaymentMethod))
	if err != nil {
		if errors.Is(err, claimservice.ErrInvalidClaim) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, responseDTO(*claim))
}

// GetClaims godoc
//
//	@Summary		List own claims
//	@Tags			Claims
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.ClaimResponseDTO
//	@Success		204	"No claims yet"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/claims [get]
func (h *ClaimHandler) GetClaims(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	claims, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(claims) == 0 {
		utils.RespondWithJSON(w, http.StatusNoContent, nil)
		return
	}

	response := make([]dto.ClaimResponseDTO, 0, len(claims))
	for _, c := range claims {
		response = append(response, responseDTO(c))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// ListAll godoc
//
//	@Summary		List all claims (admin)
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.ClaimResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Admin role required"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/admin/claims [get]
func (h *ClaimHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	claims, err := h.service.ListForAdmin(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := make([]dto.ClaimResponseDTO, 0, len(claims))
	for _, c := range claims {
		response = append(response, responseDTO(c))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func claimID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func respondActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, claimservice.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, claimservice.ErrIllegalTransition):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, claimservice.ErrInvalidApproval),
		errors.Is(err, claimservice.ErrReasonRequired):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Review godoc
//
//	@Summary		Mark a claim under review (admin)
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Claim id"
//	@Success		200	{object}	utils.Response
//	@Failure		404	{object}	utils.Response	"Claim not found"
//	@Failure		409	{object}	utils.Response	"Claim is not reviewable"
//	@Router			/api/admin/claims/{id}/review [post]
func (h *ClaimHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := claimID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid claim id")
		return
	}
	if err := h.service.Review(r.Context(), id); err != nil {
		respondActionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "OK"})
}

// Approve godoc
//
//	@Summary		Approve a claim (admin)
//	@Description	Settle a claim for up to the claimed amount, paid to the wallet or by bank transfer.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Claim id"
//	@Param			request	body		dto.ClaimApproveRequestDTO	true	"Approved amount and payment method"
//	@Success		200		{object}	utils.Response
//	@Failure		404		{object}	utils.Response	"Claim not found"
//	@Failure		409		{object}	utils.Response	"Claim already resolved"
//	@Failure		422		{object}	utils.Response	"Invalid approved amount"
//	@Router			/api/admin/claims/{id}/approve [post]
func (h *ClaimHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := claimID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid claim id")
		return
	}

	var req dto.ClaimApproveRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Approve(r.Context(), id, req.ApprovedAmount, domain.PaymentMethod(req.PaymentMethod)); err != nil {
		respondActionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "OK"})
}

// Reject godoc
//
//	@Summary		Reject a claim (admin)
//	@Description	Reject a claim with a reason shown to the customer.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Claim id"
//	@Param			request	body		dto.ClaimRejectRequestDTO	true	"Rejection reason"
//	@Success		200		{object}	utils.Response
//	@Failure		404		{object}	utils.Response	"Claim not found"
//	@Failure		409		{object}	utils.Response	"Claim already resolved"
//	@Failure		422		{object}	utils.Response	"Reason is required"
//	@Router			/api/admin/claims/{id}/reject [post]
func (h *ClaimHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := claimID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid claim id")
		return
	}

	var req dto.ClaimRejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Reject(r.Context(), id, req.Reason); err != nil {
		respondActionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "OK"})
}
