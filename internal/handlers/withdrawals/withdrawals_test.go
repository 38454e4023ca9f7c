package withdrawals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/internal/dto"
	"github.com/sahajm/carewallet/internal/service/withdrawalservice"
	"github.com/sahajm/carewallet/pkg/auth"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*WithdrawalHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	ctx := context.WithValue(req.Context(), auth.UserIDKey, 1)
	ctx = context.WithValue(ctx, auth.RoleKey, domain.RoleCustomer)
	return req.WithContext(ctx)
}

func adminRequest(method, target, body, id string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	ctx := context.WithValue(req.Context(), auth.UserIDKey, 9)
	ctx = context.WithValue(ctx, auth.RoleKey, domain.RoleAdmin)

	rctx := chi.NewRouteContext()
	if id != "" {
		rctx.URLParams.Add("id", id)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return req.WithContext(ctx)
}

const submitBody = `{
	"amount": 250,
	"account_holder": "R. Sharma",
	"account_number": "50100123456789",
	"ifsc": "HDFC0001234",
	"bank_name": "HDFC Bank",
	"bill_type": "pharmacy",
	"bill_number": "INV-2041",
	"bill_date": "2024-11-02",
	"bill_file_id": "uploads/bills/8f3c.pdf"
}`

func TestSubmitHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Request created",
			body: submitBody,
			prepareMock: func() {
				service.EXPECT().Submit(gomock.Any(), 1, gomock.Any()).DoAndReturn(
					func(_ context.Context, userID int, in withdrawalservice.SubmitInput) (*domain.WithdrawalRequest, error) {
						assert.Equal(t, 250.0, in.Amount)
						assert.Equal(t, "HDFC0001234", in.Bank.IFSC)
						assert.Equal(t, "pharmacy", in.Bill.BillType)
						return &domain.WithdrawalRequest{
							ID: 12, UserID: userID, Amount: in.Amount,
							Status: domain.WithdrawalPending, CreatedAt: time.Now(),
						}, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Daily cap reached",
			body: submitBody,
			prepareMock: func() {
				service.EXPECT().Submit(gomock.Any(), 1, gomock.Any()).Return(nil, withdrawalservice.ErrDailyLimitReached)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "Invalid request body",
			body:         `{bad`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := authedRequest(http.MethodPost, "/api/user/withdrawals", tt.body)
			w := httptest.NewRecorder()
			handler.Submit(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestCheckEligibilityHandler(t *testing.T) {
	handler, service := NewMock(t)

	t.Run("Eligible", func(t *testing.T) {
		service.EXPECT().Check(gomock.Any(), 1, gomock.Any()).Return(nil)

		req := authedRequest(http.MethodPost, "/api/user/withdrawals/check", submitBody)
		w := httptest.NewRecorder()
		handler.CheckEligibility(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.WithdrawalCheckResponseDTO
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Eligible)
	})

	t.Run("Rule violation still returns 200", func(t *testing.T) {
		service.EXPECT().Check(gomock.Any(), 1, gomock.Any()).Return(withdrawalservice.ErrBelowMinimumBalance)

		req := authedRequest(http.MethodPost, "/api/user/withdrawals/check", submitBody)
		w := httptest.NewRecorder()
		handler.CheckEligibility(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.WithdrawalCheckResponseDTO
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp.Eligible)
		assert.Equal(t, withdrawalservice.ErrBelowMinimumBalance.Error(), resp.Reason)
	})
}

func TestGetWithdrawalsHandler(t *testing.T) {
	handler, service := NewMock(t)

	t.Run("With requests", func(t *testing.T) {
		service.EXPECT().ListForUser(gomock.Any(), 1).Return([]domain.WithdrawalRequest{
			{ID: 12, UserID: 1, Amount: 250.0, Status: domain.WithdrawalPending},
		}, nil)

		req := authedRequest(http.MethodGet, "/api/user/withdrawals", "")
		w := httptest.NewRecorder()
		handler.GetWithdrawals(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp []dto.WithdrawalResponseDTO
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Len(t, resp, 1)
		assert.Equal(t, "pending", resp[0].Status)
	})

	t.Run("No requests", func(t *testing.T) {
		service.EXPECT().ListForUser(gomock.Any(), 1).Return(nil, nil)

		req := authedRequest(http.MethodGet, "/api/user/withdrawals", "")
		w := httptest.NewRecorder()
		handler.GetWithdrawals(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestAdminActions(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		call         func(w http.ResponseWriter, r *http.Request)
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Approve",
			call: handler.Approve,
			body: `{"notes":"ok"}`,
			prepareMock: func() {
				service.EXPECT().Approve(gomock.Any(), 12, "ok").Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Approve with drained wallet",
			call: handler.Approve,
			body: `{}`,
			prepareMock: func() {
				service.EXPECT().Approve(gomock.Any(), 12, "").Return(withdrawalservice.ErrInsufficientFunds)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name: "Reject without notes",
			call: handler.Reject,
			body: `{}`,
			prepareMock: func() {
				service.EXPECT().Reject(gomock.Any(), 12, "").Return(withdrawalservice.ErrNotesRequired)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name: "Complete a non-approved request",
			call: handler.Complete,
			body: `{}`,
			prepareMock: func() {
				service.EXPECT().Complete(gomock.Any(), 12, "").Return(withdrawalservice.ErrIllegalTransition)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Unknown request",
			call: handler.Approve,
			body: `{}`,
			prepareMock: func() {
				service.EXPECT().Approve(gomock.Any(), 12, "").Return(withdrawalservice.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := adminRequest(http.MethodPost, "/api/admin/withdrawals/12/approve", tt.body, "12")
			w := httptest.NewRecorder()
			tt.call(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}

	t.Run("Bad id", func(t *testing.T) {
		req := adminRequest(http.MethodPost, "/api/admin/withdrawals/x/approve", `{}`, "x")
		w := httptest.NewRecorder()
		handler.Approve(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExportHandler(t *testing.T) {
	handler, service := NewMock(t)

	processedAt := time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC)
	service.EXPECT().ListForAdmin(gomock.Any(), domain.WithdrawalStatus("approved")).Return([]domain.WithdrawalRequest{
		{
			ID: 12, UserID: 1, Amount: 250.0, Status: domain.WithdrawalApproved,
			Bank: domain.BankDetails{
				AccountHolder: "R. Sharma", AccountNumber: "50100123456789",
				IFSC: "HDFC0001234", BankName: "HDFC Bank",
			},
			Bill: domain.BillMetadata{
				BillType: "pharmacy", BillNumber: "INV-2041", BillDate: "2024-11-02",
			},
			CreatedAt:   time.Date(2024, 11, 2, 9, 0, 0, 0, time.UTC),
			ProcessedAt: &processedAt,
		},
	}, nil)

	req := adminRequest(http.MethodGet, "/api/admin/withdrawals/export?status=approved", "", "")
	w := httptest.NewRecorder()
	handler.Export(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, strings.Join(exportHeader, ","), lines[0])
	assert.Contains(t, lines[1], "250.00")
	assert.Contains(t, lines[1], "HDFC0001234")
	assert.Contains(t, lines[1], "approved")
}
