package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/sahajm/carewallet/docs"
	"github.com/sahajm/carewallet/internal/config"
	authhandlers "github.com/sahajm/carewallet/internal/handlers/auth"
	claimhandlers "github.com/sahajm/carewallet/internal/handlers/claims"
	notificationhandlers "github.com/sahajm/carewallet/internal/handlers/notifications"
	wallethandlers "github.com/sahajm/carewallet/internal/handlers/wallet"
	withdrawalhandlers "github.com/sahajm/carewallet/internal/handlers/withdrawals"
	"github.com/sahajm/carewallet/internal/service"
	"github.com/sahajm/carewallet/pkg/auth"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetWallet(w http.ResponseWriter, r *http.Request)
	CreateTopUpOrder(w http.ResponseWriter, r *http.Request)
	VerifyTopUp(w http.ResponseWriter, r *http.Request)
	AddFunds(w http.ResponseWriter, r *http.Request)
}

type WithdrawalHandler interface {
	CheckEligibility(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	GetWithdrawals(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type ClaimHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	GetClaims(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type NotificationHandler interface {
	GetNotifications(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler         AuthHandler
	WalletHandler       WalletHandler
	WithdrawalHandler   WithdrawalHandler
	ClaimHandler        ClaimHandler
	NotificationHandler NotificationHandler
}

func New(s *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		AuthHandler:         authhandlers.New(s.AuthService),
		WalletHandler:       wallethandlers.New(s.WalletService, s.TopUpService, cfg.GatewayKeyID, cfg.TestMode),
		WithdrawalHandler:   withdrawalhandlers.New(s.WithdrawalService),
		ClaimHandler:        claimhandlers.New(s.ClaimService),
		NotificationHandler: notificationhandlers.New(s.NotificationService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.AuthHandler.Register)
		r.Post("/login", h.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware)
			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", h.WalletHandler.GetWallet)
				r.Post("/topup", h.WalletHandler.CreateTopUpOrder)
				r.Post("/topup/verify", h.WalletHandler.VerifyTopUp)
				r.Post("/add", h.WalletHandler.AddFunds)
			})
			r.Route("/withdrawals", func(r chi.Router) {
				r.Post("/", h.WithdrawalHandler.Submit)
				r.Get("/", h.WithdrawalHandler.GetWithdrawals)
				r.Post("/check", h.WithdrawalHandler.CheckEligibility)
			})
			r.Route("/claims", func(r chi.Router) {
				r.Post("/", h.ClaimHandler.Submit)
				r.Get("/", h.ClaimHandler.GetClaims)
			})
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.NotificationHandler.GetNotifications)
				r.Post("/{id}/read", h.NotificationHandler.MarkRead)
			})
		})
	})
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.AuthMiddleware, auth.AdminMiddleware)
		r.Route("/withdrawals", func(r chi.Router) {
			r.Get("/", h.WithdrawalHandler.ListAll)
			r.Get("/export", h.WithdrawalHandler.Export)
			r.Post("/{id}/approve", h.WithdrawalHandler.Approve)
			r.Post("/{id}/reject", h.WithdrawalHandler.Reject)
			r.Post("/{id}/complete", h.WithdrawalHandler.Complete)
		})
		r.Route("/claims", func(r chi.Router) {
			r.Get("/", h.ClaimHandler.ListAll)
			r.Post("/{id}/review", h.ClaimHandler.Review)
			r.Post("/{id}/approve", h.ClaimHandler.Approve)
			r.Post("/{id}/reject", h.ClaimHandler.Reject)
		})
	})

	return r
}
