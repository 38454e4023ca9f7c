package service

import (
	"github.com/sahajm/carewallet/internal/handlers/auth"
	"github.com/sahajm/carewallet/internal/handlers/claims"
	"github.com/sahajm/carewallet/internal/handlers/notifications"
	"github.com/sahajm/carewallet/internal/handlers/wallet"
	"github.com/sahajm/carewallet/internal/handlers/withdrawals"

	pkgauth "github.com/sahajm/carewallet/pkg/auth"

	"github.com/sahajm/carewallet/internal/pg"
	"github.com/sahajm/carewallet/internal/repo"
	authservice "github.com/sahajm/carewallet/internal/service/authservice"
	claimservice "github.com/sahajm/carewallet/internal/service/claimservice"
	notificationservice "github.com/sahajm/carewallet/internal/service/notificationservice"
	topupservice "github.com/sahajm/carewallet/internal/service/topupservice"
	walletservice "github.com/sahajm/carewallet/internal/service/walletservice"
	withdrawalservice "github.com/sahajm/carewallet/internal/service/withdrawalservice"
)

type Services struct {
	AuthService         auth.Service
	WalletService       wallet.WalletService
	TopUpService        *topupservice.Service
	WithdrawalService   withdrawals.Service
	ClaimService        claims.Service
	NotificationService notifications.Service
}

func New(repo *repo.Repositories, txManager pg.TXManager, gateway topupservice.Gateway) *Services {
	notificationService := notificationservice.New(repo.NotificationRepo)
	walletService := walletservice.New(repo.WalletRepo, repo.WithdrawalRepo)
	topUpService := topupservice.New(repo.PaymentOrderRepo, walletService, repo.WalletRepo, gateway, txManager)
	withdrawalService := withdrawalservice.New(repo.WithdrawalRepo, repo.WalletRepo, txManager, notificationService)
	claimService := claimservice.New(repo.ClaimRepo, walletService, repo.WalletRepo, txManager, notificationService)
	authService := authservice.New(repo.UserRepo, &pkgauth.HashService{}, &pkgauth.JWTService{})

	return &Services{
		AuthService:         authService,
		WalletService:       walletService,
		TopUpService:        topUpService,
		WithdrawalService:   withdrawalService,
		ClaimService:        claimService,
		NotificationService: notificationService,
	}
}
