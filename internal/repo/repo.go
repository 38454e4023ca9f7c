package repo

import (
	"github.com/sahajm/carewallet/internal/pg"
	claimrepo "github.com/sahajm/carewallet/internal/repo/claim-repo"
	notificationrepo "github.com/sahajm/carewallet/internal/repo/notification-repo"
	paymentorderrepo "github.com/sahajm/carewallet/internal/repo/paymentorder-repo"
	userrepo "github.com/sahajm/carewallet/internal/repo/user-repo"
	walletrepo "github.com/sahajm/carewallet/internal/repo/wallet-repo"
	withdrawalrepo "github.com/sahajm/carewallet/internal/repo/withdrawal-repo"
	"github.com/sahajm/carewallet/internal/service/authservice"
	"github.com/sahajm/carewallet/internal/service/claimservice"
	"github.com/sahajm/carewallet/internal/service/notificationservice"
	"github.com/sahajm/carewallet/internal/service/topupservice"
	"github.com/sahajm/carewallet/internal/service/walletservice"
	"github.com/sahajm/carewallet/internal/service/withdrawalservice"
)

type Repositories struct {
	UserRepo         authservice.Repo
	WalletRepo       walletservice.WalletRepo
	WithdrawalRepo   withdrawalservice.Repo
	ClaimRepo        claimservice.Repo
	PaymentOrderRepo topupservice.OrderRepo
	NotificationRepo notificationservice.Repo
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:         userrepo.New(conn),
		WalletRepo:       walletrepo.New(conn),
		WithdrawalRepo:   withdrawalrepo.New(conn),
		ClaimRepo:        claimrepo.New(conn),
		PaymentOrderRepo: paymentorderrepo.New(conn),
		NotificationRepo: notificationrepo.New(conn),
	}
}
