package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sahajm/carewallet/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TopUpSettler is the slice of the top-up service the reconciler drives:
// finding payment orders stuck in "created" and settling them against the
// gateway's view of the payment.
type TopUpSettler interface {
	StaleOrders(ctx context.Context, age time.Duration, limit uint32) ([]domain.PaymentOrder, error)
	SettleOrder(ctx context.Context, order domain.PaymentOrder) (bool, error)
}

var inFlightOrders sync.Map

type Service struct {
	topUps       TopUpSettler
	limit        uint32
	staleAfter   time.Duration
	pollInterval time.Duration
	workerPool   WorkerPoolI
}

func New(topUps TopUpSettler) *Service {
	return &Service{
		topUps:       topUps,
		limit:        1000,
		staleAfter:   time.Minute * 5,
		pollInterval: time.Minute * 1,
		workerPool:   NewWorkerPool(10),
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Payment reconciler started")
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping reconciler")
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

func (s *Service) reconcile(ctx context.Context) {
	orders, err := s.topUps.StaleOrders(ctx, s.staleAfter, atomic.LoadUint32(&s.limit))
	if err != nil {
		zap.L().Error("Failed to fetch stale payment orders", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, order := range orders {
		order := order

		if _, loaded := inFlightOrders.LoadOrStore(order.GatewayOrderID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer inFlightOrders.Delete(order.GatewayOrderID)
				return s.settle(ctx, order)
			})
			if err != nil {
				inFlightOrders.Delete(order.GatewayOrderID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error reconciling payment orders", zap.Error(err))
	}
}

func (s *Service) settle(ctx context.Context, order domain.PaymentOrder) error {
	settled, err := s.topUps.SettleOrder(ctx, order)
	if err != nil {
		return err
	}
	if settled {
		zap.L().Info("Reconciled stale payment order",
			zap.String("gatewayOrderID", order.GatewayOrderID),
			zap.Int("userID", order.UserID),
		)
	}
	return nil
}
