package paymentorderrepo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sahajm/carewallet/internal/domain"
	"github.com/sahajm/carewallet/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

const selectColumns = `
	id, user_id, gateway_order_id, gateway_payment_id,
	amount, currency, status, created_at, paid_at
`

func scanOrder(row pgx.Row) (*domain.PaymentOrder, error) {
	var o domain.PaymentOrder
	err := row.Scan(
		&o.ID, &o.UserID, &o.GatewayOrderID, &o.GatewayPaymentID,
		&o.Amount, &o.Currency, &o.Status, &o.CreatedAt, &o.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) Create(ctx context.Context, o *domain.PaymentOrder) (*domain.PaymentOrder, error) {
	query := `
		INSERT INTO payment_orders (user_id, gateway_order_id, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		o.UserID, o.GatewayOrderID, o.Amount, o.Currency, o.Status, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		zap.L().Error("can't save payment order", zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *Repository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM payment_orders
        WHERE gateway_order_id = $1
    `
	o, err := scanOrder(r.db.QueryRow(ctx, query, gatewayOrderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find payment order", zap.Error(err))
		return nil, err
	}
	return o, nil
}

// MarkPaid flips the order from created to paid. The status guard is the
// idempotency key for crediting: a replayed callback or a concurrent
// reconciler run affects zero rows and must not credit again.
func (r *Repository) MarkPaid(ctx context.Context, gatewayOrderID, gatewayPaymentID string, paidAt time.Time) (bool, error) {
	query := `
        UPDATE payment_orders
        SET status = 'paid', gateway_payment_id = $1, paid_at = $2
        WHERE gateway_order_id = $3 AND status = 'created'
    `
	tag, err := r.db.Exec(ctx, query, gatewayPaymentID, paidAt, gatewayOrderID)
	if err != nil {
		zap.L().Error("failed to mark payment order paid", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) MarkFailed(ctx context.Context, gatewayOrderID string) (bool, error) {
	query := `
        UPDATE payment_orders
        SET status = 'failed'
        WHERE gateway_order_id = $1 AND status = 'created'
    `
	tag, err := r.db.Exec(ctx, query, gatewayOrderID)
	if err != nil {
		zap.L().Error("failed to mark payment order failed", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FindStale returns orders still in created older than the cutoff, for the
// reconciler to settle against the gateway.
func (r *Repository) FindStale(ctx context.Context, olderThan time.Time, limit uint32) ([]domain.PaymentOrder, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM payment_orders
        WHERE status = 'created' AND created_at < $1
        ORDER BY created_at ASC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, olderThan, int(limit))
	if err != nil {
		zap.L().Error("can't get stale payment orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []domain.PaymentOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan payment order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}
