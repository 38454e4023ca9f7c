package claimrepo

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
	id, user_id, claim_type, amount, documents,
	status, approved_amount, rejection_reason, payment_method,
	created_at, resolved_at
`

func scanClaim(row pgx.Row) (*domain.ReimbursementClaim, error) {
	var c domain.ReimbursementClaim
	err := row.Scan(
		&c.ID, &c.UserID, &c.ClaimType, &c.Amount, &c.Documents,
		&c.Status, &c.ApprovedAmount, &c.RejectionReason, &c.PaymentMethod,
		&c.CreatedAt, &c.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) Create(ctx context.Context, c *domain.ReimbursementClaim) (*domain.ReimbursementClaim, error) {
	query := `
		INSERT INTO reimbursement_claims (
			user_id, claim_type, amount, documents, status, payment_method, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		c.UserID, c.ClaimType, c.Amount, c.Documents, c.Status, c.PaymentMethod, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		zap.L().Error("can't save reimbursement claim", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.ReimbursementClaim, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM reimbursement_claims
        WHERE id = $1
    `
	c, err := scanClaim(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find reimbursement claim", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *Repository) ListByUserID(ctx context.Context, userID int) ([]domain.ReimbursementClaim, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM reimbursement_claims
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, userID)
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.ReimbursementClaim, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM reimbursement_claims
        ORDER BY created_at DESC
    `
	return r.list(ctx, query)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.ReimbursementClaim, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to fetch reimbursement claims", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var claims []domain.ReimbursementClaim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			zap.L().Error("failed to scan reimbursement claim row", zap.Error(err))
			return nil, err
		}
		claims = append(claims, *c)
	}
	return claims, nil
}

// Transition moves a claim between statuses with a guard on the current
// one, same contract as the withdrawal repository.
func (r *Repository) Transition(ctx context.Context, id int, from, to domain.ClaimStatus, approvedAmount float64, reason string, resolvedAt *time.Time) (bool, error) {
	query := `
        UPDATE reimbursement_claims
        SET status = $1, approved_amount = $2, rejection_reason = $3, resolved_at = $4
        WHERE id = $5 AND status = $6
    `
	tag, err := r.db.Exec(ctx, query, to, approvedAmount, reason, resolvedAt, id, from)
	if err != nil {
		zap.L().Error("failed to transition reimbursement claim", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
