package withdrawalrepo

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
	id, user_id, amount,
	account_holder, account_number, ifsc, bank_name,
	bill_type, bill_number, bill_date, bill_file_id,
	status, notes, created_at, processed_at
`

func scanRequest(row pgx.Row) (*domain.WithdrawalRequest, error) {
	var wr domain.WithdrawalRequest
	err := row.Scan(
		&wr.ID, &wr.UserID, &wr.Amount,
		&wr.Bank.AccountHolder, &wr.Bank.AccountNumber, &wr.Bank.IFSC, &wr.Bank.BankName,
		&wr.Bill.BillType, &wr.Bill.BillNumber, &wr.Bill.BillDate, &wr.Bill.BillFileID,
		&wr.Status, &wr.Notes, &wr.CreatedAt, &wr.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wr, nil
}

func (r *Repository) Create(ctx context.Context, wr *domain.WithdrawalRequest) (*domain.WithdrawalRequest, error) {
	query := `
		INSERT INTO withdrawal_requests (
			user_id, amount,
			account_holder, account_number, ifsc, bank_name,
			bill_type, bill_number, bill_date, bill_file_id,
			status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		wr.UserID, wr.Amount,
		wr.Bank.AccountHolder, wr.Bank.AccountNumber, wr.Bank.IFSC, wr.Bank.BankName,
		wr.Bill.BillType, wr.Bill.BillNumber, wr.Bill.BillDate, wr.Bill.BillFileID,
		wr.Status, wr.CreatedAt,
	).Scan(&wr.ID)
	if err != nil {
		zap.L().Error("can't save withdrawal request", zap.Error(err))
		return nil, err
	}
	return wr, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.WithdrawalRequest, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM withdrawal_requests
        WHERE id = $1
    `
	wr, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find withdrawal request", zap.Error(err))
		return nil, err
	}
	return wr, nil
}

func (r *Repository) ListByUserID(ctx context.Context, userID int) ([]domain.WithdrawalRequest, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM withdrawal_requests
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, userID)
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]domain.WithdrawalRequest, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM withdrawal_requests
        WHERE status = $1
        ORDER BY created_at DESC
    `
	return r.list(ctx, query, status)
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.WithdrawalRequest, error) {
	query := `
        SELECT ` + selectColumns + `
        FROM withdrawal_requests
        ORDER BY created_at DESC
    `
	return r.list(ctx, query)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.WithdrawalRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("failed to fetch withdrawal requests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var requests []domain.WithdrawalRequest
	for rows.Next() {
		wr, err := scanRequest(rows)
		if err != nil {
			zap.L().Error("failed to scan withdrawal request row", zap.Error(err))
			return nil, err
		}
		requests = append(requests, *wr)
	}
	return requests, nil
}

// CountSince counts a user's requests created at or after the given
// moment, regardless of their outcome. Used for the daily cap.
func (r *Repository) CountSince(ctx context.Context, userID int, since time.Time) (int, error) {
	query := `
        SELECT COUNT(*)
        FROM withdrawal_requests
        WHERE user_id = $1 AND created_at >= $2
    `
	var count int
	err := r.db.QueryRow(ctx, query, userID, since).Scan(&count)
	if err != nil {
		zap.L().Error("failed to count withdrawal requests", zap.Error(err))
		return 0, err
	}
	return count, nil
}

// Transition moves a request from one status to another. The WHERE guard
// on the current status makes concurrent admin actions race-safe: the
// loser of the race affects zero rows.
func (r *Repository) Transition(ctx context.Context, id int, from, to domain.WithdrawalStatus, notes string, processedAt *time.Time) (bool, error) {
	query := `
        UPDATE withdrawal_requests
        SET status = $1, notes = $2, processed_at = $3
        WHERE id = $4 AND status = $5
    `
	tag, err := r.db.Exec(ctx, query, to, notes, processedAt, id, from)
	if err != nil {
		zap.L().Error("failed to transition withdrawal request", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
