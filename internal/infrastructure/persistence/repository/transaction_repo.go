package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
	"github.com/junsato/corpcard/internal/infrastructure/persistence/sqlite"
)

// TransactionRepository implements port.TransactionRepository
type TransactionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new card transaction repository
func NewTransactionRepository(db *sql.DB, logger *zap.Logger) port.TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

const transactionColumns = `
	id, amount, merchant_name, transaction_date, card_last_four,
	status, user_id, category, memo, card_id, created_at, updated_at`

// Create inserts a new card transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *entity.CardTransaction) error {
	query := `
		INSERT INTO card_transactions (` + transactionColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		tx.ID,
		tx.Amount,
		tx.MerchantName,
		tx.TransactionDate,
		tx.CardLastFour,
		tx.Status,
		tx.UserID,
		tx.Category,
		tx.Memo,
		tx.CardID,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", zap.String("id", tx.ID), zap.Error(err))
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID. Returns nil when not found.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.CardTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM card_transactions WHERE id = ?`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get transaction by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// List returns matching transactions newest first, plus the unpaginated total.
func (r *TransactionRepository) List(ctx context.Context, filter port.TransactionFilter) ([]*entity.CardTransaction, int, error) {
	var conds []string
	var args []interface{}

	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.FromDate != nil {
		conds = append(conds, "transaction_date >= ?")
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		conds = append(conds, "transaction_date < ?")
		args = append(args, *filter.ToDate)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM card_transactions` + where
	if err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + ` FROM card_transactions` + where + ` ORDER BY transaction_date DESC`
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transactions", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// ListByCardSince returns the card's transactions in [start, end) oldest first.
func (r *TransactionRepository) ListByCardSince(ctx context.Context, cardID string, start, end time.Time) ([]*entity.CardTransaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM card_transactions
		WHERE card_id = ? AND transaction_date >= ? AND transaction_date < ?
		ORDER BY transaction_date ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, cardID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list card transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// UpdateStatus conditionally moves a transaction out of one of the allowed
// source statuses. Concurrent settlement attempts on the same transaction
// resolve to a single winner.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status entity.TransactionStatus, allowedFrom []entity.TransactionStatus) (bool, error) {
	if len(allowedFrom) == 0 {
		return false, fmt.Errorf("no allowed source statuses")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(allowedFrom)), ", ")
	query := fmt.Sprintf(`
		UPDATE card_transactions
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN (%s)
	`, placeholders)

	args := []interface{}{status, id}
	for _, from := range allowedFrom {
		args = append(args, from)
	}

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update transaction status", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to update transaction status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// UpdateDetails updates the user-editable fields of a transaction.
func (r *TransactionRepository) UpdateDetails(ctx context.Context, id, category, memo string) error {
	query := `UPDATE card_transactions SET category = ?, memo = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, category, memo, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction details: %w", err)
	}
	return nil
}

// SumCompleted sums completed transaction amounts in [start, end).
func (r *TransactionRepository) SumCompleted(ctx context.Context, start, end time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM card_transactions
		WHERE status = ? AND transaction_date >= ? AND transaction_date < ?
	`

	var sum int64
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, entity.TransactionCompleted, start, end).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum completed transactions: %w", err)
	}
	return sum, nil
}

// CountByStatus counts transactions in a status.
func (r *TransactionRepository) CountByStatus(ctx context.Context, status entity.TransactionStatus) (int, error) {
	var count int
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM card_transactions WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// Recent returns the latest transactions by date.
func (r *TransactionRepository) Recent(ctx context.Context, limit int) ([]*entity.CardTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM card_transactions ORDER BY transaction_date DESC LIMIT ?`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func scanTransaction(row rowScanner) (*entity.CardTransaction, error) {
	var tx entity.CardTransaction
	err := row.Scan(
		&tx.ID,
		&tx.Amount,
		&tx.MerchantName,
		&tx.TransactionDate,
		&tx.CardLastFour,
		&tx.Status,
		&tx.UserID,
		&tx.Category,
		&tx.Memo,
		&tx.CardID,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func collectTransactions(rows *sql.Rows) ([]*entity.CardTransaction, error) {
	var txs []*entity.CardTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Verify interface compliance
var _ port.TransactionRepository = (*TransactionRepository)(nil)
