package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
	"github.com/junsato/corpcard/internal/infrastructure/persistence/sqlite"
)

// CardRepository implements port.CardRepository
type CardRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCardRepository creates a new business card repository
func NewCardRepository(db *sql.DB, logger *zap.Logger) port.CardRepository {
	return &CardRepository{
		db:     db,
		logger: logger,
	}
}

const cardColumns = `
	id, card_number_masked, card_holder_name, expiry_date, status, card_type,
	provider_id, company_id, employee_id,
	credit_limit, monthly_budget, daily_limit, single_transaction_limit,
	current_month_usage, available_balance, last_transaction_date,
	requires_approval, approval_threshold, allowed_categories, blocked_merchants,
	external_card_id, last_sync_at, sync_status, created_at, updated_at`

// Create inserts a new business card
func (r *CardRepository) Create(ctx context.Context, card *entity.BusinessCard) error {
	query := `
		INSERT INTO business_cards (` + cardColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	allowed, err := marshalStrings(card.AllowedCategories)
	if err != nil {
		return fmt.Errorf("failed to encode allowed categories: %w", err)
	}
	blocked, err := marshalStrings(card.BlockedMerchants)
	if err != nil {
		return fmt.Errorf("failed to encode blocked merchants: %w", err)
	}

	_, err = sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		card.ID,
		card.CardNumberMasked,
		card.CardHolderName,
		card.ExpiryDate,
		card.Status,
		card.Type,
		card.ProviderID,
		card.CompanyID,
		card.EmployeeID,
		card.CreditLimit,
		card.MonthlyBudget,
		card.DailyLimit,
		card.SingleTransactionLimit,
		card.CurrentMonthUsage,
		card.AvailableBalance,
		card.LastTransactionDate,
		card.RequiresApproval,
		card.ApprovalThreshold,
		allowed,
		blocked,
		card.ExternalCardID,
		card.LastSyncAt,
		card.SyncStatus,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create card", zap.String("id", card.ID), zap.Error(err))
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// GetByID retrieves a card by ID. Returns nil when not found.
func (r *CardRepository) GetByID(ctx context.Context, id string) (*entity.BusinessCard, error) {
	query := `SELECT ` + cardColumns + ` FROM business_cards WHERE id = ?`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id)
	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get card by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

// ListByCompany returns the company's cards newest first.
func (r *CardRepository) ListByCompany(ctx context.Context, companyID string) ([]*entity.BusinessCard, error) {
	query := `SELECT ` + cardColumns + ` FROM business_cards WHERE company_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, companyID)
}

// ListByEmployee returns cards assigned to the employee.
func (r *CardRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*entity.BusinessCard, error) {
	query := `SELECT ` + cardColumns + ` FROM business_cards WHERE employee_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, employeeID)
}

func (r *CardRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.BusinessCard, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list cards", zap.Error(err))
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*entity.BusinessCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// CountByStatus counts cards in a status.
func (r *CardRepository) CountByStatus(ctx context.Context, status entity.CardStatus) (int, error) {
	var count int
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM business_cards WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

// UpdateStatus writes a card's lifecycle status.
func (r *CardRepository) UpdateStatus(ctx context.Context, id string, status entity.CardStatus) error {
	query := `UPDATE business_cards SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update card status", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update card status: %w", err)
	}
	return nil
}

// ApplyUsage atomically adds to the month's usage and debits the available
// balance in one statement, flooring the balance at zero. Doing it in SQL
// keeps concurrent charges from clobbering each other's counters.
func (r *CardRepository) ApplyUsage(ctx context.Context, id string, amount int64, at time.Time) error {
	query := `
		UPDATE business_cards
		SET current_month_usage = current_month_usage + ?,
			available_balance = MAX(available_balance - ?, 0),
			last_transaction_date = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, amount, amount, at, id)
	if err != nil {
		r.logger.Error("Failed to apply card usage", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to apply card usage: %w", err)
	}
	return nil
}

// UpdateBalance sets the available balance directly.
func (r *CardRepository) UpdateBalance(ctx context.Context, id string, balance int64) error {
	query := `UPDATE business_cards SET available_balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update card balance: %w", err)
	}
	return nil
}

// UpdateSyncStatus records a gateway sync outcome for a card.
func (r *CardRepository) UpdateSyncStatus(ctx context.Context, id, syncStatus string, syncedAt time.Time) error {
	query := `UPDATE business_cards SET sync_status = ?, last_sync_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, syncStatus, syncedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update card sync status: %w", err)
	}
	return nil
}

func scanCard(row rowScanner) (*entity.BusinessCard, error) {
	var card entity.BusinessCard
	var lastTransaction, lastSync sql.NullTime
	var allowed, blocked string

	err := row.Scan(
		&card.ID,
		&card.CardNumberMasked,
		&card.CardHolderName,
		&card.ExpiryDate,
		&card.Status,
		&card.Type,
		&card.ProviderID,
		&card.CompanyID,
		&card.EmployeeID,
		&card.CreditLimit,
		&card.MonthlyBudget,
		&card.DailyLimit,
		&card.SingleTransactionLimit,
		&card.CurrentMonthUsage,
		&card.AvailableBalance,
		&lastTransaction,
		&card.RequiresApproval,
		&card.ApprovalThreshold,
		&allowed,
		&blocked,
		&card.ExternalCardID,
		&lastSync,
		&card.SyncStatus,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastTransaction.Valid {
		card.LastTransactionDate = &lastTransaction.Time
	}
	if lastSync.Valid {
		card.LastSyncAt = &lastSync.Time
	}
	if card.AllowedCategories, err = unmarshalStrings(allowed); err != nil {
		return nil, fmt.Errorf("failed to decode allowed categories: %w", err)
	}
	if card.BlockedMerchants, err = unmarshalStrings(blocked); err != nil {
		return nil, fmt.Errorf("failed to decode blocked merchants: %w", err)
	}
	return &card, nil
}

// Verify interface compliance
var _ port.CardRepository = (*CardRepository)(nil)
