package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
	"github.com/junsato/corpcard/internal/infrastructure/persistence/sqlite"
)

// BudgetRepository implements port.BudgetRepository
type BudgetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *sql.DB, logger *zap.Logger) port.BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

const budgetColumns = `
	id, month, category, category_name, budget_amount, used_amount,
	percentage, status, description, company_id, is_active, created_at, updated_at`

// Create inserts a new budget line
func (r *BudgetRepository) Create(ctx context.Context, budget *entity.Budget) error {
	query := `
		INSERT INTO budgets (` + budgetColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		budget.ID,
		budget.Month,
		budget.Category,
		budget.CategoryName,
		budget.BudgetAmount,
		budget.UsedAmount,
		budget.Percentage,
		budget.Status,
		budget.Description,
		budget.CompanyID,
		budget.IsActive,
		budget.CreatedAt,
		budget.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create budget", zap.String("id", budget.ID), zap.Error(err))
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetByID retrieves a budget by ID. Returns nil when not found.
func (r *BudgetRepository) GetByID(ctx context.Context, id string) (*entity.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = ?`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id)
	budget, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get budget by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}

// ListByMonth returns the company's active budget lines for a YYYY-MM month.
func (r *BudgetRepository) ListByMonth(ctx context.Context, month, companyID string) ([]*entity.Budget, error) {
	query := `SELECT ` + budgetColumns + `
		FROM budgets
		WHERE month = ? AND company_id = ? AND is_active = 1
		ORDER BY category ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, month, companyID)
	if err != nil {
		r.logger.Error("Failed to list budgets", zap.String("month", month), zap.Error(err))
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*entity.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// Update writes the editable fields of a budget line.
func (r *BudgetRepository) Update(ctx context.Context, budget *entity.Budget) error {
	query := `
		UPDATE budgets
		SET category_name = ?, budget_amount = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		budget.CategoryName,
		budget.BudgetAmount,
		budget.Description,
		budget.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update budget", zap.String("id", budget.ID), zap.Error(err))
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return nil
}

// UpdateUsage caches the derived consumption figures for a budget line.
func (r *BudgetRepository) UpdateUsage(ctx context.Context, id string, usedAmount int64, percentage float64, status entity.BudgetStatus) error {
	query := `
		UPDATE budgets
		SET used_amount = ?, percentage = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, usedAmount, percentage, status, id)
	if err != nil {
		return fmt.Errorf("failed to update budget usage: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a budget line.
func (r *BudgetRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE budgets SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate budget: %w", err)
	}
	return nil
}

func scanBudget(row rowScanner) (*entity.Budget, error) {
	var budget entity.Budget
	err := row.Scan(
		&budget.ID,
		&budget.Month,
		&budget.Category,
		&budget.CategoryName,
		&budget.BudgetAmount,
		&budget.UsedAmount,
		&budget.Percentage,
		&budget.Status,
		&budget.Description,
		&budget.CompanyID,
		&budget.IsActive,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// Verify interface compliance
var _ port.BudgetRepository = (*BudgetRepository)(nil)
