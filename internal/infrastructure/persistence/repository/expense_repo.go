package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
	"github.com/junsato/corpcard/internal/infrastructure/persistence/sqlite"
)

// ExpenseRepository implements port.ExpenseRepository
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new business expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

const expenseColumns = `
	id, amount, amount_excluding_tax, tax_amount,
	merchant_name, merchant_category_code, transaction_date, posted_date,
	card_id, company_id, employee_id,
	status, approver_id, approved_at, approval_comment,
	category, account_code, project_id, cost_center,
	tax_type, invoice_number, qualified_invoice,
	receipt_url, receipt_verified, memo, business_purpose, attendees,
	external_transaction_id, accounting_id, sync_status,
	policy_violations, risk_score, created_at, updated_at`

// Create inserts a new business expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.BusinessExpense) error {
	query := `
		INSERT INTO business_expenses (` + expenseColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	attendees, err := marshalStrings(expense.Attendees)
	if err != nil {
		return fmt.Errorf("failed to encode attendees: %w", err)
	}
	violations, err := marshalStrings(expense.PolicyViolations)
	if err != nil {
		return fmt.Errorf("failed to encode policy violations: %w", err)
	}

	_, err = sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		expense.ID,
		expense.Amount,
		expense.AmountExcludingTax,
		expense.TaxAmount,
		expense.MerchantName,
		expense.MerchantCategoryCode,
		expense.TransactionDate,
		expense.PostedDate,
		expense.CardID,
		expense.CompanyID,
		expense.EmployeeID,
		expense.Status,
		expense.ApproverID,
		expense.ApprovedAt,
		expense.ApprovalComment,
		expense.Category,
		expense.AccountCode,
		expense.ProjectID,
		expense.CostCenter,
		expense.TaxType,
		expense.InvoiceNumber,
		expense.QualifiedInvoice,
		expense.ReceiptURL,
		expense.ReceiptVerified,
		expense.Memo,
		expense.BusinessPurpose,
		attendees,
		expense.ExternalTransactionID,
		expense.AccountingID,
		expense.SyncStatus,
		violations,
		expense.RiskScore,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.String("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by ID. Returns nil when not found.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*entity.BusinessExpense, error) {
	query := `SELECT ` + expenseColumns + ` FROM business_expenses WHERE id = ?`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get expense by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// GetByExternalID retrieves an expense by its external transaction ID.
func (r *ExpenseRepository) GetByExternalID(ctx context.Context, externalTransactionID string) (*entity.BusinessExpense, error) {
	query := `SELECT ` + expenseColumns + ` FROM business_expenses WHERE external_transaction_id = ?`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, externalTransactionID)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense by external id: %w", err)
	}
	return expense, nil
}

// List returns matching expenses newest first, plus the unpaginated total.
func (r *ExpenseRepository) List(ctx context.Context, filter port.ExpenseFilter) ([]*entity.BusinessExpense, int, error) {
	var conds []string
	var args []interface{}

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.CompanyID != "" {
		conds = append(conds, "company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if filter.EmployeeID != "" {
		conds = append(conds, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM business_expenses` + where
	if err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `SELECT ` + expenseColumns + ` FROM business_expenses` + where + ` ORDER BY transaction_date DESC`
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// ListForMonth returns the company's expenses in [start, end).
func (r *ExpenseRepository) ListForMonth(ctx context.Context, companyID string, start, end time.Time) ([]*entity.BusinessExpense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM business_expenses
		WHERE company_id = ? AND transaction_date >= ? AND transaction_date < ?
		ORDER BY transaction_date ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list month expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// UpdateApproval conditionally writes an approval outcome. The guard on the
// stored status makes concurrent decisions on the same expense lose cleanly
// instead of overwriting each other.
func (r *ExpenseRepository) UpdateApproval(ctx context.Context, expense *entity.BusinessExpense) (bool, error) {
	query := `
		UPDATE business_expenses
		SET status = ?, approver_id = ?, approved_at = ?, approval_comment = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		expense.Status,
		expense.ApproverID,
		expense.ApprovedAt,
		expense.ApprovalComment,
		expense.UpdatedAt,
		expense.ID,
		entity.ExpensePending,
	)
	if err != nil {
		r.logger.Error("Failed to update approval", zap.String("id", expense.ID), zap.Error(err))
		return false, fmt.Errorf("failed to update approval: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// UpdateSyncStatus records the accounting sync outcome for an expense.
func (r *ExpenseRepository) UpdateSyncStatus(ctx context.Context, id, syncStatus, accountingID string) error {
	query := `
		UPDATE business_expenses
		SET sync_status = ?, accounting_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, syncStatus, accountingID, id)
	if err != nil {
		r.logger.Error("Failed to update sync status", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

// AverageAmountSince returns the card's mean expense amount since the given time.
func (r *ExpenseRepository) AverageAmountSince(ctx context.Context, cardID string, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(AVG(amount), 0)
		FROM business_expenses
		WHERE card_id = ? AND transaction_date >= ? AND status != ?
	`

	var avg float64
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, cardID, since, entity.ExpenseRejected).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average expense amount: %w", err)
	}
	return avg, nil
}

// CountByStatus counts the company's expenses in a status, optionally since a time.
func (r *ExpenseRepository) CountByStatus(ctx context.Context, companyID string, status entity.ExpenseStatus, since *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM business_expenses WHERE company_id = ? AND status = ?`
	args := []interface{}{companyID, status}
	if since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *since)
	}

	var count int
	if err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expenses by status: %w", err)
	}
	return count, nil
}

// CountHighRisk counts pending expenses above the risk threshold.
func (r *ExpenseRepository) CountHighRisk(ctx context.Context, companyID string, threshold float64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM business_expenses
		WHERE company_id = ? AND status = ? AND risk_score > ?
	`

	var count int
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, companyID, entity.ExpensePending, threshold).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count high risk expenses: %w", err)
	}
	return count, nil
}

// CountPendingWithinLimit counts pending expenses an approver with the given
// limit could decide. A zero limit means unlimited authority.
func (r *ExpenseRepository) CountPendingWithinLimit(ctx context.Context, companyID string, approvalLimit int64) (int, error) {
	query := `SELECT COUNT(*) FROM business_expenses WHERE company_id = ? AND status = ?`
	args := []interface{}{companyID, entity.ExpensePending}
	if approvalLimit > 0 {
		query += ` AND amount <= ?`
		args = append(args, approvalLimit)
	}

	var count int
	if err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending expenses: %w", err)
	}
	return count, nil
}

// SumByCategorySince sums non-rejected expense amounts per category in [start, end).
func (r *ExpenseRepository) SumByCategorySince(ctx context.Context, companyID string, start, end time.Time) (map[entity.ExpenseCategory]int64, error) {
	query := `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM business_expenses
		WHERE company_id = ? AND transaction_date >= ? AND transaction_date < ? AND status != ?
		GROUP BY category
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, companyID, start, end, entity.ExpenseRejected)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses by category: %w", err)
	}
	defer rows.Close()

	sums := make(map[entity.ExpenseCategory]int64)
	for rows.Next() {
		var category entity.ExpenseCategory
		var sum int64
		if err := rows.Scan(&category, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan category sum: %w", err)
		}
		sums[category] = sum
	}
	return sums, rows.Err()
}

// AverageApprovalHours returns the mean hours from creation to approval for
// expenses approved since the given time.
func (r *ExpenseRepository) AverageApprovalHours(ctx context.Context, companyID string, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(AVG((julianday(approved_at) - julianday(created_at)) * 24), 0)
		FROM business_expenses
		WHERE company_id = ? AND status = ? AND approved_at IS NOT NULL AND approved_at >= ?
	`

	var hours float64
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, companyID, entity.ExpenseApproved, since).Scan(&hours)
	if err != nil {
		return 0, fmt.Errorf("failed to average approval hours: %w", err)
	}
	return hours, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner) (*entity.BusinessExpense, error) {
	var expense entity.BusinessExpense
	var postedDate, approvedAt sql.NullTime
	var attendees, violations string

	err := row.Scan(
		&expense.ID,
		&expense.Amount,
		&expense.AmountExcludingTax,
		&expense.TaxAmount,
		&expense.MerchantName,
		&expense.MerchantCategoryCode,
		&expense.TransactionDate,
		&postedDate,
		&expense.CardID,
		&expense.CompanyID,
		&expense.EmployeeID,
		&expense.Status,
		&expense.ApproverID,
		&approvedAt,
		&expense.ApprovalComment,
		&expense.Category,
		&expense.AccountCode,
		&expense.ProjectID,
		&expense.CostCenter,
		&expense.TaxType,
		&expense.InvoiceNumber,
		&expense.QualifiedInvoice,
		&expense.ReceiptURL,
		&expense.ReceiptVerified,
		&expense.Memo,
		&expense.BusinessPurpose,
		&attendees,
		&expense.ExternalTransactionID,
		&expense.AccountingID,
		&expense.SyncStatus,
		&violations,
		&expense.RiskScore,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if postedDate.Valid {
		expense.PostedDate = &postedDate.Time
	}
	if approvedAt.Valid {
		expense.ApprovedAt = &approvedAt.Time
	}
	if expense.Attendees, err = unmarshalStrings(attendees); err != nil {
		return nil, fmt.Errorf("failed to decode attendees: %w", err)
	}
	if expense.PolicyViolations, err = unmarshalStrings(violations); err != nil {
		return nil, fmt.Errorf("failed to decode policy violations: %w", err)
	}
	return &expense, nil
}

func collectExpenses(rows *sql.Rows) ([]*entity.BusinessExpense, error) {
	var expenses []*entity.BusinessExpense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// marshalStrings encodes a string slice as JSON for TEXT column storage.
func marshalStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

// Verify interface compliance
var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
