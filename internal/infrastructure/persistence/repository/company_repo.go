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

// CompanyRepository implements port.CompanyRepository
type CompanyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *sql.DB, logger *zap.Logger) port.CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

const companyColumns = `
	id, name, name_kana, registration_number, tax_id, size, industry,
	fiscal_year_start_month, monthly_budget, is_active, created_at, updated_at`

// GetByID retrieves a company by ID. Returns nil when not found.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = ?`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id)
	company, err := scanCompany(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get company by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// First returns the oldest active company. Single-tenant deployments use it
// as the default when no company is specified.
func (r *CompanyRepository) First(ctx context.Context) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE is_active = 1 ORDER BY created_at ASC LIMIT 1`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query)
	company, err := scanCompany(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get first company: %w", err)
	}
	return company, nil
}

func scanCompany(row rowScanner) (*entity.Company, error) {
	var company entity.Company
	var fiscalStartMonth int
	err := row.Scan(
		&company.ID,
		&company.Name,
		&company.NameKana,
		&company.RegistrationNumber,
		&company.TaxID,
		&company.Size,
		&company.Industry,
		&fiscalStartMonth,
		&company.MonthlyBudget,
		&company.IsActive,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	company.FiscalYearStartMonth = time.Month(fiscalStartMonth)
	return &company, nil
}

// Verify interface compliance
var _ port.CompanyRepository = (*CompanyRepository)(nil)
