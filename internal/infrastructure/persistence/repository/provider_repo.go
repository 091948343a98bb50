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

// ProviderRepository implements port.ProviderRepository
type ProviderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProviderRepository creates a new card provider repository
func NewProviderRepository(db *sql.DB, logger *zap.Logger) port.ProviderRepository {
	return &ProviderRepository{
		db:     db,
		logger: logger,
	}
}

const providerColumns = `
	id, name, display_name, provider_type, status,
	real_time_sync, data_accuracy, sync_interval_minutes,
	api_endpoint, webhook_url, requires_manual_sync,
	revenue_share_rate, customer_acquisition_cost, processing_fee,
	created_at, updated_at`

// GetByID retrieves a provider by ID. Returns nil when not found.
func (r *ProviderRepository) GetByID(ctx context.Context, id string) (*entity.CardProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM card_providers WHERE id = ?`

	row := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id)
	provider, err := scanProvider(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get provider by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return provider, nil
}

// List returns all providers, native first.
func (r *ProviderRepository) List(ctx context.Context) ([]*entity.CardProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM card_providers ORDER BY provider_type ASC, name ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list providers", zap.Error(err))
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer rows.Close()

	var providers []*entity.CardProvider
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provider: %w", err)
		}
		providers = append(providers, provider)
	}
	return providers, rows.Err()
}

func scanProvider(row rowScanner) (*entity.CardProvider, error) {
	var provider entity.CardProvider
	err := row.Scan(
		&provider.ID,
		&provider.Name,
		&provider.DisplayName,
		&provider.Type,
		&provider.Status,
		&provider.RealTimeSync,
		&provider.DataAccuracy,
		&provider.SyncIntervalMinutes,
		&provider.APIEndpoint,
		&provider.WebhookURL,
		&provider.RequiresManualSync,
		&provider.RevenueShareRate,
		&provider.CustomerAcquisitionCost,
		&provider.ProcessingFee,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// Verify interface compliance
var _ port.ProviderRepository = (*ProviderRepository)(nil)
