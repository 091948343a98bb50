package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsato/corpcard/internal/domain/entity"
)

func TestDashboardService_GetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("combines spend, counts and recent activity", func(t *testing.T) {
		now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
		monthStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

		txRepo := &mockTransactionRepo{
			sumCompletedFunc: func(ctx context.Context, start, end time.Time) (int64, error) {
				if start.Equal(monthStart) {
					return 330000, nil
				}
				return 300000, nil
			},
			countByStatusFunc: func(ctx context.Context, status entity.TransactionStatus) (int, error) {
				if status == entity.TransactionPending {
					return 3, nil
				}
				return 42, nil
			},
			recentFunc: func(ctx context.Context, limit int) ([]*entity.CardTransaction, error) {
				assert.Equal(t, 10, limit)
				return []*entity.CardTransaction{{ID: "txn-1"}, {ID: "txn-2"}}, nil
			},
		}
		cardRepo := &mockCardRepo{
			countByStatusFunc: func(ctx context.Context, status entity.CardStatus) (int, error) {
				assert.Equal(t, entity.CardActive, status)
				return 8, nil
			},
		}

		svc := NewDashboardService(cardRepo, txRepo, nopLogger{}).(*dashboardServiceImpl)
		svc.now = func() time.Time { return now }

		stats, err := svc.GetStats(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(330000), stats.MonthlySpending)
		assert.InDelta(t, 10.0, stats.SpendingChangeRate, 0.001)
		assert.Equal(t, 8, stats.ActiveCards)
		assert.Equal(t, 3, stats.PendingTransactions)
		assert.Equal(t, 42, stats.CompletedTransactions)
		assert.Len(t, stats.RecentTransactions, 2)
	})

	t.Run("zero previous month spend means no change rate", func(t *testing.T) {
		txRepo := &mockTransactionRepo{
			sumCompletedFunc: func(ctx context.Context, start, end time.Time) (int64, error) {
				if start.Day() == 1 && start.Month() == time.Now().Month() {
					return 100000, nil
				}
				return 0, nil
			},
		}
		svc := NewDashboardService(&mockCardRepo{}, txRepo, nopLogger{})

		stats, err := svc.GetStats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.SpendingChangeRate)
	})
}
