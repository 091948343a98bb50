package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessCard_Lifecycle(t *testing.T) {
	t.Run("suspend then reactivate", func(t *testing.T) {
		card := &BusinessCard{ID: "card-1", Status: CardActive}

		require.NoError(t, card.Suspend())
		assert.Equal(t, CardSuspended, card.Status)

		require.NoError(t, card.Activate())
		assert.Equal(t, CardActive, card.Status)
	})

	t.Run("activating an active card fails", func(t *testing.T) {
		card := &BusinessCard{ID: "card-1", Status: CardActive}

		err := card.Activate()
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		card := &BusinessCard{ID: "card-1", Status: CardActive}
		require.NoError(t, card.Cancel())

		assert.ErrorIs(t, card.Suspend(), ErrInvalidStateTransition)
		assert.ErrorIs(t, card.Activate(), ErrInvalidStateTransition)
		assert.ErrorIs(t, card.Cancel(), ErrInvalidStateTransition)
	})
}

func TestBusinessCard_CanTransact(t *testing.T) {
	tests := []struct {
		name   string
		card   BusinessCard
		amount int64
		want   bool
	}{
		{
			name:   "active card with balance",
			card:   BusinessCard{Status: CardActive, AvailableBalance: 100000},
			amount: 50000,
			want:   true,
		},
		{
			name:   "suspended card rejects charges",
			card:   BusinessCard{Status: CardSuspended, AvailableBalance: 100000},
			amount: 100,
			want:   false,
		},
		{
			name:   "insufficient balance",
			card:   BusinessCard{Status: CardActive, AvailableBalance: 1000},
			amount: 1001,
			want:   false,
		},
		{
			name:   "amount exactly at balance",
			card:   BusinessCard{Status: CardActive, AvailableBalance: 1000},
			amount: 1000,
			want:   true,
		},
		{
			name:   "over single transaction limit",
			card:   BusinessCard{Status: CardActive, AvailableBalance: 500000, SingleTransactionLimit: 100000},
			amount: 100001,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.card.CanTransact(tt.amount))
		})
	}
}

func TestBusinessCard_NeedsApproval(t *testing.T) {
	t.Run("always when the card requires it", func(t *testing.T) {
		card := BusinessCard{RequiresApproval: true}
		assert.True(t, card.NeedsApproval(1))
	})

	t.Run("at or above the threshold", func(t *testing.T) {
		card := BusinessCard{ApprovalThreshold: 50000}
		assert.False(t, card.NeedsApproval(49999))
		assert.True(t, card.NeedsApproval(50000))
	})

	t.Run("never without threshold or flag", func(t *testing.T) {
		card := BusinessCard{}
		assert.False(t, card.NeedsApproval(10000000))
	})
}

func TestBusinessCard_ApplyUsage(t *testing.T) {
	now := time.Now()
	card := BusinessCard{
		Status:            CardActive,
		CurrentMonthUsage: 10000,
		AvailableBalance:  30000,
	}

	card.ApplyUsage(25000, now)

	assert.Equal(t, int64(35000), card.CurrentMonthUsage)
	assert.Equal(t, int64(5000), card.AvailableBalance)
	require.NotNil(t, card.LastTransactionDate)
	assert.Equal(t, now, *card.LastTransactionDate)

	// Balance floors at zero rather than going negative.
	card.ApplyUsage(99999, now)
	assert.Equal(t, int64(0), card.AvailableBalance)
}

func TestBusinessCard_BudgetUtilization(t *testing.T) {
	tests := []struct {
		name  string
		usage int64
		limit int64
		want  float64
	}{
		{name: "no budget configured", usage: 50000, limit: 0, want: 0},
		{name: "half used", usage: 50000, limit: 100000, want: 50},
		{name: "capped at one hundred", usage: 250000, limit: 100000, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := BusinessCard{CurrentMonthUsage: tt.usage, MonthlyBudget: tt.limit}
			assert.InDelta(t, tt.want, card.BudgetUtilization(), 1e-9)
		})
	}
}

func TestBusinessCard_IsHighRisk(t *testing.T) {
	assert.False(t, (&BusinessCard{MonthlyBudget: 100000, CurrentMonthUsage: 50000, SyncStatus: "synced"}).IsHighRisk())
	assert.True(t, (&BusinessCard{MonthlyBudget: 100000, CurrentMonthUsage: 110000}).IsHighRisk())
	assert.True(t, (&BusinessCard{MonthlyBudget: 100000, CurrentMonthUsage: 95000}).IsHighRisk())
	assert.True(t, (&BusinessCard{SyncStatus: "failed"}).IsHighRisk())
}
