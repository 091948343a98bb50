package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardTransaction_Lifecycle(t *testing.T) {
	t.Run("pending completes", func(t *testing.T) {
		tx := &CardTransaction{Status: TransactionPending}
		require.NoError(t, tx.Complete())
		assert.Equal(t, TransactionCompleted, tx.Status)
		assert.True(t, tx.IsCompleted())
	})

	t.Run("pending fails", func(t *testing.T) {
		tx := &CardTransaction{Status: TransactionPending}
		require.NoError(t, tx.Fail())
		assert.Equal(t, TransactionFailed, tx.Status)
	})

	t.Run("failed can be cancelled", func(t *testing.T) {
		tx := &CardTransaction{Status: TransactionFailed}
		require.NoError(t, tx.Cancel())
		assert.Equal(t, TransactionCancelled, tx.Status)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		tx := &CardTransaction{Status: TransactionCompleted}
		assert.ErrorIs(t, tx.Complete(), ErrInvalidStateTransition)
		assert.ErrorIs(t, tx.Fail(), ErrInvalidStateTransition)
		assert.ErrorIs(t, tx.Cancel(), ErrInvalidStateTransition)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		tx := &CardTransaction{Status: TransactionCancelled}
		assert.ErrorIs(t, tx.Complete(), ErrInvalidStateTransition)
		assert.ErrorIs(t, tx.Cancel(), ErrInvalidStateTransition)
	})
}
