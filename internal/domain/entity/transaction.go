package entity

import (
	"fmt"
	"time"
)

// TransactionStatus is the lifecycle status of a card transaction
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// CardTransaction is a single charge against a card.
//
// Lifecycle: pending -> completed | failed; pending or failed -> cancelled.
// Completed and cancelled are terminal.
type CardTransaction struct {
	ID              string
	Amount          int64
	MerchantName    string
	TransactionDate time.Time
	CardLastFour    string
	Status          TransactionStatus
	UserID          string
	Category        string
	Memo            string
	CardID          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Complete marks a pending transaction as completed.
func (t *CardTransaction) Complete() error {
	if t.Status != TransactionPending {
		return fmt.Errorf("%w: cannot complete transaction in status %s", ErrInvalidStateTransition, t.Status)
	}
	t.Status = TransactionCompleted
	return nil
}

// Fail marks a pending transaction as failed.
func (t *CardTransaction) Fail() error {
	if t.Status != TransactionPending {
		return fmt.Errorf("%w: cannot fail transaction in status %s", ErrInvalidStateTransition, t.Status)
	}
	t.Status = TransactionFailed
	return nil
}

// Cancel cancels a pending or failed transaction. Completed transactions
// cannot be cancelled.
func (t *CardTransaction) Cancel() error {
	if t.Status == TransactionCompleted {
		return fmt.Errorf("%w: cannot cancel completed transaction", ErrInvalidStateTransition)
	}
	if t.Status == TransactionCancelled {
		return fmt.Errorf("%w: transaction already cancelled", ErrInvalidStateTransition)
	}
	t.Status = TransactionCancelled
	return nil
}

// IsPending reports whether the transaction is awaiting settlement.
func (t *CardTransaction) IsPending() bool {
	return t.Status == TransactionPending
}

// IsCompleted reports whether the transaction settled successfully.
func (t *CardTransaction) IsCompleted() bool {
	return t.Status == TransactionCompleted
}
