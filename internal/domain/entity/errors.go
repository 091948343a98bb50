package entity

import "errors"

var (
	// ErrNotFound is returned when an entity does not exist
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidStateTransition is returned when a lifecycle guard is violated
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrAlreadyProcessed is returned when an expense has left the pending state
	ErrAlreadyProcessed = errors.New("expense already processed")

	// ErrUnauthorized is returned when the actor lacks approval permission
	ErrUnauthorized = errors.New("not authorized to approve")

	// ErrApprovalLimitExceeded is returned when the amount exceeds the approver's limit
	ErrApprovalLimitExceeded = errors.New("approval limit exceeded")

	// ErrCardUnavailable is returned when a card cannot accept a transaction
	ErrCardUnavailable = errors.New("card is not available for transaction")

	// ErrInsufficientBalance is returned when a card lacks available balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrRejectionReasonRequired is returned when a rejection has no reason
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
)
