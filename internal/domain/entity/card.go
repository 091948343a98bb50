package entity

import (
	"fmt"
	"time"
)

// CardStatus is the lifecycle status of a business card
type CardStatus string

const (
	CardActive    CardStatus = "active"
	CardSuspended CardStatus = "suspended"
	CardExpired   CardStatus = "expired"
	CardCancelled CardStatus = "cancelled"
)

// CardType distinguishes how a card is settled
type CardType string

const (
	CardCorporate CardType = "corporate" // company-settled
	CardEmployee  CardType = "employee"  // employee pays, company reimburses
	CardPrepaid   CardType = "prepaid"   // budget-capped prepaid
)

// BusinessCard is a corporate card issued to a company, optionally assigned
// to an employee. Spending policy (limits, category allow-list, merchant
// block-list) lives on the card.
type BusinessCard struct {
	ID               string
	CardNumberMasked string
	CardHolderName   string
	ExpiryDate       string // MM/YY
	Status           CardStatus
	Type             CardType

	ProviderID string
	CompanyID  string
	EmployeeID string // empty for company-level cards

	CreditLimit            int64
	MonthlyBudget          int64 // 0 means no monthly budget
	DailyLimit             int64
	SingleTransactionLimit int64 // 0 means unlimited

	CurrentMonthUsage   int64
	AvailableBalance    int64
	LastTransactionDate *time.Time

	RequiresApproval  bool
	ApprovalThreshold int64 // approval required at or above this amount; 0 disables
	AllowedCategories []string
	BlockedMerchants  []string

	ExternalCardID string
	LastSyncAt     *time.Time
	SyncStatus     string // synced, syncing, failed

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Suspend moves the card to suspended. Cancelled is terminal.
func (c *BusinessCard) Suspend() error {
	if c.Status == CardCancelled {
		return fmt.Errorf("%w: card %s is cancelled", ErrInvalidStateTransition, c.ID)
	}
	c.Status = CardSuspended
	return nil
}

// Activate re-activates a suspended card.
func (c *BusinessCard) Activate() error {
	if c.Status == CardCancelled {
		return fmt.Errorf("%w: card %s is cancelled", ErrInvalidStateTransition, c.ID)
	}
	if c.Status == CardActive {
		return fmt.Errorf("%w: card %s is already active", ErrInvalidStateTransition, c.ID)
	}
	c.Status = CardActive
	return nil
}

// Cancel permanently cancels the card.
func (c *BusinessCard) Cancel() error {
	if c.Status == CardCancelled {
		return fmt.Errorf("%w: card %s is already cancelled", ErrInvalidStateTransition, c.ID)
	}
	c.Status = CardCancelled
	return nil
}

// CanTransact reports whether the card can accept a charge of the given amount.
func (c *BusinessCard) CanTransact(amount int64) bool {
	if c.Status != CardActive {
		return false
	}
	if c.AvailableBalance < amount {
		return false
	}
	if c.SingleTransactionLimit > 0 && amount > c.SingleTransactionLimit {
		return false
	}
	return true
}

// NeedsApproval reports whether a charge of the given amount requires approval.
func (c *BusinessCard) NeedsApproval(amount int64) bool {
	if c.RequiresApproval {
		return true
	}
	if c.ApprovalThreshold > 0 && amount >= c.ApprovalThreshold {
		return true
	}
	return false
}

// ApplyUsage records a charge against the card's usage counters.
// Available balance never goes below zero.
func (c *BusinessCard) ApplyUsage(amount int64, at time.Time) {
	c.CurrentMonthUsage += amount
	c.AvailableBalance -= amount
	if c.AvailableBalance < 0 {
		c.AvailableBalance = 0
	}
	t := at
	c.LastTransactionDate = &t
}

// IsOverBudget reports whether the month's usage exceeds the monthly budget.
func (c *BusinessCard) IsOverBudget() bool {
	if c.MonthlyBudget <= 0 {
		return false
	}
	return c.CurrentMonthUsage > c.MonthlyBudget
}

// BudgetUtilization returns the month's usage as a percentage of the monthly
// budget, capped at 100.
func (c *BusinessCard) BudgetUtilization() float64 {
	if c.MonthlyBudget <= 0 {
		return 0
	}
	utilization := float64(c.CurrentMonthUsage) / float64(c.MonthlyBudget) * 100
	if utilization > 100 {
		return 100
	}
	return utilization
}

// IsHighRisk flags cards that warrant attention on the monitoring dashboard.
func (c *BusinessCard) IsHighRisk() bool {
	return c.IsOverBudget() || c.SyncStatus == "failed" || c.BudgetUtilization() > 90
}
