package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessExpense_Approve(t *testing.T) {
	now := time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

	t.Run("pending expense is approved", func(t *testing.T) {
		e := &BusinessExpense{ID: "exp-1", Status: ExpensePending}

		require.NoError(t, e.Approve("emp-2", "問題なし", now))
		assert.Equal(t, ExpenseApproved, e.Status)
		assert.Equal(t, "emp-2", e.ApproverID)
		assert.Equal(t, "問題なし", e.ApprovalComment)
		require.NotNil(t, e.ApprovedAt)
		assert.Equal(t, now, *e.ApprovedAt)
	})

	t.Run("re-approval fails", func(t *testing.T) {
		e := &BusinessExpense{ID: "exp-1", Status: ExpenseApproved}
		assert.ErrorIs(t, e.Approve("emp-3", "", now), ErrAlreadyProcessed)
	})

	t.Run("approving a rejected expense fails", func(t *testing.T) {
		e := &BusinessExpense{ID: "exp-1", Status: ExpenseRejected}
		assert.ErrorIs(t, e.Approve("emp-3", "", now), ErrAlreadyProcessed)
	})
}

func TestBusinessExpense_Reject(t *testing.T) {
	now := time.Now()

	t.Run("rejection requires a reason", func(t *testing.T) {
		e := &BusinessExpense{ID: "exp-1", Status: ExpensePending}
		assert.ErrorIs(t, e.Reject("emp-2", "", now), ErrRejectionReasonRequired)
		assert.Equal(t, ExpensePending, e.Status)
	})

	t.Run("pending expense is rejected", func(t *testing.T) {
		e := &BusinessExpense{ID: "exp-1", Status: ExpensePending}

		require.NoError(t, e.Reject("emp-2", "領収書がありません", now))
		assert.Equal(t, ExpenseRejected, e.Status)
		assert.Equal(t, "領収書がありません", e.ApprovalComment)
	})

	t.Run("rejecting a processed expense fails", func(t *testing.T) {
		e := &BusinessExpense{ID: "exp-1", Status: ExpenseCompleted}
		assert.ErrorIs(t, e.Reject("emp-2", "reason", now), ErrAlreadyProcessed)
	})
}

func TestBusinessExpense_SetTax(t *testing.T) {
	e := &BusinessExpense{Amount: 1100}
	e.SetTax(1000, 100, TaxableStandard)

	assert.Equal(t, int64(1000), e.AmountExcludingTax)
	assert.Equal(t, int64(100), e.TaxAmount)
	assert.Equal(t, TaxableStandard, e.TaxType)
	assert.Equal(t, int64(1100), e.Amount)
}

func TestBusinessExpense_IsHighRisk(t *testing.T) {
	assert.False(t, (&BusinessExpense{RiskScore: 0.7}).IsHighRisk())
	assert.True(t, (&BusinessExpense{RiskScore: 0.71}).IsHighRisk())
	assert.True(t, (&BusinessExpense{PolicyViolations: []string{"BLOCKED_MERCHANT"}}).IsHighRisk())
}

func TestBusinessExpense_NeedsReceiptVerification(t *testing.T) {
	assert.False(t, (&BusinessExpense{Amount: 29999}).NeedsReceiptVerification())
	assert.True(t, (&BusinessExpense{Amount: 30000}).NeedsReceiptVerification())
	assert.False(t, (&BusinessExpense{Amount: 30000, ReceiptVerified: true}).NeedsReceiptVerification())
}

func TestBusinessExpense_AccountingPeriod(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{name: "after fiscal year start", date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), want: "2026"},
		{name: "before fiscal year start", date: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), want: "2025"},
		{name: "end of calendar year", date: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), want: "2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &BusinessExpense{TransactionDate: tt.date}
			assert.Equal(t, tt.want, e.AccountingPeriod(time.April))
		})
	}
}

func TestMapExpenseCategory(t *testing.T) {
	tests := []struct {
		category ExpenseCategory
		want     BudgetCategory
	}{
		{CategoryEntertainment, BudgetEntertainment},
		{CategoryOfficeSupplies, BudgetOfficeSupplies},
		{CategoryTravel, BudgetTravel},
		{CategorySoftware, BudgetSoftware},
		{CategoryCloudService, BudgetSoftware},
		{CategoryDomain, BudgetSoftware},
		{CategoryRent, BudgetOther},
		{CategoryOther, BudgetOther},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, MapExpenseCategory(tt.category))
		})
	}
}
