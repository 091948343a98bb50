// Package policy checks expenses against the owning card's spending policy.
package policy

import (
	"strings"

	"github.com/junsato/corpcard/internal/domain/entity"
)

// Violation codes attached to an expense when it breaches card policy.
const (
	ViolationSingleTransactionLimit = "EXCEEDS_SINGLE_TRANSACTION_LIMIT"
	ViolationRestrictedCategory     = "RESTRICTED_CATEGORY"
	ViolationBlockedMerchant        = "BLOCKED_MERCHANT"
)

// Evaluate returns the policy violations for an expense against its card.
// Checks are independent: an expense breaching several rules returns every
// matching code, in a fixed order. Pure function of its inputs.
func Evaluate(expense *entity.BusinessExpense, card *entity.BusinessCard) []string {
	var violations []string

	if card.SingleTransactionLimit > 0 && expense.Amount > card.SingleTransactionLimit {
		violations = append(violations, ViolationSingleTransactionLimit)
	}

	if len(card.AllowedCategories) > 0 && !containsCategory(card.AllowedCategories, expense.Category) {
		violations = append(violations, ViolationRestrictedCategory)
	}

	if merchantBlocked(card.BlockedMerchants, expense.MerchantName) {
		violations = append(violations, ViolationBlockedMerchant)
	}

	return violations
}

func containsCategory(allowed []string, category entity.ExpenseCategory) bool {
	for _, a := range allowed {
		if entity.ExpenseCategory(a) == category {
			return true
		}
	}
	return false
}

func merchantBlocked(blocked []string, merchantName string) bool {
	name := strings.ToLower(merchantName)
	for _, b := range blocked {
		if b == "" {
			continue
		}
		if strings.Contains(name, strings.ToLower(b)) {
			return true
		}
	}
	return false
}
