package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/junsato/corpcard/internal/domain/entity"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		expense *entity.BusinessExpense
		card    *entity.BusinessCard
		want    []string
	}{
		{
			name: "clean expense has no violations",
			expense: &entity.BusinessExpense{
				Amount:       5000,
				Category:     entity.CategoryOfficeSupplies,
				MerchantName: "アスクル",
			},
			card: &entity.BusinessCard{SingleTransactionLimit: 100000},
			want: nil,
		},
		{
			name: "amount over single transaction limit",
			expense: &entity.BusinessExpense{
				Amount:   150000,
				Category: entity.CategoryTravel,
			},
			card: &entity.BusinessCard{SingleTransactionLimit: 100000},
			want: []string{ViolationSingleTransactionLimit},
		},
		{
			name: "amount equal to limit passes",
			expense: &entity.BusinessExpense{
				Amount:   100000,
				Category: entity.CategoryTravel,
			},
			card: &entity.BusinessCard{SingleTransactionLimit: 100000},
			want: nil,
		},
		{
			name: "zero limit disables the amount check",
			expense: &entity.BusinessExpense{
				Amount:   9999999,
				Category: entity.CategoryTravel,
			},
			card: &entity.BusinessCard{SingleTransactionLimit: 0},
			want: nil,
		},
		{
			name: "category outside allow list",
			expense: &entity.BusinessExpense{
				Amount:   5000,
				Category: entity.CategoryEntertainment,
			},
			card: &entity.BusinessCard{
				AllowedCategories: []string{"office_supplies", "travel"},
			},
			want: []string{ViolationRestrictedCategory},
		},
		{
			name: "empty allow list permits every category",
			expense: &entity.BusinessExpense{
				Amount:   5000,
				Category: entity.CategoryEntertainment,
			},
			card: &entity.BusinessCard{},
			want: nil,
		},
		{
			name: "blocked merchant matches case-insensitively",
			expense: &entity.BusinessExpense{
				Amount:       5000,
				Category:     entity.CategoryOther,
				MerchantName: "GOLF CLUB TOKYO",
			},
			card: &entity.BusinessCard{
				BlockedMerchants: []string{"golf"},
			},
			want: []string{ViolationBlockedMerchant},
		},
		{
			name: "independent checks all fire in order",
			expense: &entity.BusinessExpense{
				Amount:       180000,
				Category:     entity.CategoryOther,
				MerchantName: "パチンコ店",
			},
			card: &entity.BusinessCard{
				SingleTransactionLimit: 100000,
				AllowedCategories:      []string{"office_supplies"},
				BlockedMerchants:       []string{"パチンコ"},
			},
			want: []string{
				ViolationSingleTransactionLimit,
				ViolationRestrictedCategory,
				ViolationBlockedMerchant,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.expense, tt.card)
			assert.Equal(t, tt.want, got)
		})
	}
}
