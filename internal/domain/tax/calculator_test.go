package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsato/corpcard/internal/domain/entity"
)

func TestCalculator_Calculate(t *testing.T) {
	calc := NewCalculator(0.10, 0.08)

	tests := []struct {
		name      string
		exclusive int64
		taxType   entity.TaxType
		wantTax   int64
		wantGross int64
	}{
		{
			name:      "standard rate on round amount",
			exclusive: 1000,
			taxType:   entity.TaxableStandard,
			wantTax:   100,
			wantGross: 1100,
		},
		{
			name:      "reduced rate on round amount",
			exclusive: 1000,
			taxType:   entity.TaxableReduced,
			wantTax:   80,
			wantGross: 1080,
		},
		{
			name:      "standard rate rounds half up",
			exclusive: 1005, // 100.5 -> 101
			taxType:   entity.TaxableStandard,
			wantTax:   101,
			wantGross: 1106,
		},
		{
			name:      "reduced rate rounds down below half",
			exclusive: 1004, // 80.32 -> 80
			taxType:   entity.TaxableReduced,
			wantTax:   80,
			wantGross: 1084,
		},
		{
			name:      "tax free yields zero tax",
			exclusive: 5000,
			taxType:   entity.TaxFree,
			wantTax:   0,
			wantGross: 5000,
		},
		{
			name:      "tax exempt yields zero tax",
			exclusive: 5000,
			taxType:   entity.TaxExempt,
			wantTax:   0,
			wantGross: 5000,
		},
		{
			name:      "zero amount",
			exclusive: 0,
			taxType:   entity.TaxableStandard,
			wantTax:   0,
			wantGross: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(tt.exclusive, tt.taxType)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTax, got.TaxAmount)
			assert.Equal(t, tt.wantGross, got.Amount)
			assert.Equal(t, tt.exclusive, got.AmountExcludingTax)
			assert.Equal(t, tt.taxType, got.TaxType)
		})
	}
}

func TestCalculator_Calculate_UnknownTaxType(t *testing.T) {
	calc := NewCalculator(0.10, 0.08)

	_, err := calc.Calculate(1000, entity.TaxType("vat_20"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTaxType)
}

func TestCalculator_SplitGross(t *testing.T) {
	calc := NewCalculator(0.10, 0.08)

	tests := []struct {
		name          string
		gross         int64
		category      entity.ExpenseCategory
		wantExclusive int64
		wantTax       int64
		wantType      entity.TaxType
	}{
		{
			name:          "standard rate for categorized spend",
			gross:         1100,
			category:      entity.CategoryOfficeSupplies,
			wantExclusive: 1000,
			wantTax:       100,
			wantType:      entity.TaxableStandard,
		},
		{
			name:          "reduced rate assumed for uncategorized spend",
			gross:         1080,
			category:      entity.CategoryOther,
			wantExclusive: 1000,
			wantTax:       80,
			wantType:      entity.TaxableReduced,
		},
		{
			name:          "exclusive plus tax always equals gross",
			gross:         999,
			category:      entity.CategoryEntertainment,
			wantExclusive: 908, // 999/1.1 = 908.18 -> 908
			wantTax:       91,
			wantType:      entity.TaxableStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.SplitGross(tt.gross, tt.category)
			assert.Equal(t, tt.gross, got.Amount)
			assert.Equal(t, tt.wantExclusive, got.AmountExcludingTax)
			assert.Equal(t, tt.wantTax, got.TaxAmount)
			assert.Equal(t, tt.wantType, got.TaxType)
			assert.Equal(t, tt.gross, got.AmountExcludingTax+got.TaxAmount)
		})
	}
}
