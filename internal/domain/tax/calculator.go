// Package tax computes Japan consumption tax splits. Amounts are yen, so all
// results are whole numbers rounded half-up.
package tax

import (
	"errors"
	"fmt"
	"math"

	"github.com/junsato/corpcard/internal/domain/entity"
)

// ErrUnknownTaxType is returned for tax types outside the closed enum.
var ErrUnknownTaxType = errors.New("unknown tax type")

// Calculator computes consumption tax from configurable rates.
type Calculator struct {
	standardRate float64
	reducedRate  float64
}

// NewCalculator creates a Calculator. Pass the statutory rates (0.10, 0.08).
func NewCalculator(standardRate, reducedRate float64) *Calculator {
	return &Calculator{
		standardRate: standardRate,
		reducedRate:  reducedRate,
	}
}

// Result is a gross/net/tax split for one expense.
type Result struct {
	Amount             int64
	AmountExcludingTax int64
	TaxAmount          int64
	TaxType            entity.TaxType
}

// Calculate derives the tax amount and gross amount from a tax-exclusive
// amount. Unknown tax types are an error, not tax-free.
func (c *Calculator) Calculate(amountExcludingTax int64, taxType entity.TaxType) (Result, error) {
	rate, err := c.rateFor(taxType)
	if err != nil {
		return Result{}, err
	}

	taxAmount := roundHalfUp(float64(amountExcludingTax) * rate)
	return Result{
		Amount:             amountExcludingTax + taxAmount,
		AmountExcludingTax: amountExcludingTax,
		TaxAmount:          taxAmount,
		TaxType:            taxType,
	}, nil
}

// SplitGross derives the tax-exclusive amount and tax amount from a gross
// (tax-inclusive) amount. Card feeds deliver gross amounts; the reduced rate
// is assumed for uncategorized spend, the standard rate otherwise.
func (c *Calculator) SplitGross(amount int64, category entity.ExpenseCategory) Result {
	rate := c.standardRate
	taxType := entity.TaxableStandard
	if category == entity.CategoryOther {
		rate = c.reducedRate
		taxType = entity.TaxableReduced
	}

	amountExcludingTax := roundHalfUp(float64(amount) / (1 + rate))
	return Result{
		Amount:             amount,
		AmountExcludingTax: amountExcludingTax,
		TaxAmount:          amount - amountExcludingTax,
		TaxType:            taxType,
	}
}

func (c *Calculator) rateFor(taxType entity.TaxType) (float64, error) {
	switch taxType {
	case entity.TaxableStandard:
		return c.standardRate, nil
	case entity.TaxableReduced:
		return c.reducedRate, nil
	case entity.TaxFree, entity.TaxExempt:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTaxType, taxType)
	}
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
