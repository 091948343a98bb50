package entity

import "time"

// BudgetStatus classifies budget consumption
type BudgetStatus string

const (
	BudgetSafe     BudgetStatus = "safe"
	BudgetWarning  BudgetStatus = "warning"
	BudgetExceeded BudgetStatus = "exceeded"
)

// BudgetCategory is the closed set of budget buckets
type BudgetCategory string

const (
	BudgetEntertainment  BudgetCategory = "ENTERTAINMENT"
	BudgetOfficeSupplies BudgetCategory = "OFFICE_SUPPLIES"
	BudgetTravel         BudgetCategory = "TRAVEL"
	BudgetSoftware       BudgetCategory = "SOFTWARE"
	BudgetOther          BudgetCategory = "OTHER"
	BudgetMarketing      BudgetCategory = "MARKETING"
	BudgetUtilities      BudgetCategory = "UTILITIES"
)

// Budget is a per (company, month, category) allocation. UsedAmount,
// Percentage and Status are derived from live expense data on every read;
// the stored values are a cache, not a source of truth.
type Budget struct {
	ID           string
	Month        string // YYYY-MM
	Category     BudgetCategory
	CategoryName string // localized display name
	BudgetAmount int64
	UsedAmount   int64
	Percentage   float64
	Status       BudgetStatus
	Description  string
	CompanyID    string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MapExpenseCategory maps an expense category onto its budget bucket.
// Unmapped categories fall into OTHER.
func MapExpenseCategory(category ExpenseCategory) BudgetCategory {
	switch category {
	case CategoryEntertainment:
		return BudgetEntertainment
	case CategoryOfficeSupplies:
		return BudgetOfficeSupplies
	case CategoryTravel:
		return BudgetTravel
	case CategorySoftware, CategoryCloudService, CategoryDomain:
		return BudgetSoftware
	default:
		return BudgetOther
	}
}
