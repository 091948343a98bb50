package entity

import "time"

// CompanySize is a coarse head-count bucket
type CompanySize string

const (
	CompanySmall  CompanySize = "small"  // 1-50
	CompanyMedium CompanySize = "medium" // 51-300
	CompanyLarge  CompanySize = "large"  // 300+
)

// Company is the owning organization for cards, employees and expenses.
type Company struct {
	ID                   string
	Name                 string
	NameKana             string
	RegistrationNumber   string
	TaxID                string
	Size                 CompanySize
	Industry             string
	FiscalYearStartMonth time.Month // Japan commonly April
	MonthlyBudget        int64      // 0 means no company-wide budget
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
