package entity

import (
	"fmt"
	"time"
)

// ExpenseStatus is the lifecycle status of a business expense
type ExpenseStatus string

const (
	ExpensePending   ExpenseStatus = "pending"
	ExpenseApproved  ExpenseStatus = "approved"
	ExpenseRejected  ExpenseStatus = "rejected"
	ExpenseCompleted ExpenseStatus = "completed" // posted to accounting
	ExpenseCancelled ExpenseStatus = "cancelled"
)

// ExpenseCategory is the closed set of accounting categories
type ExpenseCategory string

const (
	CategoryOfficeSupplies ExpenseCategory = "office_supplies"
	CategoryTravel         ExpenseCategory = "travel"
	CategoryEntertainment  ExpenseCategory = "entertainment"
	CategoryAdvertising    ExpenseCategory = "advertising"
	CategoryEducation      ExpenseCategory = "education"
	CategoryCommunication  ExpenseCategory = "communication"
	CategoryUtilities      ExpenseCategory = "utilities"
	CategoryRent           ExpenseCategory = "rent"
	CategoryMaintenance    ExpenseCategory = "maintenance"
	CategoryInsurance      ExpenseCategory = "insurance"
	CategorySoftware       ExpenseCategory = "software"
	CategoryCloudService   ExpenseCategory = "cloud_service"
	CategoryDomain         ExpenseCategory = "domain"
	CategoryOther          ExpenseCategory = "other"
)

// TaxType is the Japan consumption tax classification
type TaxType string

const (
	TaxableStandard TaxType = "taxable_10" // 10% standard rate
	TaxableReduced  TaxType = "taxable_8"  // 8% reduced rate (food etc.)
	TaxFree         TaxType = "tax_free"
	TaxExempt       TaxType = "tax_exempt"
)

// BusinessExpense is an employee-submitted or card-sourced business expense.
//
// Invariant: Amount == AmountExcludingTax + TaxAmount.
// Lifecycle: pending -> approved | rejected, both terminal for the approval
// flow; approval is one-shot.
type BusinessExpense struct {
	ID                 string
	Amount             int64 // gross, tax included
	AmountExcludingTax int64
	TaxAmount          int64

	MerchantName         string
	MerchantCategoryCode string
	TransactionDate      time.Time
	PostedDate           *time.Time

	CardID     string
	CompanyID  string
	EmployeeID string

	Status          ExpenseStatus
	ApproverID      string
	ApprovedAt      *time.Time
	ApprovalComment string

	Category    ExpenseCategory
	AccountCode string
	ProjectID   string
	CostCenter  string

	TaxType          TaxType
	InvoiceNumber    string
	QualifiedInvoice bool // Japan qualified invoice scheme (2023)

	ReceiptURL      string
	ReceiptVerified bool

	Memo            string
	BusinessPurpose string
	Attendees       []string

	ExternalTransactionID string
	AccountingID          string
	SyncStatus            string // pending, synced, failed

	PolicyViolations []string
	RiskScore        float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Approve transitions a pending expense to approved. Re-approval of a
// non-pending expense is an error.
func (e *BusinessExpense) Approve(approverID, comment string, at time.Time) error {
	if e.Status != ExpensePending {
		return fmt.Errorf("%w: expense %s is %s", ErrAlreadyProcessed, e.ID, e.Status)
	}
	e.Status = ExpenseApproved
	e.ApproverID = approverID
	e.ApprovalComment = comment
	t := at
	e.ApprovedAt = &t
	return nil
}

// Reject transitions a pending expense to rejected. A reason is required.
func (e *BusinessExpense) Reject(approverID, reason string, at time.Time) error {
	if e.Status != ExpensePending {
		return fmt.Errorf("%w: expense %s is %s", ErrAlreadyProcessed, e.ID, e.Status)
	}
	if reason == "" {
		return ErrRejectionReasonRequired
	}
	e.Status = ExpenseRejected
	e.ApproverID = approverID
	e.ApprovalComment = reason
	t := at
	e.ApprovedAt = &t
	return nil
}

// SetTax records the tax split and keeps the gross amount consistent.
func (e *BusinessExpense) SetTax(amountExcludingTax, taxAmount int64, taxType TaxType) {
	e.AmountExcludingTax = amountExcludingTax
	e.TaxAmount = taxAmount
	e.TaxType = taxType
	e.Amount = amountExcludingTax + taxAmount
}

// IsHighRisk reports whether the expense should be flagged for manual review.
func (e *BusinessExpense) IsHighRisk() bool {
	return e.RiskScore > 0.7 || len(e.PolicyViolations) > 0
}

// NeedsReceiptVerification reports whether a receipt check is still required.
// Japan tax rules require receipts for expenses of 30,000 yen and above.
func (e *BusinessExpense) NeedsReceiptVerification() bool {
	return e.Amount >= 30000 && !e.ReceiptVerified
}

// IsEntertainment reports whether the expense falls under entertainment
// expense rules (attendee records required).
func (e *BusinessExpense) IsEntertainment() bool {
	return e.Category == CategoryEntertainment
}

// AccountingPeriod returns the fiscal year the expense belongs to, given the
// company's fiscal year start month (Japan commonly April).
func (e *BusinessExpense) AccountingPeriod(fiscalStartMonth time.Month) string {
	year := e.TransactionDate.Year()
	if e.TransactionDate.Month() < fiscalStartMonth {
		year--
	}
	return fmt.Sprintf("%d", year)
}
