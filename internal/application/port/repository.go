package port

import (
	"context"
	"time"

	"github.com/junsato/corpcard/internal/domain/entity"
)

// TransactionManager runs a function inside a database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ExpenseFilter narrows expense queries. Zero values mean "no filter".
type ExpenseFilter struct {
	Status     entity.ExpenseStatus
	CompanyID  string
	EmployeeID string
	Limit      int
	Offset     int
}

// ExpenseRepository defines persistence operations for BusinessExpense
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.BusinessExpense) error
	GetByID(ctx context.Context, id string) (*entity.BusinessExpense, error)
	GetByExternalID(ctx context.Context, externalTransactionID string) (*entity.BusinessExpense, error)

	// List returns matching expenses ordered by transaction date descending,
	// plus the unpaginated total count.
	List(ctx context.Context, filter ExpenseFilter) ([]*entity.BusinessExpense, int, error)
	ListForMonth(ctx context.Context, companyID string, start, end time.Time) ([]*entity.BusinessExpense, error)

	// UpdateApproval conditionally writes an approval outcome. The update only
	// applies while the stored status is still pending; the boolean reports
	// whether a row was written.
	UpdateApproval(ctx context.Context, expense *entity.BusinessExpense) (bool, error)
	UpdateSyncStatus(ctx context.Context, id, syncStatus, accountingID string) error

	AverageAmountSince(ctx context.Context, cardID string, since time.Time) (float64, error)
	CountByStatus(ctx context.Context, companyID string, status entity.ExpenseStatus, since *time.Time) (int, error)
	CountHighRisk(ctx context.Context, companyID string, threshold float64) (int, error)
	CountPendingWithinLimit(ctx context.Context, companyID string, approvalLimit int64) (int, error)
	SumByCategorySince(ctx context.Context, companyID string, start, end time.Time) (map[entity.ExpenseCategory]int64, error)

	// AverageApprovalHours returns the mean hours between creation and
	// approval for expenses approved since the given time.
	AverageApprovalHours(ctx context.Context, companyID string, since time.Time) (float64, error)
}

// CardRepository defines persistence operations for BusinessCard
type CardRepository interface {
	Create(ctx context.Context, card *entity.BusinessCard) error
	GetByID(ctx context.Context, id string) (*entity.BusinessCard, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.BusinessCard, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*entity.BusinessCard, error)
	CountByStatus(ctx context.Context, status entity.CardStatus) (int, error)
	UpdateStatus(ctx context.Context, id string, status entity.CardStatus) error

	// ApplyUsage atomically adds to the month's usage and debits the
	// available balance, flooring the balance at zero.
	ApplyUsage(ctx context.Context, id string, amount int64, at time.Time) error
	UpdateBalance(ctx context.Context, id string, balance int64) error
	UpdateSyncStatus(ctx context.Context, id, syncStatus string, syncedAt time.Time) error
}

// TransactionFilter narrows card transaction queries.
type TransactionFilter struct {
	UserID   string
	Status   entity.TransactionStatus
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// TransactionRepository defines persistence operations for CardTransaction
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.CardTransaction) error
	GetByID(ctx context.Context, id string) (*entity.CardTransaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*entity.CardTransaction, int, error)
	ListByCardSince(ctx context.Context, cardID string, start, end time.Time) ([]*entity.CardTransaction, error)

	// UpdateStatus conditionally moves a transaction out of one of the
	// allowed source statuses. The boolean reports whether a row was written.
	UpdateStatus(ctx context.Context, id string, status entity.TransactionStatus, allowedFrom []entity.TransactionStatus) (bool, error)
	UpdateDetails(ctx context.Context, id, category, memo string) error

	SumCompleted(ctx context.Context, start, end time.Time) (int64, error)
	CountByStatus(ctx context.Context, status entity.TransactionStatus) (int, error)
	Recent(ctx context.Context, limit int) ([]*entity.CardTransaction, error)
}

// EmployeeRepository defines persistence operations for Employee
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
	ListApprovers(ctx context.Context, companyID string) ([]*entity.Employee, error)
}

// CompanyRepository defines persistence operations for Company
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	First(ctx context.Context) (*entity.Company, error)
}

// BudgetRepository defines persistence operations for Budget
type BudgetRepository interface {
	Create(ctx context.Context, budget *entity.Budget) error
	GetByID(ctx context.Context, id string) (*entity.Budget, error)
	ListByMonth(ctx context.Context, month, companyID string) ([]*entity.Budget, error)
	Update(ctx context.Context, budget *entity.Budget) error
	UpdateUsage(ctx context.Context, id string, usedAmount int64, percentage float64, status entity.BudgetStatus) error
	Deactivate(ctx context.Context, id string) error
}

// ProviderRepository defines persistence operations for CardProvider
type ProviderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.CardProvider, error)
	List(ctx context.Context) ([]*entity.CardProvider, error)
}
