package service

import (
	"context"
	"time"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// nopLogger satisfies Logger without output.
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type mockExpenseRepo struct {
	createFunc                  func(ctx context.Context, expense *entity.BusinessExpense) error
	getByIDFunc                 func(ctx context.Context, id string) (*entity.BusinessExpense, error)
	getByExternalIDFunc         func(ctx context.Context, externalID string) (*entity.BusinessExpense, error)
	listFunc                    func(ctx context.Context, filter port.ExpenseFilter) ([]*entity.BusinessExpense, int, error)
	listForMonthFunc            func(ctx context.Context, companyID string, start, end time.Time) ([]*entity.BusinessExpense, error)
	updateApprovalFunc          func(ctx context.Context, expense *entity.BusinessExpense) (bool, error)
	updateSyncStatusFunc        func(ctx context.Context, id, syncStatus, accountingID string) error
	averageAmountSinceFunc      func(ctx context.Context, cardID string, since time.Time) (float64, error)
	countByStatusFunc           func(ctx context.Context, companyID string, status entity.ExpenseStatus, since *time.Time) (int, error)
	countHighRiskFunc           func(ctx context.Context, companyID string, threshold float64) (int, error)
	countPendingWithinLimitFunc func(ctx context.Context, companyID string, approvalLimit int64) (int, error)
	sumByCategorySinceFunc      func(ctx context.Context, companyID string, start, end time.Time) (map[entity.ExpenseCategory]int64, error)
	averageApprovalHoursFunc    func(ctx context.Context, companyID string, since time.Time) (float64, error)
}

func (m *mockExpenseRepo) Create(ctx context.Context, expense *entity.BusinessExpense) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, expense)
	}
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id string) (*entity.BusinessExpense, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockExpenseRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.BusinessExpense, error) {
	if m.getByExternalIDFunc != nil {
		return m.getByExternalIDFunc(ctx, externalID)
	}
	return nil, nil
}

func (m *mockExpenseRepo) List(ctx context.Context, filter port.ExpenseFilter) ([]*entity.BusinessExpense, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockExpenseRepo) ListForMonth(ctx context.Context, companyID string, start, end time.Time) ([]*entity.BusinessExpense, error) {
	if m.listForMonthFunc != nil {
		return m.listForMonthFunc(ctx, companyID, start, end)
	}
	return nil, nil
}

func (m *mockExpenseRepo) UpdateApproval(ctx context.Context, expense *entity.BusinessExpense) (bool, error) {
	if m.updateApprovalFunc != nil {
		return m.updateApprovalFunc(ctx, expense)
	}
	return true, nil
}

func (m *mockExpenseRepo) UpdateSyncStatus(ctx context.Context, id, syncStatus, accountingID string) error {
	if m.updateSyncStatusFunc != nil {
		return m.updateSyncStatusFunc(ctx, id, syncStatus, accountingID)
	}
	return nil
}

func (m *mockExpenseRepo) AverageAmountSince(ctx context.Context, cardID string, since time.Time) (float64, error) {
	if m.averageAmountSinceFunc != nil {
		return m.averageAmountSinceFunc(ctx, cardID, since)
	}
	return 0, nil
}

func (m *mockExpenseRepo) CountByStatus(ctx context.Context, companyID string, status entity.ExpenseStatus, since *time.Time) (int, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx, companyID, status, since)
	}
	return 0, nil
}

func (m *mockExpenseRepo) CountHighRisk(ctx context.Context, companyID string, threshold float64) (int, error) {
	if m.countHighRiskFunc != nil {
		return m.countHighRiskFunc(ctx, companyID, threshold)
	}
	return 0, nil
}

func (m *mockExpenseRepo) CountPendingWithinLimit(ctx context.Context, companyID string, approvalLimit int64) (int, error) {
	if m.countPendingWithinLimitFunc != nil {
		return m.countPendingWithinLimitFunc(ctx, companyID, approvalLimit)
	}
	return 0, nil
}

func (m *mockExpenseRepo) SumByCategorySince(ctx context.Context, companyID string, start, end time.Time) (map[entity.ExpenseCategory]int64, error) {
	if m.sumByCategorySinceFunc != nil {
		return m.sumByCategorySinceFunc(ctx, companyID, start, end)
	}
	return map[entity.ExpenseCategory]int64{}, nil
}

func (m *mockExpenseRepo) AverageApprovalHours(ctx context.Context, companyID string, since time.Time) (float64, error) {
	if m.averageApprovalHoursFunc != nil {
		return m.averageApprovalHoursFunc(ctx, companyID, since)
	}
	return 0, nil
}

type mockCardRepo struct {
	createFunc           func(ctx context.Context, card *entity.BusinessCard) error
	getByIDFunc          func(ctx context.Context, id string) (*entity.BusinessCard, error)
	listByCompanyFunc    func(ctx context.Context, companyID string) ([]*entity.BusinessCard, error)
	listByEmployeeFunc   func(ctx context.Context, employeeID string) ([]*entity.BusinessCard, error)
	countByStatusFunc    func(ctx context.Context, status entity.CardStatus) (int, error)
	updateStatusFunc     func(ctx context.Context, id string, status entity.CardStatus) error
	applyUsageFunc       func(ctx context.Context, id string, amount int64, at time.Time) error
	updateBalanceFunc    func(ctx context.Context, id string, balance int64) error
	updateSyncStatusFunc func(ctx context.Context, id, syncStatus string, syncedAt time.Time) error
}

func (m *mockCardRepo) Create(ctx context.Context, card *entity.BusinessCard) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, card)
	}
	return nil
}

func (m *mockCardRepo) GetByID(ctx context.Context, id string) (*entity.BusinessCard, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCardRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.BusinessCard, error) {
	if m.listByCompanyFunc != nil {
		return m.listByCompanyFunc(ctx, companyID)
	}
	return nil, nil
}

func (m *mockCardRepo) ListByEmployee(ctx context.Context, employeeID string) ([]*entity.BusinessCard, error) {
	if m.listByEmployeeFunc != nil {
		return m.listByEmployeeFunc(ctx, employeeID)
	}
	return nil, nil
}

func (m *mockCardRepo) CountByStatus(ctx context.Context, status entity.CardStatus) (int, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx, status)
	}
	return 0, nil
}

func (m *mockCardRepo) UpdateStatus(ctx context.Context, id string, status entity.CardStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockCardRepo) ApplyUsage(ctx context.Context, id string, amount int64, at time.Time) error {
	if m.applyUsageFunc != nil {
		return m.applyUsageFunc(ctx, id, amount, at)
	}
	return nil
}

func (m *mockCardRepo) UpdateBalance(ctx context.Context, id string, balance int64) error {
	if m.updateBalanceFunc != nil {
		return m.updateBalanceFunc(ctx, id, balance)
	}
	return nil
}

func (m *mockCardRepo) UpdateSyncStatus(ctx context.Context, id, syncStatus string, syncedAt time.Time) error {
	if m.updateSyncStatusFunc != nil {
		return m.updateSyncStatusFunc(ctx, id, syncStatus, syncedAt)
	}
	return nil
}

type mockTransactionRepo struct {
	createFunc          func(ctx context.Context, tx *entity.CardTransaction) error
	getByIDFunc         func(ctx context.Context, id string) (*entity.CardTransaction, error)
	listFunc            func(ctx context.Context, filter port.TransactionFilter) ([]*entity.CardTransaction, int, error)
	listByCardSinceFunc func(ctx context.Context, cardID string, start, end time.Time) ([]*entity.CardTransaction, error)
	updateStatusFunc    func(ctx context.Context, id string, status entity.TransactionStatus, allowedFrom []entity.TransactionStatus) (bool, error)
	updateDetailsFunc   func(ctx context.Context, id, category, memo string) error
	sumCompletedFunc    func(ctx context.Context, start, end time.Time) (int64, error)
	countByStatusFunc   func(ctx context.Context, status entity.TransactionStatus) (int, error)
	recentFunc          func(ctx context.Context, limit int) ([]*entity.CardTransaction, error)
}

func (m *mockTransactionRepo) Create(ctx context.Context, tx *entity.CardTransaction) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tx)
	}
	return nil
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id string) (*entity.CardTransaction, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockTransactionRepo) List(ctx context.Context, filter port.TransactionFilter) ([]*entity.CardTransaction, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockTransactionRepo) ListByCardSince(ctx context.Context, cardID string, start, end time.Time) ([]*entity.CardTransaction, error) {
	if m.listByCardSinceFunc != nil {
		return m.listByCardSinceFunc(ctx, cardID, start, end)
	}
	return nil, nil
}

func (m *mockTransactionRepo) UpdateStatus(ctx context.Context, id string, status entity.TransactionStatus, allowedFrom []entity.TransactionStatus) (bool, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, allowedFrom)
	}
	return true, nil
}

func (m *mockTransactionRepo) UpdateDetails(ctx context.Context, id, category, memo string) error {
	if m.updateDetailsFunc != nil {
		return m.updateDetailsFunc(ctx, id, category, memo)
	}
	return nil
}

func (m *mockTransactionRepo) SumCompleted(ctx context.Context, start, end time.Time) (int64, error) {
	if m.sumCompletedFunc != nil {
		return m.sumCompletedFunc(ctx, start, end)
	}
	return 0, nil
}

func (m *mockTransactionRepo) CountByStatus(ctx context.Context, status entity.TransactionStatus) (int, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx, status)
	}
	return 0, nil
}

func (m *mockTransactionRepo) Recent(ctx context.Context, limit int) ([]*entity.CardTransaction, error) {
	if m.recentFunc != nil {
		return m.recentFunc(ctx, limit)
	}
	return nil, nil
}

type mockEmployeeRepo struct {
	getByIDFunc       func(ctx context.Context, id string) (*entity.Employee, error)
	listApproversFunc func(ctx context.Context, companyID string) ([]*entity.Employee, error)
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockEmployeeRepo) ListApprovers(ctx context.Context, companyID string) ([]*entity.Employee, error) {
	if m.listApproversFunc != nil {
		return m.listApproversFunc(ctx, companyID)
	}
	return nil, nil
}

type mockCompanyRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.Company, error)
	firstFunc   func(ctx context.Context) (*entity.Company, error)
}

func (m *mockCompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCompanyRepo) First(ctx context.Context) (*entity.Company, error) {
	if m.firstFunc != nil {
		return m.firstFunc(ctx)
	}
	return &entity.Company{ID: "company-1"}, nil
}

type mockBudgetRepo struct {
	createFunc      func(ctx context.Context, budget *entity.Budget) error
	getByIDFunc     func(ctx context.Context, id string) (*entity.Budget, error)
	listByMonthFunc func(ctx context.Context, month, companyID string) ([]*entity.Budget, error)
	updateFunc      func(ctx context.Context, budget *entity.Budget) error
	updateUsageFunc func(ctx context.Context, id string, usedAmount int64, percentage float64, status entity.BudgetStatus) error
	deactivateFunc  func(ctx context.Context, id string) error
}

func (m *mockBudgetRepo) Create(ctx context.Context, budget *entity.Budget) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, budget)
	}
	return nil
}

func (m *mockBudgetRepo) GetByID(ctx context.Context, id string) (*entity.Budget, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBudgetRepo) ListByMonth(ctx context.Context, month, companyID string) ([]*entity.Budget, error) {
	if m.listByMonthFunc != nil {
		return m.listByMonthFunc(ctx, month, companyID)
	}
	return nil, nil
}

func (m *mockBudgetRepo) Update(ctx context.Context, budget *entity.Budget) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, budget)
	}
	return nil
}

func (m *mockBudgetRepo) UpdateUsage(ctx context.Context, id string, usedAmount int64, percentage float64, status entity.BudgetStatus) error {
	if m.updateUsageFunc != nil {
		return m.updateUsageFunc(ctx, id, usedAmount, percentage, status)
	}
	return nil
}

func (m *mockBudgetRepo) Deactivate(ctx context.Context, id string) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id)
	}
	return nil
}

type mockProviderRepo struct {
	getByIDFunc func(ctx context.Context, id string) (*entity.CardProvider, error)
	listFunc    func(ctx context.Context) ([]*entity.CardProvider, error)
}

func (m *mockProviderRepo) GetByID(ctx context.Context, id string) (*entity.CardProvider, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockProviderRepo) List(ctx context.Context) ([]*entity.CardProvider, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

type mockAccountingClient struct {
	postJournalEntryFunc func(ctx context.Context, entry port.JournalEntry) (string, error)
}

func (m *mockAccountingClient) PostJournalEntry(ctx context.Context, entry port.JournalEntry) (string, error) {
	if m.postJournalEntryFunc != nil {
		return m.postJournalEntryFunc(ctx, entry)
	}
	return "acct-1", nil
}

type mockNotifier struct {
	notifyApprovalFunc    func(ctx context.Context, expense *entity.BusinessExpense, approved bool) error
	notifyTransactionFunc func(ctx context.Context, expense *entity.BusinessExpense) error
	notifyBudgetAlertFunc func(ctx context.Context, companyID string, category entity.BudgetCategory, percentage float64) error
}

func (m *mockNotifier) NotifyApproval(ctx context.Context, expense *entity.BusinessExpense, approved bool) error {
	if m.notifyApprovalFunc != nil {
		return m.notifyApprovalFunc(ctx, expense, approved)
	}
	return nil
}

func (m *mockNotifier) NotifyTransaction(ctx context.Context, expense *entity.BusinessExpense) error {
	if m.notifyTransactionFunc != nil {
		return m.notifyTransactionFunc(ctx, expense)
	}
	return nil
}

func (m *mockNotifier) NotifyBudgetAlert(ctx context.Context, companyID string, category entity.BudgetCategory, percentage float64) error {
	if m.notifyBudgetAlertFunc != nil {
		return m.notifyBudgetAlertFunc(ctx, companyID, category, percentage)
	}
	return nil
}

type mockClassifier struct {
	classifyFunc func(ctx context.Context, merchantName, merchantCategoryCode string, amount int64) (port.Classification, error)
}

func (m *mockClassifier) Classify(ctx context.Context, merchantName, merchantCategoryCode string, amount int64) (port.Classification, error) {
	if m.classifyFunc != nil {
		return m.classifyFunc(ctx, merchantName, merchantCategoryCode, amount)
	}
	return port.Classification{Category: entity.CategoryOther, AccountCode: "雑費"}, nil
}

type mockGateway struct {
	providerType        entity.ProviderType
	getCardsFunc        func(ctx context.Context, companyID string) ([]port.CardInfo, error)
	getCardDetailsFunc  func(ctx context.Context, externalCardID string) (port.CardInfo, error)
	getTransactionsFunc func(ctx context.Context, externalCardID string, start, end time.Time) ([]port.TransactionData, error)
	healthCheckFunc     func(ctx context.Context) error
}

func (m *mockGateway) ProviderType() entity.ProviderType {
	return m.providerType
}

func (m *mockGateway) GetCards(ctx context.Context, companyID string) ([]port.CardInfo, error) {
	if m.getCardsFunc != nil {
		return m.getCardsFunc(ctx, companyID)
	}
	return nil, nil
}

func (m *mockGateway) GetCardDetails(ctx context.Context, externalCardID string) (port.CardInfo, error) {
	if m.getCardDetailsFunc != nil {
		return m.getCardDetailsFunc(ctx, externalCardID)
	}
	return port.CardInfo{}, nil
}

func (m *mockGateway) GetTransactions(ctx context.Context, externalCardID string, start, end time.Time) ([]port.TransactionData, error) {
	if m.getTransactionsFunc != nil {
		return m.getTransactionsFunc(ctx, externalCardID, start, end)
	}
	return nil, nil
}

func (m *mockGateway) HealthCheck(ctx context.Context) error {
	if m.healthCheckFunc != nil {
		return m.healthCheckFunc(ctx)
	}
	return nil
}

type mockGatewayFactory struct {
	gatewayForFunc func(provider *entity.CardProvider) (port.CardGateway, error)
}

func (m *mockGatewayFactory) GatewayFor(provider *entity.CardProvider) (port.CardGateway, error) {
	if m.gatewayForFunc != nil {
		return m.gatewayForFunc(provider)
	}
	return &mockGateway{}, nil
}

// mockTxManager runs the function directly, outside any real transaction.
type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}
