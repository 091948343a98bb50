package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/config"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Priority buckets for the approval queue
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// PendingExpense is an expense decorated for the approval queue.
type PendingExpense struct {
	Expense    *entity.BusinessExpense
	Approver   *entity.Employee // set when already decided
	Priority   string
	Violations []string
	TaxInfo    TaxInfo
}

// TaxInfo summarizes the Japan tax attributes of an expense.
type TaxInfo struct {
	TaxType            entity.TaxType `json:"tax_type"`
	TaxAmount          int64          `json:"tax_amount"`
	AmountExcludingTax int64          `json:"amount_excluding_tax"`
	QualifiedInvoice   bool           `json:"qualified_invoice"`
	InvoiceNumber      string         `json:"invoice_number"`
}

// PendingApprovalsResult is a page of the approval queue.
type PendingApprovalsResult struct {
	Expenses   []PendingExpense
	Total      int
	HasMore    bool
	Statistics ApprovalQueueStats
}

// ApprovalQueueStats summarizes the returned page.
type ApprovalQueueStats struct {
	Pending    int `json:"pending"`
	HighRisk   int `json:"high_risk"`
	OverBudget int `json:"over_budget"`
}

// BulkApprovalItemError records a single failed item in a bulk operation.
type BulkApprovalItemError struct {
	ExpenseID string `json:"expense_id"`
	Error     string `json:"error"`
}

// BulkApprovalResult reports the outcome of a bulk approval. Items commit
// independently; there is no atomicity across the batch.
type BulkApprovalResult struct {
	Successful int                       `json:"successful"`
	Failed     int                       `json:"failed"`
	Results    []*entity.BusinessExpense `json:"results"`
	Errors     []BulkApprovalItemError   `json:"errors"`
}

// ApprovalStats aggregates approval workload and performance.
type ApprovalStats struct {
	Total       ApprovalStatusCounts `json:"total"`
	Monthly     ApprovalStatusCounts `json:"monthly"`
	Performance ApprovalPerformance  `json:"performance"`
}

// ApprovalStatusCounts counts expenses by approval status.
type ApprovalStatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	HighRisk int `json:"high_risk,omitempty"`
}

// ApprovalPerformance summarizes how quickly approvals move.
type ApprovalPerformance struct {
	AverageApprovalTimeHours int `json:"average_approval_time_hours"`
	ApprovalRate             int `json:"approval_rate"`
}

// ApproverWorkload is the pending count one approver could handle.
type ApproverWorkload struct {
	Approver     *entity.Employee `json:"approver"`
	PendingCount int              `json:"pending_count"`
}

// ApprovalService manages the expense approval workflow
type ApprovalService interface {
	ProcessApproval(ctx context.Context, expenseID, approverID string, approved bool, comment string) (*entity.BusinessExpense, error)
	ProcessBulkApproval(ctx context.Context, expenseIDs []string, approverID string, approved bool, comment string) (*BulkApprovalResult, error)
	GetPendingApprovals(ctx context.Context, filter port.ExpenseFilter) (*PendingApprovalsResult, error)
	GetApprovalStats(ctx context.Context, companyID string) (*ApprovalStats, error)
	PendingCountsByApprover(ctx context.Context, companyID string) ([]ApproverWorkload, error)
	RequestManualReview(ctx context.Context, expense *entity.BusinessExpense) error
	SyncApproved(ctx context.Context, expense *entity.BusinessExpense) error
}

type approvalServiceImpl struct {
	expenseRepo  port.ExpenseRepository
	employeeRepo port.EmployeeRepository
	accounting   port.AccountingClient
	notifier     port.Notifier
	cfg          config.ApprovalConfig
	riskCfg      config.RiskConfig
	logger       Logger
	now          func() time.Time
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	expenseRepo port.ExpenseRepository,
	employeeRepo port.EmployeeRepository,
	accounting port.AccountingClient,
	notifier port.Notifier,
	cfg config.ApprovalConfig,
	riskCfg config.RiskConfig,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		expenseRepo:  expenseRepo,
		employeeRepo: employeeRepo,
		accounting:   accounting,
		notifier:     notifier,
		cfg:          cfg,
		riskCfg:      riskCfg,
		logger:       logger,
		now:          time.Now,
	}
}

// ProcessApproval approves or rejects a single pending expense.
//
// The status write is a conditional update keyed on the pending status, so
// only one of two racing approvals can win; the loser observes zero affected
// rows and fails with ErrAlreadyProcessed.
func (s *approvalServiceImpl) ProcessApproval(ctx context.Context, expenseID, approverID string, approved bool, comment string) (*entity.BusinessExpense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		s.logger.Error("Failed to load expense", "error", err, "expense_id", expenseID)
		return nil, fmt.Errorf("get expense: %w", err)
	}
	if expense == nil {
		return nil, fmt.Errorf("%w: expense %s", entity.ErrNotFound, expenseID)
	}

	if expense.Status != entity.ExpensePending {
		return nil, fmt.Errorf("%w: expense %s is %s", entity.ErrAlreadyProcessed, expenseID, expense.Status)
	}

	approver, err := s.employeeRepo.GetByID(ctx, approverID)
	if err != nil {
		s.logger.Error("Failed to load approver", "error", err, "approver_id", approverID)
		return nil, fmt.Errorf("get approver: %w", err)
	}
	if approver == nil || !approver.CanApprove {
		return nil, fmt.Errorf("%w: employee %s", entity.ErrUnauthorized, approverID)
	}

	if approver.ApprovalLimit > 0 && expense.Amount > approver.ApprovalLimit {
		return nil, fmt.Errorf("%w: amount %d exceeds limit %d", entity.ErrApprovalLimitExceeded, expense.Amount, approver.ApprovalLimit)
	}

	if approved {
		err = expense.Approve(approverID, comment, s.now())
	} else {
		reason := comment
		if reason == "" {
			reason = "Rejected"
		}
		err = expense.Reject(approverID, reason, s.now())
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.expenseRepo.UpdateApproval(ctx, expense)
	if err != nil {
		s.logger.Error("Failed to persist approval", "error", err, "expense_id", expenseID)
		return nil, fmt.Errorf("update approval: %w", err)
	}
	if !updated {
		// Another approver won the race between our read and write.
		return nil, fmt.Errorf("%w: expense %s", entity.ErrAlreadyProcessed, expenseID)
	}

	s.logger.Info("Approval processed",
		"expense_id", expenseID,
		"approver_id", approverID,
		"approved", approved,
		"amount", expense.Amount)

	go s.processApprovalAsync(expense, approved)

	return expense, nil
}

// processApprovalAsync runs the fire-and-forget side effects of a decided
// approval. Failures are logged and never surfaced to the caller.
func (s *approvalServiceImpl) processApprovalAsync(expense *entity.BusinessExpense, approved bool) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Panic in approval follow-up", "panic", p, "expense_id", expense.ID)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if approved {
		if err := s.syncToAccounting(ctx, expense); err != nil {
			s.logger.Error("Accounting sync failed", "error", err, "expense_id", expense.ID)
		}
	}

	if err := s.notifier.NotifyApproval(ctx, expense, approved); err != nil {
		s.logger.Error("Approval notification failed", "error", err, "expense_id", expense.ID)
	}
}

// SyncApproved posts an already-approved expense to the accounting system.
// Used for expenses that never enter the approval queue.
func (s *approvalServiceImpl) SyncApproved(ctx context.Context, expense *entity.BusinessExpense) error {
	if expense.Status != entity.ExpenseApproved {
		return fmt.Errorf("%w: expense %s is %s", entity.ErrInvalidStateTransition, expense.ID, expense.Status)
	}
	return s.syncToAccounting(ctx, expense)
}

func (s *approvalServiceImpl) syncToAccounting(ctx context.Context, expense *entity.BusinessExpense) error {
	entry := port.JournalEntry{
		CompanyID:   expense.CompanyID,
		IssueDate:   expense.TransactionDate,
		AccountCode: expense.AccountCode,
		TaxCode:     string(expense.TaxType),
		Amount:      expense.AmountExcludingTax,
		Description: fmt.Sprintf("%s - %s", expense.MerchantName, expense.Memo),
		ProjectID:   expense.ProjectID,
	}

	accountingID, err := s.accounting.PostJournalEntry(ctx, entry)
	if err != nil {
		if updErr := s.expenseRepo.UpdateSyncStatus(ctx, expense.ID, "failed", ""); updErr != nil {
			s.logger.Error("Failed to record sync failure", "error", updErr, "expense_id", expense.ID)
		}
		return err
	}

	return s.expenseRepo.UpdateSyncStatus(ctx, expense.ID, "synced", accountingID)
}

// ProcessBulkApproval processes each expense independently. One item's
// failure is recorded and does not abort the remaining items.
func (s *approvalServiceImpl) ProcessBulkApproval(ctx context.Context, expenseIDs []string, approverID string, approved bool, comment string) (*BulkApprovalResult, error) {
	result := &BulkApprovalResult{}

	for _, expenseID := range expenseIDs {
		expense, err := s.ProcessApproval(ctx, expenseID, approverID, approved, comment)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BulkApprovalItemError{
				ExpenseID: expenseID,
				Error:     err.Error(),
			})
			continue
		}
		result.Successful++
		result.Results = append(result.Results, expense)
	}

	s.logger.Info("Bulk approval processed",
		"approver_id", approverID,
		"successful", result.Successful,
		"failed", result.Failed)

	return result, nil
}

// GetPendingApprovals returns a page of the approval queue with priority,
// tax and violation context attached to each item.
func (s *approvalServiceImpl) GetPendingApprovals(ctx context.Context, filter port.ExpenseFilter) (*PendingApprovalsResult, error) {
	expenses, total, err := s.expenseRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list expenses", "error", err)
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	result := &PendingApprovalsResult{
		Total:   total,
		HasMore: filter.Offset+filter.Limit < total,
	}

	for _, expense := range expenses {
		item := PendingExpense{
			Expense:    expense,
			Priority:   s.calculatePriority(expense),
			Violations: expense.PolicyViolations,
			TaxInfo: TaxInfo{
				TaxType:            expense.TaxType,
				TaxAmount:          expense.TaxAmount,
				AmountExcludingTax: expense.AmountExcludingTax,
				QualifiedInvoice:   expense.QualifiedInvoice,
				InvoiceNumber:      expense.InvoiceNumber,
			},
		}

		if expense.ApproverID != "" {
			approver, err := s.employeeRepo.GetByID(ctx, expense.ApproverID)
			if err != nil {
				s.logger.Error("Failed to load approver", "error", err, "approver_id", expense.ApproverID)
			} else {
				item.Approver = approver
			}
		}

		if expense.Status == entity.ExpensePending {
			result.Statistics.Pending++
		}
		if expense.RiskScore > s.riskCfg.ManualReviewThreshold {
			result.Statistics.HighRisk++
		}
		if expense.Amount > s.cfg.LargeAmount {
			result.Statistics.OverBudget++
		}

		result.Expenses = append(result.Expenses, item)
	}

	return result, nil
}

// calculatePriority maps an expense to an approval queue bucket. Used for
// queue ordering only; never persisted.
func (s *approvalServiceImpl) calculatePriority(expense *entity.BusinessExpense) string {
	score := 0

	switch {
	case expense.Amount > s.cfg.HugeAmount:
		score += 3
	case expense.Amount > s.cfg.LargeAmount:
		score += 2
	default:
		score++
	}

	switch {
	case expense.RiskScore > s.cfg.HighRiskScore:
		score += 3
	case expense.RiskScore > s.cfg.MediumRiskScore:
		score += 2
	}

	score += len(expense.PolicyViolations)

	days := int(s.now().Sub(expense.TransactionDate).Hours() / 24)
	switch {
	case days > s.cfg.StaleAfterDays:
		score += 2
	case days > s.cfg.AgingAfterDays:
		score++
	}

	switch {
	case score >= 7:
		return PriorityUrgent
	case score >= 5:
		return PriorityHigh
	case score >= 3:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// GetApprovalStats aggregates approval workload and throughput for a company.
func (s *approvalServiceImpl) GetApprovalStats(ctx context.Context, companyID string) (*ApprovalStats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &ApprovalStats{}

	counts := []struct {
		status entity.ExpenseStatus
		since  *time.Time
		dest   *int
	}{
		{entity.ExpensePending, nil, &stats.Total.Pending},
		{entity.ExpenseApproved, nil, &stats.Total.Approved},
		{entity.ExpenseRejected, nil, &stats.Total.Rejected},
		{entity.ExpensePending, &monthStart, &stats.Monthly.Pending},
		{entity.ExpenseApproved, &monthStart, &stats.Monthly.Approved},
		{entity.ExpenseRejected, &monthStart, &stats.Monthly.Rejected},
	}
	for _, c := range counts {
		n, err := s.expenseRepo.CountByStatus(ctx, companyID, c.status, c.since)
		if err != nil {
			return nil, fmt.Errorf("count expenses: %w", err)
		}
		*c.dest = n
	}

	highRisk, err := s.expenseRepo.CountHighRisk(ctx, companyID, s.riskCfg.ManualReviewThreshold)
	if err != nil {
		return nil, fmt.Errorf("count high risk: %w", err)
	}
	stats.Total.HighRisk = highRisk

	avgHours, err := s.expenseRepo.AverageApprovalHours(ctx, companyID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("average approval time: %w", err)
	}
	stats.Performance.AverageApprovalTimeHours = int(avgHours + 0.5)

	decided := stats.Total.Approved + stats.Total.Rejected
	if decided > 0 {
		stats.Performance.ApprovalRate = (stats.Total.Approved*100 + decided/2) / decided
	}

	return stats, nil
}

// PendingCountsByApprover reports, per approver, how many pending expenses
// fall within that approver's limit, busiest first.
func (s *approvalServiceImpl) PendingCountsByApprover(ctx context.Context, companyID string) ([]ApproverWorkload, error) {
	approvers, err := s.employeeRepo.ListApprovers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list approvers: %w", err)
	}

	workloads := make([]ApproverWorkload, 0, len(approvers))
	for _, approver := range approvers {
		count, err := s.expenseRepo.CountPendingWithinLimit(ctx, companyID, approver.ApprovalLimit)
		if err != nil {
			return nil, fmt.Errorf("count pending for approver %s: %w", approver.ID, err)
		}
		workloads = append(workloads, ApproverWorkload{
			Approver:     approver,
			PendingCount: count,
		})
	}

	sort.SliceStable(workloads, func(i, j int) bool {
		return workloads[i].PendingCount > workloads[j].PendingCount
	})

	return workloads, nil
}

// RequestManualReview flags a high-risk expense for a human reviewer.
func (s *approvalServiceImpl) RequestManualReview(ctx context.Context, expense *entity.BusinessExpense) error {
	s.logger.Info("Manual review requested",
		"expense_id", expense.ID,
		"risk_score", expense.RiskScore,
		"violations", len(expense.PolicyViolations))
	return s.notifier.NotifyTransaction(ctx, expense)
}
