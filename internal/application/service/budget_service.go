package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/config"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// BudgetCategorySummary is one budget line of a monthly summary.
type BudgetCategorySummary struct {
	ID           string                `json:"id"`
	Name         entity.BudgetCategory `json:"name"`
	LocalName    string                `json:"local_name"`
	BudgetAmount int64                 `json:"budget_amount"`
	UsedAmount   int64                 `json:"used_amount"`
	Percentage   float64               `json:"percentage"`
	Status       entity.BudgetStatus   `json:"status"`
	Description  string                `json:"description"`
}

// MonthlyBudgetSummary is the dashboard view of a company's month.
type MonthlyBudgetSummary struct {
	Month       string                  `json:"month"`
	TotalBudget int64                   `json:"total_budget"`
	TotalUsed   int64                   `json:"total_used"`
	Categories  []BudgetCategorySummary `json:"categories"`
}

// BudgetService aggregates expenses against monthly departmental budgets.
type BudgetService interface {
	GetBudgetsByMonth(ctx context.Context, month, companyID string) *MonthlyBudgetSummary
	CreateBudget(ctx context.Context, budget *entity.Budget) error
	UpdateBudget(ctx context.Context, budget *entity.Budget) (*entity.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	CheckAndAlert(ctx context.Context, companyID string, expense *entity.BusinessExpense) error
}

type budgetServiceImpl struct {
	budgetRepo  port.BudgetRepository
	expenseRepo port.ExpenseRepository
	companyRepo port.CompanyRepository
	notifier    port.Notifier
	cfg         config.BudgetConfig
	logger      Logger
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo port.BudgetRepository,
	expenseRepo port.ExpenseRepository,
	companyRepo port.CompanyRepository,
	notifier port.Notifier,
	cfg config.BudgetConfig,
	logger Logger,
) BudgetService {
	return &budgetServiceImpl{
		budgetRepo:  budgetRepo,
		expenseRepo: expenseRepo,
		companyRepo: companyRepo,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

// GetBudgetsByMonth returns the month's budget lines with usage recomputed
// from live expense data. This read path degrades to an empty summary on
// internal errors so the dashboard stays available.
func (s *budgetServiceImpl) GetBudgetsByMonth(ctx context.Context, month, companyID string) *MonthlyBudgetSummary {
	summary, err := s.buildMonthSummary(ctx, month, companyID)
	if err != nil {
		s.logger.Error("Budget summary failed, returning empty result",
			"error", err,
			"month", month,
			"company_id", companyID)
		return &MonthlyBudgetSummary{Month: month, Categories: []BudgetCategorySummary{}}
	}
	return summary
}

func (s *budgetServiceImpl) buildMonthSummary(ctx context.Context, month, companyID string) (*MonthlyBudgetSummary, error) {
	if companyID == "" {
		company, err := s.companyRepo.First(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve company: %w", err)
		}
		if company == nil {
			return nil, fmt.Errorf("%w: no company", entity.ErrNotFound)
		}
		companyID = company.ID
	}

	budgets, err := s.budgetRepo.ListByMonth(ctx, month, companyID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	if len(budgets) == 0 {
		if err := s.seedDefaultBudgets(ctx, month, companyID); err != nil {
			return nil, fmt.Errorf("seed default budgets: %w", err)
		}
		budgets, err = s.budgetRepo.ListByMonth(ctx, month, companyID)
		if err != nil {
			return nil, fmt.Errorf("list budgets after seed: %w", err)
		}
	}

	if err := s.recomputeUsage(ctx, month, companyID, budgets); err != nil {
		return nil, fmt.Errorf("recompute usage: %w", err)
	}

	summary := &MonthlyBudgetSummary{Month: month, Categories: make([]BudgetCategorySummary, 0, len(budgets))}
	for _, budget := range budgets {
		summary.TotalBudget += budget.BudgetAmount
		summary.TotalUsed += budget.UsedAmount
		summary.Categories = append(summary.Categories, BudgetCategorySummary{
			ID:           budget.ID,
			Name:         budget.Category,
			LocalName:    budget.CategoryName,
			BudgetAmount: budget.BudgetAmount,
			UsedAmount:   budget.UsedAmount,
			Percentage:   budget.Percentage,
			Status:       budget.Status,
			Description:  budget.Description,
		})
	}

	return summary, nil
}

// seedDefaultBudgets bootstraps the five standard categories for a month
// that has no budget rows yet.
func (s *budgetServiceImpl) seedDefaultBudgets(ctx context.Context, month, companyID string) error {
	defaults := []struct {
		category    entity.BudgetCategory
		localName   string
		amount      int64
		description string
	}{
		{entity.BudgetEntertainment, "接待費", s.cfg.DefaultEntertainment, "Client meetings and company dinners"},
		{entity.BudgetOfficeSupplies, "事務用品", s.cfg.DefaultOfficeSupply, "Office supplies and equipment"},
		{entity.BudgetTravel, "旅費交通費", s.cfg.DefaultTravel, "All travel related spend"},
		{entity.BudgetSoftware, "ソフトウェア", s.cfg.DefaultSoftware, "Software licenses and SaaS subscriptions"},
		{entity.BudgetOther, "その他", s.cfg.DefaultOther, "Miscellaneous spend"},
	}

	for _, d := range defaults {
		budget := &entity.Budget{
			ID:           uuid.NewString(),
			Month:        month,
			Category:     d.category,
			CategoryName: d.localName,
			BudgetAmount: d.amount,
			Status:       entity.BudgetSafe,
			Description:  d.description,
			CompanyID:    companyID,
			IsActive:     true,
		}
		if err := s.budgetRepo.Create(ctx, budget); err != nil {
			return fmt.Errorf("create default budget %s: %w", d.category, err)
		}
	}

	s.logger.Info("Seeded default budgets", "month", month, "company_id", companyID)
	return nil
}

// recomputeUsage derives usedAmount/percentage/status for each budget line
// from the month's non-rejected expenses.
func (s *budgetServiceImpl) recomputeUsage(ctx context.Context, month, companyID string, budgets []*entity.Budget) error {
	start, end, err := monthBounds(month)
	if err != nil {
		return err
	}

	byCategory, err := s.expenseRepo.SumByCategorySince(ctx, companyID, start, end)
	if err != nil {
		return fmt.Errorf("sum by category: %w", err)
	}

	usage := make(map[entity.BudgetCategory]int64)
	for category, amount := range byCategory {
		usage[entity.MapExpenseCategory(category)] += amount
	}

	for _, budget := range budgets {
		used := usage[budget.Category]
		percentage := 0.0
		if budget.BudgetAmount > 0 {
			percentage = float64(used) / float64(budget.BudgetAmount) * 100
			percentage = math.Round(percentage*100) / 100
		}

		status := entity.BudgetSafe
		switch {
		case percentage >= s.cfg.ExceededPercentage:
			status = entity.BudgetExceeded
		case percentage >= s.cfg.WarningPercentage:
			status = entity.BudgetWarning
		}

		budget.UsedAmount = used
		budget.Percentage = percentage
		budget.Status = status

		if err := s.budgetRepo.UpdateUsage(ctx, budget.ID, used, percentage, status); err != nil {
			return fmt.Errorf("update budget %s: %w", budget.ID, err)
		}
	}

	return nil
}

// CheckAndAlert notifies when a new expense pushes its budget bucket over
// the warning threshold. Best effort; the caller logs failures.
func (s *budgetServiceImpl) CheckAndAlert(ctx context.Context, companyID string, expense *entity.BusinessExpense) error {
	month := expense.TransactionDate.Format("2006-01")
	budgets, err := s.budgetRepo.ListByMonth(ctx, month, companyID)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}

	bucket := entity.MapExpenseCategory(expense.Category)
	for _, budget := range budgets {
		if budget.Category != bucket || budget.BudgetAmount <= 0 {
			continue
		}
		percentage := float64(budget.UsedAmount+expense.Amount) / float64(budget.BudgetAmount) * 100
		if percentage >= s.cfg.WarningPercentage {
			return s.notifier.NotifyBudgetAlert(ctx, companyID, bucket, percentage)
		}
	}
	return nil
}

// CreateBudget creates a budget line.
func (s *budgetServiceImpl) CreateBudget(ctx context.Context, budget *entity.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	budget.IsActive = true
	if budget.Status == "" {
		budget.Status = entity.BudgetSafe
	}
	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	s.logger.Info("Budget created", "budget_id", budget.ID, "month", budget.Month, "category", budget.Category)
	return nil
}

// UpdateBudget updates a budget line and returns the stored row.
func (s *budgetServiceImpl) UpdateBudget(ctx context.Context, budget *entity.Budget) (*entity.Budget, error) {
	if err := s.budgetRepo.Update(ctx, budget); err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	stored, err := s.budgetRepo.GetByID(ctx, budget.ID)
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: budget %s", entity.ErrNotFound, budget.ID)
	}
	return stored, nil
}

// DeleteBudget soft-deletes a budget line.
func (s *budgetServiceImpl) DeleteBudget(ctx context.Context, id string) error {
	if err := s.budgetRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate budget: %w", err)
	}
	s.logger.Info("Budget deactivated", "budget_id", id)
	return nil
}

// monthBounds returns the [start, end) interval for a YYYY-MM month string.
func monthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}
