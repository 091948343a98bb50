package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/junsato/corpcard/internal/application/port"
)

// ReportService exports monthly expense workbooks for accounting review
type ReportService interface {
	// WriteMonthlyExpenseReport writes an xlsx workbook for the given month
	// (YYYY-MM) to w: one sheet of expense lines, one budget summary sheet.
	WriteMonthlyExpenseReport(ctx context.Context, month, companyID string, w io.Writer) error
}

type reportServiceImpl struct {
	expenseRepo port.ExpenseRepository
	budgets     BudgetService
	logger      Logger
}

// NewReportService creates a new ReportService
func NewReportService(expenseRepo port.ExpenseRepository, budgets BudgetService, logger Logger) ReportService {
	return &reportServiceImpl{
		expenseRepo: expenseRepo,
		budgets:     budgets,
		logger:      logger,
	}
}

var expenseHeader = []interface{}{
	"Date", "Merchant", "Category", "Amount", "Amount excl. tax", "Tax", "Tax type",
	"Status", "Approver", "Risk score", "Violations",
}

func (s *reportServiceImpl) WriteMonthlyExpenseReport(ctx context.Context, month, companyID string, w io.Writer) error {
	start, end, err := monthBounds(month)
	if err != nil {
		return err
	}

	expenses, err := s.expenseRepo.ListForMonth(ctx, companyID, start, end)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const expenseSheet = "Expenses"
	index, err := f.NewSheet(expenseSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	if err := f.SetSheetRow(expenseSheet, "A1", &expenseHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, expense := range expenses {
		violations := ""
		for j, v := range expense.PolicyViolations {
			if j > 0 {
				violations += ", "
			}
			violations += v
		}
		row := []interface{}{
			expense.TransactionDate.Format("2006-01-02"),
			expense.MerchantName,
			string(expense.Category),
			expense.Amount,
			expense.AmountExcludingTax,
			expense.TaxAmount,
			string(expense.TaxType),
			string(expense.Status),
			expense.ApproverID,
			expense.RiskScore,
			violations,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(expenseSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := s.writeBudgetSheet(ctx, f, month, companyID); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("Expense report generated",
		"month", month,
		"company_id", companyID,
		"rows", len(expenses))

	return nil
}

func (s *reportServiceImpl) writeBudgetSheet(ctx context.Context, f *excelize.File, month, companyID string) error {
	const budgetSheet = "Budgets"
	if _, err := f.NewSheet(budgetSheet); err != nil {
		return fmt.Errorf("create budget sheet: %w", err)
	}

	header := []interface{}{"Category", "Budget", "Used", "Percentage", "Status"}
	if err := f.SetSheetRow(budgetSheet, "A1", &header); err != nil {
		return fmt.Errorf("write budget header: %w", err)
	}

	summary := s.budgets.GetBudgetsByMonth(ctx, month, companyID)
	for i, c := range summary.Categories {
		row := []interface{}{string(c.Name), c.BudgetAmount, c.UsedAmount, c.Percentage, string(c.Status)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(budgetSheet, cell, &row); err != nil {
			return fmt.Errorf("write budget row %d: %w", i+2, err)
		}
	}

	return nil
}
