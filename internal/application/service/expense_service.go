package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/config"
	"github.com/junsato/corpcard/internal/domain/entity"
	"github.com/junsato/corpcard/internal/domain/policy"
	"github.com/junsato/corpcard/internal/domain/risk"
	"github.com/junsato/corpcard/internal/domain/tax"
)

// ExpenseRequest describes a new card charge entering the system.
type ExpenseRequest struct {
	CardID                string
	Amount                int64
	MerchantName          string
	MerchantCategoryCode  string
	TransactionDate       time.Time
	ExternalTransactionID string
	AutoClassify          bool
}

// CardSyncResult reports one card's outcome during a company-wide sync.
type CardSyncResult struct {
	CardID           string `json:"card_id"`
	ProviderType     string `json:"provider_type"`
	TransactionCount int    `json:"transaction_count"`
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
}

// ExpenseService processes card charges into classified, tax-split,
// policy-checked business expenses.
type ExpenseService interface {
	ProcessNewExpense(ctx context.Context, req ExpenseRequest) (*entity.BusinessExpense, error)
	SyncAllTransactions(ctx context.Context, companyID string) ([]CardSyncResult, error)
}

type expenseServiceImpl struct {
	expenseRepo  port.ExpenseRepository
	cardRepo     port.CardRepository
	providerRepo port.ProviderRepository
	classifier   port.Classifier
	gateways     port.GatewayFactory
	approvals    ApprovalService
	budgets      BudgetService
	notifier     port.Notifier
	txManager    port.TransactionManager
	taxCalc      *tax.Calculator
	riskScorer   *risk.Scorer
	riskCfg      config.RiskConfig
	logger       Logger
	now          func() time.Time
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo port.ExpenseRepository,
	cardRepo port.CardRepository,
	providerRepo port.ProviderRepository,
	classifier port.Classifier,
	gateways port.GatewayFactory,
	approvals ApprovalService,
	budgets BudgetService,
	notifier port.Notifier,
	txManager port.TransactionManager,
	taxCalc *tax.Calculator,
	riskScorer *risk.Scorer,
	riskCfg config.RiskConfig,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		expenseRepo:  expenseRepo,
		cardRepo:     cardRepo,
		providerRepo: providerRepo,
		classifier:   classifier,
		gateways:     gateways,
		approvals:    approvals,
		budgets:      budgets,
		notifier:     notifier,
		txManager:    txManager,
		taxCalc:      taxCalc,
		riskScorer:   riskScorer,
		riskCfg:      riskCfg,
		logger:       logger,
		now:          time.Now,
	}
}

// ProcessNewExpense runs the full intake pipeline: card check, category
// classification, tax split, policy evaluation, risk scoring, persistence
// and card usage accounting, then asynchronous follow-ups.
func (s *expenseServiceImpl) ProcessNewExpense(ctx context.Context, req ExpenseRequest) (*entity.BusinessExpense, error) {
	card, err := s.cardRepo.GetByID(ctx, req.CardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, fmt.Errorf("%w: card %s", entity.ErrNotFound, req.CardID)
	}
	if !card.CanTransact(req.Amount) {
		return nil, fmt.Errorf("%w: card %s", entity.ErrCardUnavailable, req.CardID)
	}

	category := entity.CategoryOther
	accountCode := ""
	if req.AutoClassify {
		classification, err := s.classifier.Classify(ctx, req.MerchantName, req.MerchantCategoryCode, req.Amount)
		if err != nil {
			// Classification is advisory; fall back to OTHER and keep going.
			s.logger.Error("Classification failed, falling back to other", "error", err, "merchant", req.MerchantName)
		} else {
			category = classification.Category
			accountCode = classification.AccountCode
		}
	}

	split := s.taxCalc.SplitGross(req.Amount, category)

	status := entity.ExpenseApproved
	if card.NeedsApproval(req.Amount) {
		status = entity.ExpensePending
	}

	expense := &entity.BusinessExpense{
		ID:                    uuid.NewString(),
		Amount:                split.Amount,
		AmountExcludingTax:    split.AmountExcludingTax,
		TaxAmount:             split.TaxAmount,
		MerchantName:          req.MerchantName,
		MerchantCategoryCode:  req.MerchantCategoryCode,
		TransactionDate:       req.TransactionDate,
		CardID:                card.ID,
		CompanyID:             card.CompanyID,
		EmployeeID:            card.EmployeeID,
		Status:                status,
		Category:              category,
		AccountCode:           accountCode,
		TaxType:               split.TaxType,
		ExternalTransactionID: req.ExternalTransactionID,
		SyncStatus:            "pending",
		CreatedAt:             s.now(),
		UpdatedAt:             s.now(),
	}

	expense.PolicyViolations = policy.Evaluate(expense, card)

	avgAmount, err := s.expenseRepo.AverageAmountSince(ctx, card.ID, s.now().AddDate(0, 0, -30))
	if err != nil {
		s.logger.Error("Failed to compute rolling average, scoring without it", "error", err, "card_id", card.ID)
		avgAmount = 0
	}
	expense.RiskScore = s.riskScorer.Score(expense.Amount, avgAmount, expense.PolicyViolations, expense.MerchantName)

	// Expense record and card usage debit commit together or not at all.
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.expenseRepo.Create(ctx, expense); err != nil {
			return fmt.Errorf("create expense: %w", err)
		}
		if err := s.cardRepo.ApplyUsage(ctx, card.ID, req.Amount, s.now()); err != nil {
			return fmt.Errorf("apply card usage: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Expense processed",
		"expense_id", expense.ID,
		"card_id", card.ID,
		"amount", expense.Amount,
		"category", expense.Category,
		"status", expense.Status,
		"risk_score", expense.RiskScore,
		"violations", len(expense.PolicyViolations))

	go s.processExpenseAsync(expense)

	return expense, nil
}

// processExpenseAsync runs best-effort follow-ups for a newly recorded
// expense. Failures are logged, never escalated.
func (s *expenseServiceImpl) processExpenseAsync(expense *entity.BusinessExpense) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Panic in expense follow-up", "panic", p, "expense_id", expense.ID)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.budgets.CheckAndAlert(ctx, expense.CompanyID, expense); err != nil {
		s.logger.Error("Budget alert check failed", "error", err, "expense_id", expense.ID)
	}

	if expense.RiskScore > s.riskCfg.ManualReviewThreshold {
		if err := s.approvals.RequestManualReview(ctx, expense); err != nil {
			s.logger.Error("Manual review request failed", "error", err, "expense_id", expense.ID)
		}
	}

	if expense.Status == entity.ExpenseApproved {
		if err := s.approvals.SyncApproved(ctx, expense); err != nil {
			s.logger.Error("Accounting sync failed", "error", err, "expense_id", expense.ID)
		}
	}

	if err := s.notifier.NotifyTransaction(ctx, expense); err != nil {
		s.logger.Error("Transaction notification failed", "error", err, "expense_id", expense.ID)
	}
}

// SyncAllTransactions pulls the last seven days of gateway transactions for
// every card of a company and records the ones not yet seen. Per-card
// failures are reported in the result, not raised.
func (s *expenseServiceImpl) SyncAllTransactions(ctx context.Context, companyID string) ([]CardSyncResult, error) {
	cards, err := s.cardRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	end := s.now()
	start := end.AddDate(0, 0, -7)

	results := make([]CardSyncResult, 0, len(cards))
	for _, card := range cards {
		result := CardSyncResult{CardID: card.ID}

		provider, err := s.providerRepo.GetByID(ctx, card.ProviderID)
		if err != nil || provider == nil {
			result.Error = fmt.Sprintf("provider %s not found", card.ProviderID)
			results = append(results, result)
			continue
		}
		result.ProviderType = string(provider.Type)

		gateway, err := s.gateways.GatewayFor(provider)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		transactions, err := gateway.GetTransactions(ctx, card.ExternalCardID, start, end)
		if err != nil {
			result.Error = err.Error()
			if updErr := s.cardRepo.UpdateSyncStatus(ctx, card.ID, "failed", s.now()); updErr != nil {
				s.logger.Error("Failed to record card sync failure", "error", updErr, "card_id", card.ID)
			}
			results = append(results, result)
			continue
		}

		processed, err := s.processTransactionBatch(ctx, card, transactions)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		result.TransactionCount = processed
		result.Success = true
		if err := s.cardRepo.UpdateSyncStatus(ctx, card.ID, "synced", s.now()); err != nil {
			s.logger.Error("Failed to record card sync", "error", err, "card_id", card.ID)
		}
		results = append(results, result)
	}

	s.logger.Info("Transaction synchronization completed",
		"company_id", companyID,
		"cards", len(cards))

	return results, nil
}

func (s *expenseServiceImpl) processTransactionBatch(ctx context.Context, card *entity.BusinessCard, transactions []port.TransactionData) (int, error) {
	processed := 0
	for _, txn := range transactions {
		if txn.IsReversal {
			continue
		}

		existing, err := s.expenseRepo.GetByExternalID(ctx, txn.ExternalTransactionID)
		if err != nil {
			return processed, fmt.Errorf("lookup external transaction: %w", err)
		}
		if existing != nil {
			continue
		}

		_, err = s.ProcessNewExpense(ctx, ExpenseRequest{
			CardID:                card.ID,
			Amount:                txn.Amount,
			MerchantName:          txn.MerchantName,
			MerchantCategoryCode:  txn.MerchantCategoryCode,
			TransactionDate:       txn.TransactionDate,
			ExternalTransactionID: txn.ExternalTransactionID,
			AutoClassify:          true,
		})
		if err != nil {
			s.logger.Error("Failed to process synced transaction",
				"error", err,
				"external_id", txn.ExternalTransactionID,
				"card_id", card.ID)
			continue
		}
		processed++
	}
	return processed, nil
}
