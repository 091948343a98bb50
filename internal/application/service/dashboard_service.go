package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// DashboardStats is the landing-page summary for the dashboard.
type DashboardStats struct {
	MonthlySpending       int64                     `json:"monthly_spending"`
	SpendingChangeRate    float64                   `json:"spending_change_rate"`
	ActiveCards           int                       `json:"active_cards"`
	PendingTransactions   int                       `json:"pending_transactions"`
	CompletedTransactions int                       `json:"completed_transactions"`
	RecentTransactions    []*entity.CardTransaction `json:"recent_transactions"`
}

// DashboardService summarizes current spend for the dashboard landing page
type DashboardService interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
}

type dashboardServiceImpl struct {
	cardRepo        port.CardRepository
	transactionRepo port.TransactionRepository
	logger          Logger
	now             func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	cardRepo port.CardRepository,
	transactionRepo port.TransactionRepository,
	logger Logger,
) DashboardService {
	return &dashboardServiceImpl{
		cardRepo:        cardRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// GetStats computes this month's spend, its change against last month, and
// headline transaction counts.
func (s *dashboardServiceImpl) GetStats(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	spending, err := s.transactionRepo.SumCompleted(ctx, monthStart, nextMonth)
	if err != nil {
		return nil, fmt.Errorf("sum current month: %w", err)
	}

	lastMonthSpending, err := s.transactionRepo.SumCompleted(ctx, lastMonthStart, monthStart)
	if err != nil {
		return nil, fmt.Errorf("sum previous month: %w", err)
	}

	changeRate := 0.0
	if lastMonthSpending > 0 {
		changeRate = float64(spending-lastMonthSpending) / float64(lastMonthSpending) * 100
		changeRate = math.Round(changeRate*10) / 10
	}

	activeCards, err := s.cardRepo.CountByStatus(ctx, entity.CardActive)
	if err != nil {
		return nil, fmt.Errorf("count active cards: %w", err)
	}

	pending, err := s.transactionRepo.CountByStatus(ctx, entity.TransactionPending)
	if err != nil {
		return nil, fmt.Errorf("count pending transactions: %w", err)
	}

	completed, err := s.transactionRepo.CountByStatus(ctx, entity.TransactionCompleted)
	if err != nil {
		return nil, fmt.Errorf("count completed transactions: %w", err)
	}

	recent, err := s.transactionRepo.Recent(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}

	return &DashboardStats{
		MonthlySpending:       spending,
		SpendingChangeRate:    changeRate,
		ActiveCards:           activeCards,
		PendingTransactions:   pending,
		CompletedTransactions: completed,
		RecentTransactions:    recent,
	}, nil
}
