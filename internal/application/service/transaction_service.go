package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// CreateTransactionRequest describes a new card transaction.
type CreateTransactionRequest struct {
	CardID          string
	Amount          int64
	MerchantName    string
	TransactionDate time.Time
}

// TransactionPage is one page of transactions plus the total match count.
type TransactionPage struct {
	Transactions []*entity.CardTransaction `json:"transactions"`
	TotalCount   int                       `json:"total_count"`
}

// TransactionService manages the card transaction lifecycle
type TransactionService interface {
	FindByID(ctx context.Context, transactionID string) (*entity.CardTransaction, error)
	FindWithFilter(ctx context.Context, filter port.TransactionFilter) (*TransactionPage, error)
	Create(ctx context.Context, req CreateTransactionRequest) (*entity.CardTransaction, error)
	UpdateDetails(ctx context.Context, transactionID, category, memo string) (*entity.CardTransaction, error)
	Complete(ctx context.Context, transactionID string) (*entity.CardTransaction, error)
	Fail(ctx context.Context, transactionID string) (*entity.CardTransaction, error)
	Cancel(ctx context.Context, transactionID string) (*entity.CardTransaction, error)
}

type transactionServiceImpl struct {
	transactionRepo port.TransactionRepository
	cardRepo        port.CardRepository
	txManager       port.TransactionManager
	logger          Logger
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo port.TransactionRepository,
	cardRepo port.CardRepository,
	txManager port.TransactionManager,
	logger Logger,
) TransactionService {
	return &transactionServiceImpl{
		transactionRepo: transactionRepo,
		cardRepo:        cardRepo,
		txManager:       txManager,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *transactionServiceImpl) FindByID(ctx context.Context, transactionID string) (*entity.CardTransaction, error) {
	txn, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if txn == nil {
		return nil, fmt.Errorf("%w: transaction %s", entity.ErrNotFound, transactionID)
	}
	return txn, nil
}

func (s *transactionServiceImpl) FindWithFilter(ctx context.Context, filter port.TransactionFilter) (*TransactionPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	transactions, total, err := s.transactionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return &TransactionPage{Transactions: transactions, TotalCount: total}, nil
}

// Create records a pending transaction and debits the card balance.
func (s *transactionServiceImpl) Create(ctx context.Context, req CreateTransactionRequest) (*entity.CardTransaction, error) {
	card, err := s.cardRepo.GetByID(ctx, req.CardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, fmt.Errorf("%w: card %s", entity.ErrNotFound, req.CardID)
	}
	if card.Status != entity.CardActive {
		return nil, fmt.Errorf("%w: card %s is %s", entity.ErrCardUnavailable, card.ID, card.Status)
	}
	if card.AvailableBalance < req.Amount {
		return nil, fmt.Errorf("%w: card %s", entity.ErrInsufficientBalance, card.ID)
	}

	lastFour := card.CardNumberMasked
	if len(lastFour) > 4 {
		lastFour = lastFour[len(lastFour)-4:]
	}

	txn := &entity.CardTransaction{
		ID:              uuid.NewString(),
		Amount:          req.Amount,
		MerchantName:    req.MerchantName,
		TransactionDate: req.TransactionDate,
		CardLastFour:    lastFour,
		Status:          entity.TransactionPending,
		UserID:          card.EmployeeID,
		CardID:          card.ID,
		CreatedAt:       s.now(),
		UpdatedAt:       s.now(),
	}

	// Transaction record and balance debit commit together or not at all.
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.transactionRepo.Create(ctx, txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		if err := s.cardRepo.ApplyUsage(ctx, card.ID, req.Amount, s.now()); err != nil {
			return fmt.Errorf("apply card usage: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction created",
		"transaction_id", txn.ID,
		"card_id", card.ID,
		"amount", txn.Amount)

	return txn, nil
}

// UpdateDetails updates the mutable category and memo fields.
func (s *transactionServiceImpl) UpdateDetails(ctx context.Context, transactionID, category, memo string) (*entity.CardTransaction, error) {
	txn, err := s.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.transactionRepo.UpdateDetails(ctx, transactionID, category, memo); err != nil {
		return nil, fmt.Errorf("update transaction details: %w", err)
	}

	txn.Category = category
	txn.Memo = memo
	return txn, nil
}

// Complete settles a pending transaction.
func (s *transactionServiceImpl) Complete(ctx context.Context, transactionID string) (*entity.CardTransaction, error) {
	return s.transition(ctx, transactionID, entity.TransactionCompleted,
		[]entity.TransactionStatus{entity.TransactionPending},
		(*entity.CardTransaction).Complete)
}

// Fail marks a pending transaction as failed.
func (s *transactionServiceImpl) Fail(ctx context.Context, transactionID string) (*entity.CardTransaction, error) {
	return s.transition(ctx, transactionID, entity.TransactionFailed,
		[]entity.TransactionStatus{entity.TransactionPending},
		(*entity.CardTransaction).Fail)
}

// Cancel cancels a pending or failed transaction.
func (s *transactionServiceImpl) Cancel(ctx context.Context, transactionID string) (*entity.CardTransaction, error) {
	return s.transition(ctx, transactionID, entity.TransactionCancelled,
		[]entity.TransactionStatus{entity.TransactionPending, entity.TransactionFailed},
		(*entity.CardTransaction).Cancel)
}

// transition validates the entity guard, then applies a conditional update so
// racing transitions cannot both win.
func (s *transactionServiceImpl) transition(
	ctx context.Context,
	transactionID string,
	target entity.TransactionStatus,
	allowedFrom []entity.TransactionStatus,
	apply func(*entity.CardTransaction) error,
) (*entity.CardTransaction, error) {
	txn, err := s.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if err := apply(txn); err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.UpdateStatus(ctx, transactionID, target, allowedFrom)
	if err != nil {
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: transaction %s changed concurrently", entity.ErrInvalidStateTransition, transactionID)
	}

	s.logger.Info("Transaction status changed",
		"transaction_id", transactionID,
		"status", target)

	return txn, nil
}
