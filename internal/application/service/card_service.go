package service

import (
	"context"
	"fmt"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// CardService manages business card lifecycle and balances
type CardService interface {
	FindByID(ctx context.Context, cardID string) (*entity.BusinessCard, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]*entity.BusinessCard, error)
	FindByCompany(ctx context.Context, companyID string) ([]*entity.BusinessCard, error)
	Suspend(ctx context.Context, cardID string) (*entity.BusinessCard, error)
	Activate(ctx context.Context, cardID string) (*entity.BusinessCard, error)
	Cancel(ctx context.Context, cardID string) (*entity.BusinessCard, error)
	UpdateBalance(ctx context.Context, cardID string, newBalance int64) (*entity.BusinessCard, error)
}

type cardServiceImpl struct {
	cardRepo port.CardRepository
	logger   Logger
}

// NewCardService creates a new CardService
func NewCardService(cardRepo port.CardRepository, logger Logger) CardService {
	return &cardServiceImpl{
		cardRepo: cardRepo,
		logger:   logger,
	}
}

func (s *cardServiceImpl) FindByID(ctx context.Context, cardID string) (*entity.BusinessCard, error) {
	card, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if card == nil {
		return nil, fmt.Errorf("%w: card %s", entity.ErrNotFound, cardID)
	}
	return card, nil
}

func (s *cardServiceImpl) FindByEmployee(ctx context.Context, employeeID string) ([]*entity.BusinessCard, error) {
	return s.cardRepo.ListByEmployee(ctx, employeeID)
}

func (s *cardServiceImpl) FindByCompany(ctx context.Context, companyID string) ([]*entity.BusinessCard, error) {
	return s.cardRepo.ListByCompany(ctx, companyID)
}

// Suspend moves a card to suspended.
func (s *cardServiceImpl) Suspend(ctx context.Context, cardID string) (*entity.BusinessCard, error) {
	return s.transition(ctx, cardID, (*entity.BusinessCard).Suspend)
}

// Activate re-activates a suspended card.
func (s *cardServiceImpl) Activate(ctx context.Context, cardID string) (*entity.BusinessCard, error) {
	return s.transition(ctx, cardID, (*entity.BusinessCard).Activate)
}

// Cancel permanently cancels a card.
func (s *cardServiceImpl) Cancel(ctx context.Context, cardID string) (*entity.BusinessCard, error) {
	return s.transition(ctx, cardID, (*entity.BusinessCard).Cancel)
}

func (s *cardServiceImpl) transition(ctx context.Context, cardID string, apply func(*entity.BusinessCard) error) (*entity.BusinessCard, error) {
	card, err := s.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if err := apply(card); err != nil {
		return nil, err
	}

	if err := s.cardRepo.UpdateStatus(ctx, card.ID, card.Status); err != nil {
		return nil, fmt.Errorf("update card status: %w", err)
	}

	s.logger.Info("Card status changed", "card_id", card.ID, "status", card.Status)
	return card, nil
}

// UpdateBalance sets the card's available balance.
func (s *cardServiceImpl) UpdateBalance(ctx context.Context, cardID string, newBalance int64) (*entity.BusinessCard, error) {
	card, err := s.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if err := s.cardRepo.UpdateBalance(ctx, cardID, newBalance); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	card.AvailableBalance = newBalance
	return card, nil
}
