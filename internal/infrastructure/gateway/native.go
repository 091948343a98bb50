package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// NativeGateway serves in-house issued cards. Charges on native cards land
// directly in the local transaction ledger, so the gateway reads from it
// instead of calling out. External card IDs equal internal card IDs for
// native cards.
type NativeGateway struct {
	cardRepo port.CardRepository
	txRepo   port.TransactionRepository
}

// NewNativeGateway creates a new NativeGateway
func NewNativeGateway(cardRepo port.CardRepository, txRepo port.TransactionRepository) *NativeGateway {
	return &NativeGateway{
		cardRepo: cardRepo,
		txRepo:   txRepo,
	}
}

// ProviderType identifies this gateway's provider family.
func (g *NativeGateway) ProviderType() entity.ProviderType {
	return entity.ProviderNative
}

// GetCards lists the company's cards in gateway form.
func (g *NativeGateway) GetCards(ctx context.Context, companyID string) ([]port.CardInfo, error) {
	cards, err := g.cardRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list native cards: %w", err)
	}

	infos := make([]port.CardInfo, 0, len(cards))
	for _, card := range cards {
		infos = append(infos, toCardInfo(card))
	}
	return infos, nil
}

// GetCardDetails returns one card's gateway-side metadata.
func (g *NativeGateway) GetCardDetails(ctx context.Context, externalCardID string) (port.CardInfo, error) {
	card, err := g.cardRepo.GetByID(ctx, externalCardID)
	if err != nil {
		return port.CardInfo{}, fmt.Errorf("get native card: %w", err)
	}
	if card == nil {
		return port.CardInfo{}, fmt.Errorf("native card %s: %w", externalCardID, entity.ErrNotFound)
	}
	return toCardInfo(card), nil
}

// GetTransactions returns settled ledger entries for the card in [start, end).
func (g *NativeGateway) GetTransactions(ctx context.Context, externalCardID string, start, end time.Time) ([]port.TransactionData, error) {
	txs, err := g.txRepo.ListByCardSince(ctx, externalCardID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list native transactions: %w", err)
	}

	data := make([]port.TransactionData, 0, len(txs))
	for _, tx := range txs {
		if !tx.IsCompleted() {
			continue
		}
		posted := tx.UpdatedAt
		data = append(data, port.TransactionData{
			ExternalTransactionID: tx.ID,
			Amount:                tx.Amount,
			MerchantName:          tx.MerchantName,
			TransactionDate:       tx.TransactionDate,
			PostedDate:            &posted,
			CardNumberMasked:      "****-****-****-" + tx.CardLastFour,
			CurrencyCode:          "JPY",
			IsReversal:            tx.Amount < 0,
		})
	}
	return data, nil
}

// HealthCheck always succeeds; the ledger lives in the same process.
func (g *NativeGateway) HealthCheck(_ context.Context) error {
	return nil
}

func toCardInfo(card *entity.BusinessCard) port.CardInfo {
	return port.CardInfo{
		ExternalCardID:   card.ID,
		CardNumberMasked: card.CardNumberMasked,
		CardHolderName:   card.CardHolderName,
		ExpiryDate:       card.ExpiryDate,
		CardType:         string(card.Type),
		Status:           string(card.Status),
	}
}
