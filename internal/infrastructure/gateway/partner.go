package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// PartnerGateway pulls card and transaction data from a co-branded partner's
// batch API. Partner feeds are delayed; freshness is bounded by the
// provider's sync interval.
type PartnerGateway struct {
	providerType entity.ProviderType
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewPartnerGateway creates a gateway for a partner or external feed.
func NewPartnerGateway(providerType entity.ProviderType, baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *PartnerGateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PartnerGateway{
		providerType: providerType,
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// ProviderType identifies this gateway's provider family.
func (g *PartnerGateway) ProviderType() entity.ProviderType {
	return g.providerType
}

type partnerCard struct {
	CardID       string `json:"card_id"`
	MaskedNumber string `json:"masked_number"`
	HolderName   string `json:"holder_name"`
	ExpiryDate   string `json:"expiry_date"`
	CardType     string `json:"card_type"`
	Status       string `json:"status"`
}

type partnerTransaction struct {
	TransactionID string     `json:"transaction_id"`
	Amount        int64      `json:"amount"`
	MerchantName  string     `json:"merchant_name"`
	MCC           string     `json:"mcc"`
	OccurredAt    time.Time  `json:"occurred_at"`
	PostedAt      *time.Time `json:"posted_at"`
	MaskedNumber  string     `json:"masked_number"`
	AuthCode      string     `json:"auth_code"`
	Currency      string     `json:"currency"`
	Reversal      bool       `json:"reversal"`
}

// GetCards lists the company's cards from the partner feed.
func (g *PartnerGateway) GetCards(ctx context.Context, companyID string) ([]port.CardInfo, error) {
	var cards []partnerCard
	path := fmt.Sprintf("/v1/companies/%s/cards", url.PathEscape(companyID))
	if err := g.getJSON(ctx, path, &cards); err != nil {
		return nil, fmt.Errorf("partner cards: %w", err)
	}

	infos := make([]port.CardInfo, 0, len(cards))
	for _, c := range cards {
		infos = append(infos, port.CardInfo{
			ExternalCardID:   c.CardID,
			CardNumberMasked: c.MaskedNumber,
			CardHolderName:   c.HolderName,
			ExpiryDate:       c.ExpiryDate,
			CardType:         c.CardType,
			Status:           c.Status,
		})
	}
	return infos, nil
}

// GetCardDetails returns one card's metadata from the partner feed.
func (g *PartnerGateway) GetCardDetails(ctx context.Context, externalCardID string) (port.CardInfo, error) {
	var c partnerCard
	path := fmt.Sprintf("/v1/cards/%s", url.PathEscape(externalCardID))
	if err := g.getJSON(ctx, path, &c); err != nil {
		return port.CardInfo{}, fmt.Errorf("partner card details: %w", err)
	}
	return port.CardInfo{
		ExternalCardID:   c.CardID,
		CardNumberMasked: c.MaskedNumber,
		CardHolderName:   c.HolderName,
		ExpiryDate:       c.ExpiryDate,
		CardType:         c.CardType,
		Status:           c.Status,
	}, nil
}

// GetTransactions pulls the card's transactions in [start, end).
func (g *PartnerGateway) GetTransactions(ctx context.Context, externalCardID string, start, end time.Time) ([]port.TransactionData, error) {
	var txs []partnerTransaction
	path := fmt.Sprintf("/v1/cards/%s/transactions?from=%s&to=%s",
		url.PathEscape(externalCardID),
		url.QueryEscape(start.Format(time.RFC3339)),
		url.QueryEscape(end.Format(time.RFC3339)))
	if err := g.getJSON(ctx, path, &txs); err != nil {
		return nil, fmt.Errorf("partner transactions: %w", err)
	}

	data := make([]port.TransactionData, 0, len(txs))
	for _, t := range txs {
		currency := t.Currency
		if currency == "" {
			currency = "JPY"
		}
		data = append(data, port.TransactionData{
			ExternalTransactionID: t.TransactionID,
			Amount:                t.Amount,
			MerchantName:          t.MerchantName,
			MerchantCategoryCode:  t.MCC,
			TransactionDate:       t.OccurredAt,
			PostedDate:            t.PostedAt,
			CardNumberMasked:      t.MaskedNumber,
			AuthorizationCode:     t.AuthCode,
			CurrencyCode:          currency,
			IsReversal:            t.Reversal,
		})
	}

	g.logger.Debug("Partner transactions fetched",
		zap.String("external_card_id", externalCardID),
		zap.Int("count", len(data)))

	return data, nil
}

// HealthCheck probes the partner API.
func (g *PartnerGateway) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("partner health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("partner API unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (g *PartnerGateway) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
