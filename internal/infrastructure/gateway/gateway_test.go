package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

type stubCardRepo struct {
	port.CardRepository
	cards []*entity.BusinessCard
}

func (s *stubCardRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.BusinessCard, error) {
	return s.cards, nil
}

func (s *stubCardRepo) GetByID(ctx context.Context, id string) (*entity.BusinessCard, error) {
	for _, c := range s.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

type stubTxRepo struct {
	port.TransactionRepository
	txs []*entity.CardTransaction
}

func (s *stubTxRepo) ListByCardSince(ctx context.Context, cardID string, start, end time.Time) ([]*entity.CardTransaction, error) {
	return s.txs, nil
}

func TestNativeGateway_GetTransactions(t *testing.T) {
	now := time.Now()
	txRepo := &stubTxRepo{
		txs: []*entity.CardTransaction{
			{ID: "txn-1", Amount: 5000, MerchantName: "アスクル", Status: entity.TransactionCompleted,
				CardLastFour: "1234", TransactionDate: now, UpdatedAt: now},
			{ID: "txn-2", Amount: 3000, Status: entity.TransactionPending, TransactionDate: now},
			{ID: "txn-3", Amount: -5000, MerchantName: "アスクル", Status: entity.TransactionCompleted,
				CardLastFour: "1234", TransactionDate: now, UpdatedAt: now},
		},
	}
	g := NewNativeGateway(&stubCardRepo{}, txRepo)

	data, err := g.GetTransactions(context.Background(), "card-1", now.AddDate(0, 0, -7), now)
	require.NoError(t, err)

	// Pending ledger entries are not delivered.
	require.Len(t, data, 2)
	assert.Equal(t, "txn-1", data[0].ExternalTransactionID)
	assert.Equal(t, "****-****-****-1234", data[0].CardNumberMasked)
	assert.Equal(t, "JPY", data[0].CurrencyCode)
	assert.False(t, data[0].IsReversal)
	// Negative amounts are flagged as reversals.
	assert.True(t, data[1].IsReversal)
}

func TestNativeGateway_GetCardDetails_NotFound(t *testing.T) {
	g := NewNativeGateway(&stubCardRepo{}, &stubTxRepo{})

	_, err := g.GetCardDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPartnerGateway_GetTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/cards/ext-1/transactions", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("X-API-Key"))
		assert.NotEmpty(t, r.URL.Query().Get("from"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"transaction_id":"p-1","amount":8000,"merchant_name":"AWS","mcc":"7372","occurred_at":"2026-08-10T09:00:00Z"},
			{"transaction_id":"p-2","amount":-8000,"merchant_name":"AWS","occurred_at":"2026-08-11T09:00:00Z","reversal":true}
		]`))
	}))
	defer srv.Close()

	g := NewPartnerGateway(entity.ProviderPartner, srv.URL, "key-1", 5*time.Second, zap.NewNop())

	data, err := g.GetTransactions(context.Background(), "ext-1", time.Now().AddDate(0, 0, -7), time.Now())
	require.NoError(t, err)

	require.Len(t, data, 2)
	assert.Equal(t, "p-1", data[0].ExternalTransactionID)
	assert.Equal(t, "7372", data[0].MerchantCategoryCode)
	assert.Equal(t, "JPY", data[0].CurrencyCode)
	assert.True(t, data[1].IsReversal)
}

func TestPartnerGateway_HealthCheck(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	g := NewPartnerGateway(entity.ProviderExternal, srv.URL, "key-1", 5*time.Second, zap.NewNop())

	assert.NoError(t, g.HealthCheck(context.Background()))
	healthy = false
	assert.Error(t, g.HealthCheck(context.Background()))
}

func TestFactory_GatewayFor(t *testing.T) {
	native := NewNativeGateway(&stubCardRepo{}, &stubTxRepo{})
	factory := NewFactory(native, "key-1", 5*time.Second, zap.NewNop())

	t.Run("native provider shares the local gateway", func(t *testing.T) {
		g, err := factory.GatewayFor(&entity.CardProvider{ID: "prov-1", Type: entity.ProviderNative})
		require.NoError(t, err)
		assert.Same(t, native, g)
	})

	t.Run("partner gateways are cached per provider", func(t *testing.T) {
		provider := &entity.CardProvider{ID: "prov-2", Type: entity.ProviderPartner, APIEndpoint: "https://partner.example.com"}

		g1, err := factory.GatewayFor(provider)
		require.NoError(t, err)
		g2, err := factory.GatewayFor(provider)
		require.NoError(t, err)
		assert.Same(t, g1, g2)
	})

	t.Run("partner provider without endpoint", func(t *testing.T) {
		_, err := factory.GatewayFor(&entity.CardProvider{ID: "prov-3", Type: entity.ProviderExternal})
		assert.Error(t, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := factory.GatewayFor(nil)
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})

	t.Run("unknown provider type", func(t *testing.T) {
		_, err := factory.GatewayFor(&entity.CardProvider{ID: "prov-4", Type: entity.ProviderType("legacy")})
		assert.Error(t, err)
	})
}
