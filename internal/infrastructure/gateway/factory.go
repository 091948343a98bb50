package gateway

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// Factory resolves the gateway for a provider. Native cards share one
// ledger-backed gateway; partner and external feeds get one HTTP gateway
// per provider, cached by provider ID.
type Factory struct {
	native  *NativeGateway
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[string]*PartnerGateway
}

// NewFactory creates a new gateway Factory
func NewFactory(native *NativeGateway, partnerAPIKey string, timeout time.Duration, logger *zap.Logger) *Factory {
	return &Factory{
		native:  native,
		apiKey:  partnerAPIKey,
		timeout: timeout,
		logger:  logger,
		cache:   make(map[string]*PartnerGateway),
	}
}

// GatewayFor returns the gateway serving the given provider.
func (f *Factory) GatewayFor(provider *entity.CardProvider) (port.CardGateway, error) {
	if provider == nil {
		return nil, fmt.Errorf("gateway: %w", entity.ErrNotFound)
	}

	switch provider.Type {
	case entity.ProviderNative:
		return f.native, nil
	case entity.ProviderPartner, entity.ProviderExternal:
		if provider.APIEndpoint == "" {
			return nil, fmt.Errorf("provider %s has no API endpoint", provider.ID)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if g, ok := f.cache[provider.ID]; ok {
			return g, nil
		}
		g := NewPartnerGateway(provider.Type, provider.APIEndpoint, f.apiKey, f.timeout, f.logger)
		f.cache[provider.ID] = g
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported provider type %q", provider.Type)
	}
}
