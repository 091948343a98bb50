package entity

import (
	"math"
	"time"
)

// ProviderType distinguishes how a card network is integrated
type ProviderType string

const (
	ProviderNative   ProviderType = "native"   // in-house issued cards
	ProviderPartner  ProviderType = "partner"  // co-branded partner cards
	ProviderExternal ProviderType = "external" // external card feeds
)

// ProviderStatus is the operational status of a provider integration
type ProviderStatus string

const (
	ProviderActive     ProviderStatus = "active"
	ProviderSuspended  ProviderStatus = "suspended"
	ProviderDeprecated ProviderStatus = "deprecated"
)

// CardProvider describes a card network integration: sync cadence, data
// quality and revenue share. Purely descriptive besides derived getters.
type CardProvider struct {
	ID          string
	Name        string
	DisplayName string
	Type        ProviderType
	Status      ProviderStatus

	RealTimeSync        bool
	DataAccuracy        float64 // 0.70 - 1.00
	SyncIntervalMinutes int     // 0 means real-time

	APIEndpoint        string
	WebhookURL         string
	RequiresManualSync bool

	RevenueShareRate        float64
	CustomerAcquisitionCost int64
	ProcessingFee           int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRealTime reports whether transactions arrive without batch delay.
func (p *CardProvider) IsRealTime() bool {
	return p.RealTimeSync && p.Type == ProviderNative
}

// ExpectedSyncDelay returns the expected sync delay in minutes.
func (p *CardProvider) ExpectedSyncDelay() int {
	if p.RealTimeSync {
		return 0
	}
	if p.SyncIntervalMinutes > 0 {
		return p.SyncIntervalMinutes
	}
	return 1440 // daily batch by default
}

// Revenue returns the revenue share for a transaction amount, rounded to yen.
func (p *CardProvider) Revenue(transactionAmount int64) int64 {
	return int64(math.Round(float64(transactionAmount) * p.RevenueShareRate))
}

// IsHighPriority reports whether this provider's feed should be processed first.
func (p *CardProvider) IsHighPriority() bool {
	return p.Type == ProviderNative || p.DataAccuracy >= 0.9
}
