package port

import (
	"context"
	"time"

	"github.com/junsato/corpcard/internal/domain/entity"
)

// Classification is the result of categorizing a merchant charge.
type Classification struct {
	Category    entity.ExpenseCategory
	AccountCode string
}

// Classifier assigns an accounting category to a card charge. Implementations
// may call an external model; the expense flow must not depend on which.
type Classifier interface {
	Classify(ctx context.Context, merchantName, merchantCategoryCode string, amount int64) (Classification, error)
}

// JournalEntry is the accounting-side representation of an approved expense.
type JournalEntry struct {
	CompanyID   string
	IssueDate   time.Time
	AccountCode string
	TaxCode     string
	Amount      int64
	Description string
	ProjectID   string
}

// AccountingClient posts approved expenses to the external accounting system.
type AccountingClient interface {
	PostJournalEntry(ctx context.Context, entry JournalEntry) (accountingID string, err error)
}

// Notifier delivers best-effort notifications. Failures are logged by the
// caller and never fail the primary operation.
type Notifier interface {
	NotifyApproval(ctx context.Context, expense *entity.BusinessExpense, approved bool) error
	NotifyTransaction(ctx context.Context, expense *entity.BusinessExpense) error
	NotifyBudgetAlert(ctx context.Context, companyID string, category entity.BudgetCategory, percentage float64) error
}

// TransactionData is the normalized shape a card gateway delivers.
type TransactionData struct {
	ExternalTransactionID string
	Amount                int64
	MerchantName          string
	MerchantCategoryCode  string
	TransactionDate       time.Time
	PostedDate            *time.Time
	CardNumberMasked      string
	AuthorizationCode     string
	CurrencyCode          string
	IsReversal            bool
}

// CardInfo is gateway-side card metadata.
type CardInfo struct {
	ExternalCardID   string
	CardNumberMasked string
	CardHolderName   string
	ExpiryDate       string
	CardType         string
	Status           string
}

// CardGateway is the per-network integration surface. Implementations exist
// per provider type; the expense flow only consumes TransactionData.
type CardGateway interface {
	ProviderType() entity.ProviderType
	GetCards(ctx context.Context, companyID string) ([]CardInfo, error)
	GetCardDetails(ctx context.Context, externalCardID string) (CardInfo, error)
	GetTransactions(ctx context.Context, externalCardID string, start, end time.Time) ([]TransactionData, error)
	HealthCheck(ctx context.Context) error
}

// GatewayFactory resolves the gateway for a provider.
type GatewayFactory interface {
	GatewayFor(provider *entity.CardProvider) (CardGateway, error)
}
