package classify

import (
	"context"
	"strings"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// KeywordClassifier is a deterministic classifier based on merchant name
// keywords and MCC ranges. It serves as the offline fallback when no model
// is configured or the model call fails.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a new KeywordClassifier
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var keywordRules = []struct {
	keywords []string
	category entity.ExpenseCategory
}{
	{[]string{"aws", "amazon web services", "gcp", "google cloud", "azure", "heroku", "vercel", "cloudflare"}, entity.CategoryCloudService},
	{[]string{"github", "slack", "notion", "zoom", "adobe", "jetbrains", "microsoft 365", "ソフトウェア"}, entity.CategorySoftware},
	{[]string{"お名前.com", "gmo domain", "domain", "ドメイン"}, entity.CategoryDomain},
	{[]string{"jr", "ana", "jal", "新幹線", "タクシー", "airline", "hotel", "ホテル", "suica", "pasmo"}, entity.CategoryTravel},
	{[]string{"居酒屋", "レストラン", "restaurant", "bar", "寿司", "焼肉", "料亭"}, entity.CategoryEntertainment},
	{[]string{"アスクル", "askul", "kaunet", "コクヨ", "文具", "stationery"}, entity.CategoryOfficeSupplies},
	{[]string{"google ads", "meta ads", "広告", "宣伝"}, entity.CategoryAdvertising},
	{[]string{"docomo", "softbank", "au ", "kddi", "通信"}, entity.CategoryCommunication},
	{[]string{"電力", "ガス", "水道"}, entity.CategoryUtilities},
	{[]string{"セミナー", "研修", "udemy", "coursera"}, entity.CategoryEducation},
	{[]string{"保険", "insurance"}, entity.CategoryInsurance},
}

// mccRules covers common ISO 18245 ranges: airlines 3000-3299, car rental
// 3300-3499, lodging 3500-3999 and 7011, eating places 5812-5814.
var mccRules = map[string]entity.ExpenseCategory{
	"5812": entity.CategoryEntertainment,
	"5813": entity.CategoryEntertainment,
	"5814": entity.CategoryEntertainment,
	"4111": entity.CategoryTravel,
	"4112": entity.CategoryTravel,
	"4121": entity.CategoryTravel,
	"4511": entity.CategoryTravel,
	"7011": entity.CategoryTravel,
	"5943": entity.CategoryOfficeSupplies,
	"5111": entity.CategoryOfficeSupplies,
	"7372": entity.CategorySoftware,
	"5734": entity.CategorySoftware,
	"4814": entity.CategoryCommunication,
	"4900": entity.CategoryUtilities,
	"6300": entity.CategoryInsurance,
	"7311": entity.CategoryAdvertising,
	"8299": entity.CategoryEducation,
	"6513": entity.CategoryRent,
	"7699": entity.CategoryMaintenance,
}

// accountCodes maps each category to its Japanese ledger account name.
var accountCodes = map[entity.ExpenseCategory]string{
	entity.CategoryOfficeSupplies: "消耗品費",
	entity.CategoryTravel:         "旅費交通費",
	entity.CategoryEntertainment:  "接待交際費",
	entity.CategoryAdvertising:    "広告宣伝費",
	entity.CategoryEducation:      "研修費",
	entity.CategoryCommunication:  "通信費",
	entity.CategoryUtilities:      "水道光熱費",
	entity.CategoryRent:           "地代家賃",
	entity.CategoryMaintenance:    "修繕費",
	entity.CategoryInsurance:      "保険料",
	entity.CategorySoftware:       "ソフトウェア費",
	entity.CategoryCloudService:   "通信費",
	entity.CategoryDomain:         "通信費",
	entity.CategoryOther:          "雑費",
}

// AccountCodeFor returns the ledger account name for a category.
func AccountCodeFor(category entity.ExpenseCategory) string {
	if code, ok := accountCodes[category]; ok {
		return code
	}
	return accountCodes[entity.CategoryOther]
}

// Classify matches merchant keywords first, then the MCC table, and
// defaults to the other category.
func (c *KeywordClassifier) Classify(_ context.Context, merchantName, merchantCategoryCode string, _ int64) (port.Classification, error) {
	name := strings.ToLower(merchantName)

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return port.Classification{
					Category:    rule.category,
					AccountCode: AccountCodeFor(rule.category),
				}, nil
			}
		}
	}

	if category, ok := mccRules[merchantCategoryCode]; ok {
		return port.Classification{
			Category:    category,
			AccountCode: AccountCodeFor(category),
		}, nil
	}

	return port.Classification{
		Category:    entity.CategoryOther,
		AccountCode: AccountCodeFor(entity.CategoryOther),
	}, nil
}
