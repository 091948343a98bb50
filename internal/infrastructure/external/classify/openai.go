package classify

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// OpenAIClassifier implements port.Classifier using OpenAI chat completions.
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	temperature float32
	fallback    *KeywordClassifier
	logger      *zap.Logger
}

// NewOpenAIClassifier creates a model-backed classifier. Parse or API
// failures fall back to keyword matching so the expense flow keeps moving.
func NewOpenAIClassifier(apiKey, model string, temperature float32, logger *zap.Logger) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		fallback:    NewKeywordClassifier(),
		logger:      logger,
	}
}

type classificationResponse struct {
	Category    string  `json:"category"`
	AccountCode string  `json:"account_code"`
	Confidence  float64 `json:"confidence"`
}

// Classify categorizes a card charge by merchant name, MCC and amount.
func (c *OpenAIClassifier) Classify(ctx context.Context, merchantName, merchantCategoryCode string, amount int64) (port.Classification, error) {
	prompt := buildClassificationPrompt(merchantName, merchantCategoryCode, amount)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an accounting assistant for a Japanese company. Classify corporate card charges into expense categories. Always respond with valid JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.logger.Warn("OpenAI classification failed, using keyword fallback",
			zap.String("merchant_name", merchantName),
			zap.Error(err))
		return c.fallback.Classify(ctx, merchantName, merchantCategoryCode, amount)
	}

	if len(resp.Choices) == 0 {
		return c.fallback.Classify(ctx, merchantName, merchantCategoryCode, amount)
	}

	var result classificationResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		c.logger.Warn("Failed to parse classification response, using keyword fallback",
			zap.String("content", resp.Choices[0].Message.Content),
			zap.Error(err))
		return c.fallback.Classify(ctx, merchantName, merchantCategoryCode, amount)
	}

	category, ok := parseCategory(result.Category)
	if !ok {
		c.logger.Warn("Model returned unknown category",
			zap.String("category", result.Category),
			zap.String("merchant_name", merchantName))
		category = entity.CategoryOther
	}

	accountCode := result.AccountCode
	if accountCode == "" {
		accountCode = AccountCodeFor(category)
	}

	c.logger.Debug("Charge classified",
		zap.String("merchant_name", merchantName),
		zap.String("category", string(category)),
		zap.Float64("confidence", result.Confidence))

	return port.Classification{Category: category, AccountCode: accountCode}, nil
}

func buildClassificationPrompt(merchantName, merchantCategoryCode string, amount int64) string {
	return fmt.Sprintf(`Classify this corporate card charge into exactly one expense category.

**Charge:**
- Merchant: %s
- Merchant Category Code (MCC): %s
- Amount: %d JPY

**Allowed categories:**
office_supplies, travel, entertainment, advertising, education, communication, utilities, rent, maintenance, insurance, software, cloud_service, domain, other

Respond with ONLY a JSON object of this exact structure:
{
  "category": "one of the allowed categories",
  "account_code": "Japanese account code for the category, e.g. 接待交際費",
  "confidence": number between 0.0 and 1.0
}

If unsure, use "other".`, merchantName, merchantCategoryCode, amount)
}

var validCategories = map[string]entity.ExpenseCategory{
	string(entity.CategoryOfficeSupplies): entity.CategoryOfficeSupplies,
	string(entity.CategoryTravel):         entity.CategoryTravel,
	string(entity.CategoryEntertainment):  entity.CategoryEntertainment,
	string(entity.CategoryAdvertising):    entity.CategoryAdvertising,
	string(entity.CategoryEducation):      entity.CategoryEducation,
	string(entity.CategoryCommunication):  entity.CategoryCommunication,
	string(entity.CategoryUtilities):      entity.CategoryUtilities,
	string(entity.CategoryRent):           entity.CategoryRent,
	string(entity.CategoryMaintenance):    entity.CategoryMaintenance,
	string(entity.CategoryInsurance):      entity.CategoryInsurance,
	string(entity.CategorySoftware):       entity.CategorySoftware,
	string(entity.CategoryCloudService):   entity.CategoryCloudService,
	string(entity.CategoryDomain):         entity.CategoryDomain,
	string(entity.CategoryOther):          entity.CategoryOther,
}

func parseCategory(s string) (entity.ExpenseCategory, bool) {
	c, ok := validCategories[s]
	return c, ok
}
