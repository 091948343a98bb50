package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
)

// Client posts journal entries to the external accounting system over its
// JSON API. It implements port.AccountingClient.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

// Config holds connection settings for the accounting API.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// NewClient creates a new accounting API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type journalEntryRequest struct {
	CompanyID   string `json:"company_id"`
	IssueDate   string `json:"issue_date"`
	AccountCode string `json:"account_code"`
	TaxCode     string `json:"tax_code"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ProjectID   string `json:"project_id,omitempty"`
}

type journalEntryResponse struct {
	ID string `json:"id"`
}

// PostJournalEntry creates a journal entry and returns the accounting-side ID.
func (c *Client) PostJournalEntry(ctx context.Context, entry port.JournalEntry) (string, error) {
	body, err := json.Marshal(journalEntryRequest{
		CompanyID:   entry.CompanyID,
		IssueDate:   entry.IssueDate.Format("2006-01-02"),
		AccountCode: entry.AccountCode,
		TaxCode:     entry.TaxCode,
		Amount:      entry.Amount,
		Description: entry.Description,
		ProjectID:   entry.ProjectID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal journal entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/journal_entries", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post journal entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Accounting API rejected journal entry",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", payload))
		return "", fmt.Errorf("accounting API returned status %d", resp.StatusCode)
	}

	var result journalEntryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("accounting API returned empty entry id")
	}

	c.logger.Info("Journal entry posted",
		zap.String("accounting_id", result.ID),
		zap.String("account_code", entry.AccountCode),
		zap.Int64("amount", entry.Amount))

	return result.ID, nil
}
