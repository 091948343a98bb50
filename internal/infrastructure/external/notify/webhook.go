package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/domain/entity"
)

// WebhookNotifier delivers chat notifications to an incoming-webhook URL.
// It implements port.Notifier. Delivery is best effort; callers already
// treat errors as non-fatal.
type WebhookNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookNotifier creates a new WebhookNotifier
func NewWebhookNotifier(webhookURL string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// NotifyApproval reports an approval decision to the employee's channel.
func (n *WebhookNotifier) NotifyApproval(ctx context.Context, expense *entity.BusinessExpense, approved bool) error {
	verdict := "承認されました"
	if !approved {
		verdict = "却下されました"
	}
	text := fmt.Sprintf("経費申請が%s\n店舗: %s\n金額: ¥%d\n申請者: %s",
		verdict, expense.MerchantName, expense.Amount, expense.EmployeeID)
	return n.post(ctx, text)
}

// NotifyTransaction reports a newly recorded card charge.
func (n *WebhookNotifier) NotifyTransaction(ctx context.Context, expense *entity.BusinessExpense) error {
	text := fmt.Sprintf("カード利用を記録しました\n店舗: %s\n金額: ¥%d\n区分: %s\nステータス: %s",
		expense.MerchantName, expense.Amount, expense.Category, expense.Status)
	return n.post(ctx, text)
}

// NotifyBudgetAlert warns that a category budget is nearing its limit.
func (n *WebhookNotifier) NotifyBudgetAlert(ctx context.Context, companyID string, category entity.BudgetCategory, percentage float64) error {
	text := fmt.Sprintf("予算アラート: %s の使用率が %.1f%% に達しています (company=%s)",
		category, percentage, companyID)
	return n.post(ctx, text)
}

func (n *WebhookNotifier) post(ctx context.Context, text string) error {
	if n.webhookURL == "" {
		n.logger.Debug("Notification skipped, no webhook configured", zap.String("text", text))
		return nil
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
