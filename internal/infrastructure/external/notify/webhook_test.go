package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/domain/entity"
)

func TestWebhookNotifier_NotifyApproval(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(srv.URL, 5*time.Second, zap.NewNop())
	expense := &entity.BusinessExpense{MerchantName: "居酒屋さくら", Amount: 12000, EmployeeID: "emp-1"}

	require.NoError(t, notifier.NotifyApproval(context.Background(), expense, true))
	assert.Contains(t, payload["text"], "承認されました")
	assert.Contains(t, payload["text"], "居酒屋さくら")

	require.NoError(t, notifier.NotifyApproval(context.Background(), expense, false))
	assert.Contains(t, payload["text"], "却下されました")
}

func TestWebhookNotifier_NotifyBudgetAlert(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(srv.URL, 5*time.Second, zap.NewNop())

	require.NoError(t, notifier.NotifyBudgetAlert(context.Background(), "company-1", entity.BudgetEntertainment, 85.5))
	assert.Contains(t, payload["text"], "予算アラート")
	assert.Contains(t, payload["text"], "85.5%")
}

func TestWebhookNotifier_NoURLConfigured(t *testing.T) {
	notifier := NewWebhookNotifier("", time.Second, zap.NewNop())

	// A missing webhook is a silent no-op, not an error.
	err := notifier.NotifyTransaction(context.Background(), &entity.BusinessExpense{})
	assert.NoError(t, err)
}

func TestWebhookNotifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(srv.URL, time.Second, zap.NewNop())

	err := notifier.NotifyTransaction(context.Background(), &entity.BusinessExpense{})
	assert.Error(t, err)
}
