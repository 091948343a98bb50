package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junsato/corpcard/internal/application/service"
)

// CreateExpenseBody is the body of POST /api/expenses
type CreateExpenseBody struct {
	CardID                string `json:"card_id" binding:"required"`
	Amount                int64  `json:"amount" binding:"required,gt=0"`
	MerchantName          string `json:"merchant_name" binding:"required"`
	MerchantCategoryCode  string `json:"merchant_category_code"`
	TransactionDate       string `json:"transaction_date"`
	ExternalTransactionID string `json:"external_transaction_id"`
	AutoClassify          *bool  `json:"auto_classify"`
}

// CreateExpense handles POST /api/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	var body CreateExpenseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "card_id, amount and merchant_name are required")
		return
	}

	transactionDate := time.Now()
	if body.TransactionDate != "" {
		parsed, err := time.Parse(time.RFC3339, body.TransactionDate)
		if err != nil {
			badRequest(c, "invalid transaction_date, expected RFC3339")
			return
		}
		transactionDate = parsed
	}

	autoClassify := true
	if body.AutoClassify != nil {
		autoClassify = *body.AutoClassify
	}

	expense, err := h.expenseService.ProcessNewExpense(c.Request.Context(), service.ExpenseRequest{
		CardID:                body.CardID,
		Amount:                body.Amount,
		MerchantName:          body.MerchantName,
		MerchantCategoryCode:  body.MerchantCategoryCode,
		TransactionDate:       transactionDate,
		ExternalTransactionID: body.ExternalTransactionID,
		AutoClassify:          autoClassify,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: expense})
}

// SyncTransactionsBody is the body of POST /api/expenses/sync
type SyncTransactionsBody struct {
	CompanyID string `json:"company_id" binding:"required"`
}

// SyncTransactions handles POST /api/expenses/sync
func (h *Handlers) SyncTransactions(c *gin.Context) {
	var body SyncTransactionsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "company_id is required")
		return
	}

	results, err := h.expenseService.SyncAllTransactions(c.Request.Context(), body.CompanyID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: results})
}
