package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/application/service"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// ListTransactionsRequest represents query parameters for listing transactions
type ListTransactionsRequest struct {
	UserID string `form:"user_id"`
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// ListTransactions handles GET /api/transactions
func (h *Handlers) ListTransactions(c *gin.Context) {
	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	filter := port.TransactionFilter{
		UserID: req.UserID,
		Status: entity.TransactionStatus(req.Status),
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			badRequest(c, "invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.FromDate = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			badRequest(c, "invalid to date, expected YYYY-MM-DD")
			return
		}
		filter.ToDate = &to
	}

	page, err := h.transactionService.FindWithFilter(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: page})
}

// GetTransaction handles GET /api/transactions/:id
func (h *Handlers) GetTransaction(c *gin.Context) {
	tx, err := h.transactionService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: tx})
}

// CreateTransactionBody is the body of POST /api/transactions
type CreateTransactionBody struct {
	CardID          string `json:"card_id" binding:"required"`
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	MerchantName    string `json:"merchant_name" binding:"required"`
	TransactionDate string `json:"transaction_date"`
}

// CreateTransaction handles POST /api/transactions
func (h *Handlers) CreateTransaction(c *gin.Context) {
	var body CreateTransactionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
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

	tx, err := h.transactionService.Create(c.Request.Context(), service.CreateTransactionRequest{
		CardID:          body.CardID,
		Amount:          body.Amount,
		MerchantName:    body.MerchantName,
		TransactionDate: transactionDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: tx})
}

// UpdateTransactionBody is the body of PUT /api/transactions/:id
type UpdateTransactionBody struct {
	Category string `json:"category"`
	Memo     string `json:"memo"`
}

// UpdateTransaction handles PUT /api/transactions/:id
func (h *Handlers) UpdateTransaction(c *gin.Context) {
	var body UpdateTransactionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	tx, err := h.transactionService.UpdateDetails(c.Request.Context(), c.Param("id"), body.Category, body.Memo)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: tx})
}

// CompleteTransaction handles POST /api/transactions/:id/complete
func (h *Handlers) CompleteTransaction(c *gin.Context) {
	tx, err := h.transactionService.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: tx})
}

// FailTransaction handles POST /api/transactions/:id/fail
func (h *Handlers) FailTransaction(c *gin.Context) {
	tx, err := h.transactionService.Fail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: tx})
}

// CancelTransaction handles POST /api/transactions/:id/cancel
func (h *Handlers) CancelTransaction(c *gin.Context) {
	tx, err := h.transactionService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: tx})
}
