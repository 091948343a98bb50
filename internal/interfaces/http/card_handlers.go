package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junsato/corpcard/internal/domain/entity"
)

// ListCards handles GET /api/cards?company_id=...&employee_id=...
func (h *Handlers) ListCards(c *gin.Context) {
	ctx := c.Request.Context()

	var cards []*entity.BusinessCard
	var err error

	if employeeID := c.Query("employee_id"); employeeID != "" {
		cards, err = h.cardService.FindByEmployee(ctx, employeeID)
	} else if companyID := c.Query("company_id"); companyID != "" {
		cards, err = h.cardService.FindByCompany(ctx, companyID)
	} else {
		badRequest(c, "company_id or employee_id is required")
		return
	}

	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cards})
}

// GetCard handles GET /api/cards/:id
func (h *Handlers) GetCard(c *gin.Context) {
	card, err := h.cardService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: card})
}

// SuspendCard handles POST /api/cards/:id/suspend
func (h *Handlers) SuspendCard(c *gin.Context) {
	card, err := h.cardService.Suspend(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: card})
}

// ActivateCard handles POST /api/cards/:id/activate
func (h *Handlers) ActivateCard(c *gin.Context) {
	card, err := h.cardService.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: card})
}

// CancelCard handles POST /api/cards/:id/cancel
func (h *Handlers) CancelCard(c *gin.Context) {
	card, err := h.cardService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: card})
}

// UpdateCardBalanceRequest is the body of PUT /api/cards/:id/balance
type UpdateCardBalanceRequest struct {
	Balance int64 `json:"balance" binding:"min=0"`
}

// UpdateCardBalance handles PUT /api/cards/:id/balance
func (h *Handlers) UpdateCardBalance(c *gin.Context) {
	var req UpdateCardBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	card, err := h.cardService.UpdateBalance(c.Request.Context(), c.Param("id"), req.Balance)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: card})
}
