package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junsato/corpcard/internal/domain/entity"
)

// GetBudgets handles GET /api/budgets?month=YYYY-MM&company_id=...
func (h *Handlers) GetBudgets(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		badRequest(c, "invalid month, expected YYYY-MM")
		return
	}

	summary := h.budgetService.GetBudgetsByMonth(c.Request.Context(), month, c.Query("company_id"))
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// BudgetBody is the body of POST /api/budgets and PUT /api/budgets/:id
type BudgetBody struct {
	Month        string `json:"month"`
	Category     string `json:"category"`
	CategoryName string `json:"category_name"`
	BudgetAmount int64  `json:"budget_amount" binding:"required,gt=0"`
	Description  string `json:"description"`
	CompanyID    string `json:"company_id"`
}

// CreateBudget handles POST /api/budgets
func (h *Handlers) CreateBudget(c *gin.Context) {
	var body BudgetBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if body.Month == "" || body.Category == "" {
		badRequest(c, "month and category are required")
		return
	}
	if _, err := time.Parse("2006-01", body.Month); err != nil {
		badRequest(c, "invalid month, expected YYYY-MM")
		return
	}

	budget := &entity.Budget{
		Month:        body.Month,
		Category:     entity.BudgetCategory(body.Category),
		CategoryName: body.CategoryName,
		BudgetAmount: body.BudgetAmount,
		Description:  body.Description,
		CompanyID:    body.CompanyID,
	}
	if err := h.budgetService.CreateBudget(c.Request.Context(), budget); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: budget})
}

// UpdateBudget handles PUT /api/budgets/:id
func (h *Handlers) UpdateBudget(c *gin.Context) {
	var body BudgetBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), &entity.Budget{
		ID:           c.Param("id"),
		CategoryName: body.CategoryName,
		BudgetAmount: body.BudgetAmount,
		Description:  body.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: budget})
}

// DeleteBudget handles DELETE /api/budgets/:id
func (h *Handlers) DeleteBudget(c *gin.Context) {
	if err := h.budgetService.DeleteBudget(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}
