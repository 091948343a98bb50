package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junsato/corpcard/internal/application/service"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	cardService        service.CardService
	transactionService service.TransactionService
	expenseService     service.ExpenseService
	approvalService    service.ApprovalService
	budgetService      service.BudgetService
	dashboardService   service.DashboardService
	reportService      service.ReportService
	logger             Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	cardService service.CardService,
	transactionService service.TransactionService,
	expenseService service.ExpenseService,
	approvalService service.ApprovalService,
	budgetService service.BudgetService,
	dashboardService service.DashboardService,
	reportService service.ReportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		cardService:        cardService,
		transactionService: transactionService,
		expenseService:     expenseService,
		approvalService:    approvalService,
		budgetService:      budgetService,
		dashboardService:   dashboardService,
		reportService:      reportService,
		logger:             logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// GetDashboardStats handles GET /api/dashboard/stats
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: stats})
}

// ExportExpenseReport handles GET /api/reports/expenses
func (h *Handlers) ExportExpenseReport(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	companyID := c.Query("company_id")

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="expenses-`+month+`.xlsx"`)

	if err := h.reportService.WriteMonthlyExpenseReport(c.Request.Context(), month, companyID, c.Writer); err != nil {
		h.logger.Error("Failed to export expense report", "month", month, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
}

// respondError maps domain sentinel errors to HTTP status codes.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrAlreadyProcessed),
		errors.Is(err, entity.ErrInvalidStateTransition):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrUnauthorized),
		errors.Is(err, entity.ErrApprovalLimitExceeded):
		status = http.StatusForbidden
	case errors.Is(err, entity.ErrCardUnavailable),
		errors.Is(err, entity.ErrInsufficientBalance),
		errors.Is(err, entity.ErrRejectionReasonRequired):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
	}

	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   message,
	})
}
