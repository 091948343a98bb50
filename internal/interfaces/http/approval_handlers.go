package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/domain/entity"
)

// ListApprovalsRequest represents query parameters for the approval queue
type ListApprovalsRequest struct {
	CompanyID  string `form:"company_id"`
	EmployeeID string `form:"employee_id"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// GetPendingApprovals handles GET /api/approvals/pending
func (h *Handlers) GetPendingApprovals(c *gin.Context) {
	var req ListApprovalsRequest
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

	result, err := h.approvalService.GetPendingApprovals(c.Request.Context(), port.ExpenseFilter{
		Status:     entity.ExpensePending,
		CompanyID:  req.CompanyID,
		EmployeeID: req.EmployeeID,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// GetApprovalStats handles GET /api/approvals/stats
func (h *Handlers) GetApprovalStats(c *gin.Context) {
	stats, err := h.approvalService.GetApprovalStats(c.Request.Context(), c.Query("company_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: stats})
}

// GetApproverWorkloads handles GET /api/approvals/workload
func (h *Handlers) GetApproverWorkloads(c *gin.Context) {
	workloads, err := h.approvalService.PendingCountsByApprover(c.Request.Context(), c.Query("company_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: workloads})
}

// ApprovalDecisionBody is the body of POST /api/approvals/:id
type ApprovalDecisionBody struct {
	ApproverID string `json:"approver_id" binding:"required"`
	Approved   *bool  `json:"approved" binding:"required"`
	Comment    string `json:"comment"`
}

// ProcessApproval handles POST /api/approvals/:id
func (h *Handlers) ProcessApproval(c *gin.Context) {
	var body ApprovalDecisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "approver_id and approved are required")
		return
	}

	expense, err := h.approvalService.ProcessApproval(
		c.Request.Context(), c.Param("id"), body.ApproverID, *body.Approved, body.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// BulkApprovalBody is the body of POST /api/approvals/bulk
type BulkApprovalBody struct {
	ExpenseIDs []string `json:"expense_ids" binding:"required,min=1"`
	ApproverID string   `json:"approver_id" binding:"required"`
	Approved   *bool    `json:"approved" binding:"required"`
	Comment    string   `json:"comment"`
}

// ProcessBulkApproval handles POST /api/approvals/bulk
func (h *Handlers) ProcessBulkApproval(c *gin.Context) {
	var body BulkApprovalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "expense_ids, approver_id and approved are required")
		return
	}

	result, err := h.approvalService.ProcessBulkApproval(
		c.Request.Context(), body.ExpenseIDs, body.ApproverID, *body.Approved, body.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}
