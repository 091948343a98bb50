// Package http provides the HTTP server adapter for the application layer.
// It is a thin layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/junsato/corpcard/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	cardService service.CardService,
	transactionService service.TransactionService,
	expenseService service.ExpenseService,
	approvalService service.ApprovalService,
	budgetService service.BudgetService,
	dashboardService service.DashboardService,
	reportService service.ReportService,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		handlers: NewHandlers(
			cardService,
			transactionService,
			expenseService,
			approvalService,
			budgetService,
			dashboardService,
			reportService,
			logger,
		),
		logger: logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := s.handlers

	// Health check
	s.router.GET("/health", h.HealthCheck)

	// API routes
	api := s.router.Group("/api")
	{
		// Cards
		api.GET("/cards", h.ListCards)
		api.GET("/cards/:id", h.GetCard)
		api.POST("/cards/:id/suspend", h.SuspendCard)
		api.POST("/cards/:id/activate", h.ActivateCard)
		api.POST("/cards/:id/cancel", h.CancelCard)
		api.PUT("/cards/:id/balance", h.UpdateCardBalance)

		// Transactions
		api.GET("/transactions", h.ListTransactions)
		api.GET("/transactions/:id", h.GetTransaction)
		api.POST("/transactions", h.CreateTransaction)
		api.PUT("/transactions/:id", h.UpdateTransaction)
		api.POST("/transactions/:id/complete", h.CompleteTransaction)
		api.POST("/transactions/:id/fail", h.FailTransaction)
		api.POST("/transactions/:id/cancel", h.CancelTransaction)

		// Expenses
		api.POST("/expenses", h.CreateExpense)
		api.POST("/expenses/sync", h.SyncTransactions)

		// Approvals
		api.GET("/approvals/pending", h.GetPendingApprovals)
		api.GET("/approvals/stats", h.GetApprovalStats)
		api.GET("/approvals/workload", h.GetApproverWorkloads)
		api.POST("/approvals/:id", h.ProcessApproval)
		api.POST("/approvals/bulk", h.ProcessBulkApproval)

		// Budgets
		api.GET("/budgets", h.GetBudgets)
		api.POST("/budgets", h.CreateBudget)
		api.PUT("/budgets/:id", h.UpdateBudget)
		api.DELETE("/budgets/:id", h.DeleteBudget)

		// Dashboard and reports
		api.GET("/dashboard/stats", h.GetDashboardStats)
		api.GET("/reports/expenses", h.ExportExpenseReport)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
