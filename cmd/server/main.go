package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/junsato/corpcard/internal/application/port"
	"github.com/junsato/corpcard/internal/application/service"
	"github.com/junsato/corpcard/internal/config"
	"github.com/junsato/corpcard/internal/domain/risk"
	"github.com/junsato/corpcard/internal/domain/tax"
	"github.com/junsato/corpcard/internal/infrastructure/external/accounting"
	"github.com/junsato/corpcard/internal/infrastructure/external/classify"
	"github.com/junsato/corpcard/internal/infrastructure/external/notify"
	"github.com/junsato/corpcard/internal/infrastructure/gateway"
	"github.com/junsato/corpcard/internal/infrastructure/persistence/repository"
	"github.com/junsato/corpcard/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/junsato/corpcard/internal/interfaces/http"
	"github.com/junsato/corpcard/pkg/database"
	"github.com/junsato/corpcard/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting corporate card expense service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)

	// Repositories
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	cardRepo := repository.NewCardRepository(db.DB, logger)
	transactionRepo := repository.NewTransactionRepository(db.DB, logger)
	employeeRepo := repository.NewEmployeeRepository(db.DB, logger)
	companyRepo := repository.NewCompanyRepository(db.DB, logger)
	budgetRepo := repository.NewBudgetRepository(db.DB, logger)
	providerRepo := repository.NewProviderRepository(db.DB, logger)

	// External collaborators
	var classifier port.Classifier = classify.NewKeywordClassifier()
	if cfg.OpenAI.APIKey != "" {
		classifier = classify.NewOpenAIClassifier(
			cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, logger)
	}

	accountingClient := accounting.NewClient(accounting.Config{
		BaseURL:     cfg.Accounting.BaseURL,
		AccessToken: cfg.Accounting.AccessToken,
		Timeout:     cfg.Accounting.Timeout,
	}, logger)

	notifier := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout, logger)

	nativeGateway := gateway.NewNativeGateway(cardRepo, transactionRepo)
	gatewayFactory := gateway.NewFactory(nativeGateway, os.Getenv("PARTNER_API_KEY"), cfg.Accounting.Timeout, logger)

	// Application services
	serviceLogger := &zapLoggerAdapter{logger: logger}

	taxCalc := tax.NewCalculator(cfg.Tax.StandardRate, cfg.Tax.ReducedRate)
	riskScorer := risk.NewScorer(risk.Weights{
		AmountSpike:     cfg.Risk.AmountSpikeWeight,
		SpikeMultiplier: cfg.Risk.AmountSpikeMultiplier,
		Violation:       cfg.Risk.ViolationWeight,
		ForeignMerchant: cfg.Risk.ForeignMerchantWeight,
	})

	approvalService := service.NewApprovalService(
		expenseRepo, employeeRepo, accountingClient, notifier,
		cfg.Approval, cfg.Risk, serviceLogger)
	budgetService := service.NewBudgetService(
		budgetRepo, expenseRepo, companyRepo, notifier, cfg.Budget, serviceLogger)
	cardService := service.NewCardService(cardRepo, serviceLogger)
	transactionService := service.NewTransactionService(transactionRepo, cardRepo, txManager, serviceLogger)
	dashboardService := service.NewDashboardService(cardRepo, transactionRepo, serviceLogger)
	reportService := service.NewReportService(expenseRepo, budgetService, serviceLogger)

	expenseService := service.NewExpenseService(
		expenseRepo,
		cardRepo,
		providerRepo,
		classifier,
		gatewayFactory,
		approvalService,
		budgetService,
		notifier,
		txManager,
		taxCalc,
		riskScorer,
		cfg.Risk,
		serviceLogger,
	)

	// HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		cardService,
		transactionService,
		expenseService,
		approvalService,
		budgetService,
		dashboardService,
		reportService,
		serviceLogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}

// zapLoggerAdapter adapts zap.Logger to the service and HTTP Logger interfaces.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
