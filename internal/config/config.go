package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Accounting AccountingConfig `mapstructure:"accounting"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Tax        TaxConfig        `mapstructure:"tax"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Approval   ApprovalConfig   `mapstructure:"approval"`
	Budget     BudgetConfig     `mapstructure:"budget"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// OpenAIConfig holds the expense classifier API configuration
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AccountingConfig holds the external accounting API configuration
type AccountingConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// NotifyConfig holds notification delivery configuration
type NotifyConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TaxConfig holds Japan consumption tax rates
type TaxConfig struct {
	StandardRate float64 `mapstructure:"standard_rate"`
	ReducedRate  float64 `mapstructure:"reduced_rate"`
}

// RiskConfig holds fraud risk scoring weights
type RiskConfig struct {
	AmountSpikeWeight     float64 `mapstructure:"amount_spike_weight"`
	AmountSpikeMultiplier float64 `mapstructure:"amount_spike_multiplier"`
	ViolationWeight       float64 `mapstructure:"violation_weight"`
	ForeignMerchantWeight float64 `mapstructure:"foreign_merchant_weight"`
	ManualReviewThreshold float64 `mapstructure:"manual_review_threshold"`
}

// ApprovalConfig holds approval queue priority thresholds
type ApprovalConfig struct {
	LargeAmount     int64   `mapstructure:"large_amount"`
	HugeAmount      int64   `mapstructure:"huge_amount"`
	HighRiskScore   float64 `mapstructure:"high_risk_score"`
	MediumRiskScore float64 `mapstructure:"medium_risk_score"`
	StaleAfterDays  int     `mapstructure:"stale_after_days"`
	AgingAfterDays  int     `mapstructure:"aging_after_days"`
}

// BudgetConfig holds default monthly budget amounts per category (JPY)
type BudgetConfig struct {
	DefaultEntertainment int64   `mapstructure:"default_entertainment"`
	DefaultOfficeSupply  int64   `mapstructure:"default_office_supplies"`
	DefaultTravel        int64   `mapstructure:"default_travel"`
	DefaultSoftware      int64   `mapstructure:"default_software"`
	DefaultOther         int64   `mapstructure:"default_other"`
	WarningPercentage    float64 `mapstructure:"warning_percentage"`
	ExceededPercentage   float64 `mapstructure:"exceeded_percentage"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/corpcard.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "console")

	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.temperature", 0.0)
	viper.SetDefault("openai.timeout", 30*time.Second)

	viper.SetDefault("accounting.timeout", 15*time.Second)
	viper.SetDefault("notify.timeout", 10*time.Second)

	viper.SetDefault("tax.standard_rate", 0.10)
	viper.SetDefault("tax.reduced_rate", 0.08)

	viper.SetDefault("risk.amount_spike_weight", 0.3)
	viper.SetDefault("risk.amount_spike_multiplier", 3.0)
	viper.SetDefault("risk.violation_weight", 0.4)
	viper.SetDefault("risk.foreign_merchant_weight", 0.2)
	viper.SetDefault("risk.manual_review_threshold", 0.7)

	viper.SetDefault("approval.large_amount", 100000)
	viper.SetDefault("approval.huge_amount", 500000)
	viper.SetDefault("approval.high_risk_score", 0.8)
	viper.SetDefault("approval.medium_risk_score", 0.5)
	viper.SetDefault("approval.stale_after_days", 7)
	viper.SetDefault("approval.aging_after_days", 3)

	viper.SetDefault("budget.default_entertainment", 2000000)
	viper.SetDefault("budget.default_office_supplies", 1500000)
	viper.SetDefault("budget.default_travel", 3000000)
	viper.SetDefault("budget.default_software", 2500000)
	viper.SetDefault("budget.default_other", 1000000)
	viper.SetDefault("budget.warning_percentage", 80)
	viper.SetDefault("budget.exceeded_percentage", 100)
}

func bindEnvVars() {
	_ = viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("accounting.access_token", "ACCOUNTING_ACCESS_TOKEN")
	_ = viper.BindEnv("notify.webhook_url", "NOTIFY_WEBHOOK_URL")
	_ = viper.BindEnv("database.path", "DATABASE_PATH")
	_ = viper.BindEnv("server.port", "SERVER_PORT")
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Tax.StandardRate < 0 || c.Tax.StandardRate > 1 {
		return fmt.Errorf("tax.standard_rate must be between 0 and 1, got %f", c.Tax.StandardRate)
	}
	if c.Tax.ReducedRate < 0 || c.Tax.ReducedRate > c.Tax.StandardRate {
		return fmt.Errorf("tax.reduced_rate must be between 0 and the standard rate, got %f", c.Tax.ReducedRate)
	}
	if c.Risk.ManualReviewThreshold < 0 || c.Risk.ManualReviewThreshold > 1 {
		return fmt.Errorf("risk.manual_review_threshold must be between 0 and 1, got %f", c.Risk.ManualReviewThreshold)
	}
	if c.Budget.WarningPercentage <= 0 || c.Budget.WarningPercentage >= c.Budget.ExceededPercentage {
		return fmt.Errorf("budget.warning_percentage must be positive and below budget.exceeded_percentage")
	}
	return nil
}
