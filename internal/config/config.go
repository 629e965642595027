package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"bikerental-backend/internal/pricing"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	Payment   PaymentConfig   `yaml:"payment"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Report    ReportConfig    `yaml:"report"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
	BaseURL  string `yaml:"base_url"` // public URL used in payment redirects
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	SSLMode     string `yaml:"ssl_mode"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// AuthConfig selects the identity provider
type AuthConfig struct {
	Provider string         `yaml:"provider"` // "jwt" or "firebase"
	JWT      JWTConfig      `yaml:"jwt"`
	Firebase FirebaseConfig `yaml:"firebase"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// FirebaseConfig contains Firebase Admin SDK settings
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// SendGridConfig contains email delivery settings. Without an API key
// emails are written to the log instead.
type SendGridConfig struct {
	APIKey     string `yaml:"api_key"`
	FromEmail  string `yaml:"from_email"`
	FromName   string `yaml:"from_name"`
	AdminEmail string `yaml:"admin_email"`
}

// PaymentConfig selects the deposit payment gateway
type PaymentConfig struct {
	Provider               string `yaml:"provider"` // "simulated" or "mercadopago"
	MercadoPagoAccessToken string `yaml:"mercadopago_access_token"`
	PendingTimeoutMinutes  int    `yaml:"pending_timeout_minutes"`
}

// PricingConfig holds the rental policy. Amounts are in rupees.
type PricingConfig struct {
	DepositRupees            float64          `yaml:"deposit_rupees"`
	PlatformFeeRupees        float64          `yaml:"platform_fee_rupees"`
	GracePeriodMinutes       int              `yaml:"grace_period_minutes"`
	LateTiers                []LateTierConfig `yaml:"late_tiers"`
	ManualReviewAfterMinutes int              `yaml:"manual_review_after_minutes"`
}

// LateTierConfig is one late return band
type LateTierConfig struct {
	Name              string `yaml:"name"`
	UpToMinutes       int    `yaml:"up_to_minutes"`
	MultiplierPercent int64  `yaml:"multiplier_percent"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings (with seconds field)
type SchedulerConfig struct {
	FlagOverdueBookings    string `yaml:"flag_overdue_bookings"`
	CancelStalePending     string `yaml:"cancel_stale_pending"`
	ExportSettlementReport string `yaml:"export_settlement_report"`
}

// ReportConfig contains settlement report settings
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes, applies environment
// overrides and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)

	// Server
	envString("SERVER_HOST", &c.Server.Host)
	envInt("SERVER_PORT", &c.Server.Port)
	envInt("GRPC_PORT", &c.Server.GRPCPort)
	envString("SERVER_BASE_URL", &c.Server.BaseURL)

	// Auth
	envString("AUTH_PROVIDER", &c.Auth.Provider)
	envString("JWT_SECRET", &c.Auth.JWT.Secret)
	envString("FIREBASE_PROJECT_ID", &c.Auth.Firebase.ProjectID)
	envString("GOOGLE_APPLICATION_CREDENTIALS", &c.Auth.Firebase.CredentialsFile)

	// SendGrid
	envString("SENDGRID_API_KEY", &c.SendGrid.APIKey)
	envString("SENDGRID_FROM_EMAIL", &c.SendGrid.FromEmail)
	envString("ADMIN_EMAIL", &c.SendGrid.AdminEmail)

	// Payment
	envString("PAYMENT_PROVIDER", &c.Payment.Provider)
	envString("MERCADOPAGO_ACCESS_TOKEN", &c.Payment.MercadoPagoAccessToken)

	// Log
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)

	// Report
	envString("REPORT_OUTPUT_DIR", &c.Report.OutputDir)

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = c.Server.Port + 1
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 || c.Server.GRPCPort == c.Server.Port {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// Auth validation
	switch c.Auth.Provider {
	case "", "jwt":
		c.Auth.Provider = "jwt"
		if len(c.Auth.JWT.Secret) < 32 {
			return fmt.Errorf("JWT secret must be at least 32 characters")
		}
		if c.Auth.JWT.AccessTokenExpiry == 0 {
			c.Auth.JWT.AccessTokenExpiry = 60
		}
	case "firebase":
		if c.Auth.Firebase.ProjectID == "" {
			return fmt.Errorf("firebase project id is required")
		}
	default:
		return fmt.Errorf("unknown auth provider: %q", c.Auth.Provider)
	}

	// Payment validation
	switch c.Payment.Provider {
	case "", "simulated":
		c.Payment.Provider = "simulated"
	case "mercadopago":
		if c.Payment.MercadoPagoAccessToken == "" {
			return fmt.Errorf("mercadopago access token is required")
		}
	default:
		return fmt.Errorf("unknown payment provider: %q", c.Payment.Provider)
	}
	if c.Payment.PendingTimeoutMinutes == 0 {
		c.Payment.PendingTimeoutMinutes = 30
	}

	// Email defaults
	if c.SendGrid.FromName == "" {
		c.SendGrid.FromName = "Bike Rentals"
	}
	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from_email is required when an API key is set")
	}

	// Pricing defaults and validation
	c.Pricing.applyDefaults()
	if _, err := c.PricingPolicy(); err != nil {
		return err
	}

	// Scheduler defaults
	if c.Scheduler.FlagOverdueBookings == "" {
		c.Scheduler.FlagOverdueBookings = "0 */10 * * * *" // every 10 minutes
	}
	if c.Scheduler.CancelStalePending == "" {
		c.Scheduler.CancelStalePending = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.ExportSettlementReport == "" {
		c.Scheduler.ExportSettlementReport = "0 0 1 1 * *" // 1st of month at 1 AM UTC
	}

	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "./reports"
	}

	return nil
}

func (p *PricingConfig) applyDefaults() {
	def := pricing.DefaultPolicy()
	if p.DepositRupees == 0 {
		p.DepositRupees = float64(def.Deposit.DepositAmount.Paise()) / 100
	}
	if p.PlatformFeeRupees == 0 {
		p.PlatformFeeRupees = float64(def.Deposit.PlatformFee.Paise()) / 100
	}
	if p.GracePeriodMinutes == 0 {
		p.GracePeriodMinutes = int(def.GracePeriod / time.Minute)
	}
	if len(p.LateTiers) == 0 {
		for _, t := range def.LateTiers {
			p.LateTiers = append(p.LateTiers, LateTierConfig{
				Name:              t.Name,
				UpToMinutes:       int(t.UpTo / time.Minute),
				MultiplierPercent: t.MultiplierPercent,
			})
		}
	}
	if p.ManualReviewAfterMinutes == 0 {
		p.ManualReviewAfterMinutes = int(def.ManualReviewAfter / time.Minute)
	}
}

// PricingPolicy converts the pricing section into the engine's policy value.
func (c *Config) PricingPolicy() (pricing.RentalPolicyConfig, error) {
	p := c.Pricing
	policy := pricing.RentalPolicyConfig{
		Deposit: pricing.DepositPolicy{
			DepositAmount: pricing.RupeesFloat(p.DepositRupees),
			PlatformFee:   pricing.RupeesFloat(p.PlatformFeeRupees),
		},
		GracePeriod:       time.Duration(p.GracePeriodMinutes) * time.Minute,
		ManualReviewAfter: time.Duration(p.ManualReviewAfterMinutes) * time.Minute,
	}
	for _, t := range p.LateTiers {
		policy.LateTiers = append(policy.LateTiers, pricing.LateTier{
			Name:              t.Name,
			UpTo:              time.Duration(t.UpToMinutes) * time.Minute,
			MultiplierPercent: t.MultiplierPercent,
		})
	}
	if err := policy.Validate(); err != nil {
		return pricing.RentalPolicyConfig{}, err
	}
	return policy, nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC listen address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
