package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mannapay/mannapay/internal/models"
	"github.com/mannapay/mannapay/pkg/validation"
)

type Config struct {
	Development bool `yaml:"development"`
	// API configuration
	APIHost string `yaml:"api_host"`
	APIPort int    `yaml:"api_port"`

	// Storage configuration
	StorageDriver string `yaml:"storage_driver"`
	StoragePath   string `yaml:"storage_path"`
	StorageKey    string `yaml:"storage_key"`
	// Postgres configuration
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     int    `yaml:"postgres_port"`
	PostgresDB       string `yaml:"postgres_db"`
	// MySQL configuration
	MySQLUser     string `yaml:"mysql_user"`
	MySQLPassword string `yaml:"mysql_password"`
	MySQLHost     string `yaml:"mysql_host"`
	MySQLPort     int    `yaml:"mysql_port"`
	MySQLDB       string `yaml:"mysql_db"`

	// Blockchain configuration
	Network               string `yaml:"network"`
	Gateway               string `yaml:"gateway"`
	HiroURL               string `yaml:"hiro_url"`
	MerchantAddress       string `yaml:"merchant_address"`
	FallbackWalletAddress string `yaml:"fallback_wallet_address"`
	DevMnemonic           string `yaml:"dev_mnemonic"`
	DevAccountIndex       int    `yaml:"dev_account_index"`
	USDCContractID        string `yaml:"usdc_contract_id"`

	ConfirmationDelay      time.Duration `yaml:"confirmation_delay"`
	StatusPollInterval     time.Duration `yaml:"status_poll_interval"`
	StatusPollTimeout      time.Duration `yaml:"status_poll_timeout"`
	BalanceRefreshInterval time.Duration `yaml:"balance_refresh_interval"`
	RefreshCurrencies      []string      `yaml:"refresh_currencies"`
	StrictTransitions      bool          `yaml:"strict_transitions"`

	// Catalog and rates
	CatalogFile          string        `yaml:"catalog_file"`
	RatesURL             string        `yaml:"rates_url"`
	RatesRefreshInterval time.Duration `yaml:"rates_refresh_interval"`

	// SMTP configuration
	SMTPHost            string `yaml:"smtp_host"`
	SMTPPort            int    `yaml:"smtp_port"`
	SMTPAlternativePort int    `yaml:"smtp_alternative_port"`
	SMTPUser            string `yaml:"smtp_user"`
	SMTPPassword        string `yaml:"smtp_password"`
	SMTPSender          string `yaml:"smtp_sender"`
	NotifyEmail         string `yaml:"notify_email"`

	// Notification configuration
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   string `yaml:"telegram_chat_id"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		APIHost:       "127.0.0.1",
		APIPort:       6532,
		StorageDriver: "file",
		StoragePath:   "data/mannapay.json",
		StorageKey:    "mannapay_data",

		PostgresUser: "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "mannapay",
		MySQLUser:    "root",
		MySQLHost:    "localhost",
		MySQLPort:    3306,
		MySQLDB:      "mannapay",

		Network:         string(models.Testnet),
		Gateway:         "testnet",
		MerchantAddress: "SP2C2M5XYZ123456789",

		ConfirmationDelay:      2 * time.Second,
		StatusPollInterval:     time.Second,
		StatusPollTimeout:      30 * time.Second,
		BalanceRefreshInterval: 30 * time.Second,
		RefreshCurrencies:      []string{string(models.USDC)},
		StrictTransitions:      true,

		RatesRefreshInterval: time.Hour,

		SMTPHost:            "smtp.example.com",
		SMTPPort:            587,
		SMTPAlternativePort: 465,
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, then environment variables (a .env file is loaded if present).
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile overlays the keys present in a YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields with the environment variables that are set.
func (c *Config) ApplyEnv() {
	c.Development = getEnvAsBool("DEVELOPMENT", c.Development)
	c.APIHost = getEnv("API_HOST", c.APIHost)
	c.APIPort = getEnvAsInt("API_PORT", c.APIPort)

	c.StorageDriver = getEnv("STORAGE_DRIVER", c.StorageDriver)
	c.StoragePath = getEnv("STORAGE_PATH", c.StoragePath)
	c.StorageKey = getEnv("STORAGE_KEY", c.StorageKey)
	c.PostgresUser = getEnv("POSTGRES_USER", c.PostgresUser)
	c.PostgresPassword = getEnv("POSTGRES_PASSWORD", c.PostgresPassword)
	c.PostgresHost = getEnv("POSTGRES_HOST", c.PostgresHost)
	c.PostgresPort = getEnvAsInt("POSTGRES_PORT", c.PostgresPort)
	c.PostgresDB = getEnv("POSTGRES_DB", c.PostgresDB)
	c.MySQLUser = getEnv("MYSQL_USER", c.MySQLUser)
	c.MySQLPassword = getEnv("MYSQL_PASSWORD", c.MySQLPassword)
	c.MySQLHost = getEnv("MYSQL_HOST", c.MySQLHost)
	c.MySQLPort = getEnvAsInt("MYSQL_PORT", c.MySQLPort)
	c.MySQLDB = getEnv("MYSQL_DB", c.MySQLDB)

	c.Network = getEnv("NETWORK", c.Network)
	c.Gateway = getEnv("GATEWAY", c.Gateway)
	c.HiroURL = getEnv("HIRO_URL", c.HiroURL)
	c.MerchantAddress = getEnv("MERCHANT_ADDRESS", c.MerchantAddress)
	c.FallbackWalletAddress = getEnv("FALLBACK_WALLET_ADDRESS", c.FallbackWalletAddress)
	c.DevMnemonic = getEnv("DEV_MNEMONIC", c.DevMnemonic)
	c.DevAccountIndex = getEnvAsInt("DEV_ACCOUNT_INDEX", c.DevAccountIndex)
	c.USDCContractID = getEnv("USDC_CONTRACT_ID", c.USDCContractID)

	c.ConfirmationDelay = getEnvAsDuration("CONFIRMATION_DELAY", c.ConfirmationDelay)
	c.StatusPollInterval = getEnvAsDuration("STATUS_POLL_INTERVAL", c.StatusPollInterval)
	c.StatusPollTimeout = getEnvAsDuration("STATUS_POLL_TIMEOUT", c.StatusPollTimeout)
	c.BalanceRefreshInterval = getEnvAsDuration("BALANCE_REFRESH_INTERVAL", c.BalanceRefreshInterval)
	c.RefreshCurrencies = getEnvAsList("REFRESH_CURRENCIES", c.RefreshCurrencies)
	c.StrictTransitions = getEnvAsBool("STRICT_TRANSITIONS", c.StrictTransitions)

	c.CatalogFile = getEnv("CATALOG_FILE", c.CatalogFile)
	c.RatesURL = getEnv("RATES_URL", c.RatesURL)
	c.RatesRefreshInterval = getEnvAsDuration("RATES_REFRESH_INTERVAL", c.RatesRefreshInterval)

	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	c.SMTPPort = getEnvAsInt("SMTP_PORT", c.SMTPPort)
	c.SMTPAlternativePort = getEnvAsInt("SMTP_ALTERNATIVE_PORT", c.SMTPAlternativePort)
	c.SMTPUser = getEnv("SMTP_USER", c.SMTPUser)
	c.SMTPPassword = getEnv("SMTP_PASSWORD", c.SMTPPassword)
	c.SMTPSender = getEnv("SMTP_SENDER", c.SMTPSender)
	c.NotifyEmail = getEnv("NOTIFY_EMAIL", c.NotifyEmail)

	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", c.TelegramChatID)
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535, got %d", c.APIPort)
	}

	switch c.StorageDriver {
	case "file":
		if c.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for the file storage driver")
		}
	case "postgres":
		if c.PostgresHost == "" || c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required for the postgres storage driver")
		}
	case "mysql":
		if c.MySQLHost == "" || c.MySQLDB == "" {
			return fmt.Errorf("MYSQL_HOST and MYSQL_DB are required for the mysql storage driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageKey == "" {
		return fmt.Errorf("STORAGE_KEY is required")
	}

	switch models.NetworkName(c.Network) {
	case models.Testnet, models.Mainnet:
	default:
		return fmt.Errorf("unsupported NETWORK %q", c.Network)
	}
	switch c.Gateway {
	case "testnet", "hiro":
	default:
		return fmt.Errorf("unsupported GATEWAY %q", c.Gateway)
	}

	if err := validation.ValidateAddress(c.MerchantAddress); err != nil {
		return fmt.Errorf("invalid MERCHANT_ADDRESS: %w", err)
	}
	if c.FallbackWalletAddress != "" {
		if err := validation.ValidateAddress(c.FallbackWalletAddress); err != nil {
			return fmt.Errorf("invalid FALLBACK_WALLET_ADDRESS: %w", err)
		}
	}
	if c.DevAccountIndex < 0 {
		return fmt.Errorf("DEV_ACCOUNT_INDEX must not be negative")
	}

	if c.StatusPollInterval <= 0 || c.StatusPollTimeout <= 0 || c.BalanceRefreshInterval <= 0 {
		return fmt.Errorf("STATUS_POLL_INTERVAL, STATUS_POLL_TIMEOUT and BALANCE_REFRESH_INTERVAL must be positive")
	}
	if c.ConfirmationDelay < 0 {
		return fmt.Errorf("CONFIRMATION_DELAY must not be negative")
	}
	if _, err := c.RefreshCurrencyList(); err != nil {
		return fmt.Errorf("invalid REFRESH_CURRENCIES: %w", err)
	}

	if c.NotifyEmail != "" {
		if err := validation.ValidateEmail(c.NotifyEmail); err != nil {
			return fmt.Errorf("invalid NOTIFY_EMAIL: %w", err)
		}
	}

	return nil
}

// RefreshCurrencyList parses the currencies refreshed by the balance poller.
func (c *Config) RefreshCurrencyList() ([]models.Currency, error) {
	out := make([]models.Currency, 0, len(c.RefreshCurrencies))
	for _, s := range c.RefreshCurrencies {
		cur, err := models.ParseCurrency(s)
		if err != nil {
			return nil, err
		}
		out = append(out, cur)
	}
	return out, nil
}

// APIAddress is the listen address of the control API.
func (c *Config) APIAddress() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(name string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(name)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
