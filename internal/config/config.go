package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Ledger   LedgerConfig   `json:"ledger"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// LedgerConfig carries the ledger's deployment-specific identities and rates.
// AuthorityID is the single platform-authority account permitted to issue
// credits, verify measurements and practices, and adjust pricing.
type LedgerConfig struct {
	AuthorityID     string `json:"authority_id"`
	PlatformFeeBps  int64  `json:"platform_fee_bps"`
	BaseCreditPrice int64  `json:"base_credit_price"`
}

// SecurityConfig
type SecurityConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "carbonscribe_ledger",
			SSLMode: "disable",
		},
		Ledger: LedgerConfig{
			PlatformFeeBps:  300,
			BaseCreditPrice: 2500,
		},
		Security: SecurityConfig{
			TokenTTL: 24 * time.Hour,
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if authority := os.Getenv("LEDGER_AUTHORITY_ID"); authority != "" {
		config.Ledger.AuthorityID = authority
	}
	if feeBps := os.Getenv("LEDGER_PLATFORM_FEE_BPS"); feeBps != "" {
		if v, err := strconv.ParseInt(feeBps, 10, 64); err == nil {
			config.Ledger.PlatformFeeBps = v
		}
	}
	if basePrice := os.Getenv("LEDGER_BASE_CREDIT_PRICE"); basePrice != "" {
		if v, err := strconv.ParseInt(basePrice, 10, 64); err == nil {
			config.Ledger.BaseCreditPrice = v
		}
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
}

// Validate checks rate and identity fields the ledger depends on.
func (c *Config) Validate() error {
	if c.Ledger.PlatformFeeBps < 0 || c.Ledger.PlatformFeeBps > 10000 {
		return fmt.Errorf("platform_fee_bps must be within [0,10000], got %d", c.Ledger.PlatformFeeBps)
	}
	if c.Ledger.BaseCreditPrice <= 0 {
		return fmt.Errorf("base_credit_price must be positive, got %d", c.Ledger.BaseCreditPrice)
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
