// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/domain"
)

// Run modes. Test mode uses a tiny anti-spam floor and simulated swaps; live
// mode uses the rail-mandated minimum and real executions.
const (
	ModeTest = "test"
	ModeLive = "live"
)

// Minimum transfer size per run mode. The live floor is mandated by the
// transfer rail's anti-spam policy.
const (
	MinTransferTest = 0.01
	MinTransferLive = 5.00
)

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for the history database (always absolute)
	Port                int
	LogLevel            string
	DevMode             bool
	RunMode             string // test or live
	RailURL             string
	LendingURL          string
	SwapURL             string
	MarketDataURL       string
	AdvisorURL          string
	AdvisorAPIKey       string
	MemoURL             string
	AutoRebalanceCron   string // empty disables the scheduled rebalance job
	AutoRebalanceWallet string
	DefaultRiskProfile  domain.RiskProfile
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("SHADOWFUND_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("PORT", 8010),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		RunMode:             getEnv("RUN_MODE", ModeTest),
		RailURL:             getEnv("RAIL_URL", "http://localhost:9101"),
		LendingURL:          getEnv("LENDING_URL", "http://localhost:9102"),
		SwapURL:             getEnv("SWAP_URL", "http://localhost:9103"),
		MarketDataURL:       getEnv("MARKET_DATA_URL", "http://localhost:9104"),
		AdvisorURL:          getEnv("ADVISOR_URL", ""),
		AdvisorAPIKey:       getEnv("ADVISOR_API_KEY", ""),
		MemoURL:             getEnv("MEMO_URL", "http://localhost:9105"),
		AutoRebalanceCron:   getEnv("AUTO_REBALANCE_CRON", ""),
		AutoRebalanceWallet: getEnv("AUTO_REBALANCE_WALLET", ""),
		DefaultRiskProfile:  domain.RiskProfile(getEnv("DEFAULT_RISK_PROFILE", "medium")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.RunMode != ModeTest && c.RunMode != ModeLive {
		return fmt.Errorf("invalid RUN_MODE %q (must be %q or %q)", c.RunMode, ModeTest, ModeLive)
	}
	if !domain.IsValidRiskProfile(c.DefaultRiskProfile) {
		return fmt.Errorf("invalid DEFAULT_RISK_PROFILE %q", c.DefaultRiskProfile)
	}
	if c.AutoRebalanceCron != "" && c.AutoRebalanceWallet == "" {
		return fmt.Errorf("AUTO_REBALANCE_CRON requires AUTO_REBALANCE_WALLET")
	}
	return nil
}

// MinTransfer returns the anti-spam floor for the configured run mode.
func (c *Config) MinTransfer() float64 {
	if c.RunMode == ModeLive {
		return MinTransferLive
	}
	return MinTransferTest
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
