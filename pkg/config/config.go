// Package config loads service configuration from a YAML file with
// environment variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

// Config is the top-level service configuration
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	ERPNext  ERPNextConfig `yaml:"erpnext"`
	Supply   SupplyConfig  `yaml:"supply"`
	Rules    RulesConfig   `yaml:"rules"`
	LogLevel string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gte=0,lte=65535"`
}

// ERPNextConfig holds ERP backend connection settings
type ERPNextConfig struct {
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

// SupplyConfig selects where stock and supply data comes from
type SupplyConfig struct {
	// Source is "erpnext", "csv" or "memory"
	Source        string `yaml:"source" validate:"oneof=erpnext csv memory"`
	StockCSVPath  string `yaml:"stock_csv_path"`
	SupplyCSVPath string `yaml:"supply_csv_path"`
}

// RulesConfig holds default business rule values; per-request rules
// override these
type RulesConfig struct {
	NoWeekends           bool     `yaml:"no_weekends"`
	CutoffTime           string   `yaml:"cutoff_time"`
	LeadTimeBufferDays   int      `yaml:"lead_time_buffer_days" validate:"gte=0"`
	FulfillmentMode      string   `yaml:"fulfillment_mode"`
	NearSupplyWindowDays int      `yaml:"near_supply_window_days" validate:"gte=0"`
	WarehousePriority    []string `yaml:"warehouse_priority"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8001},
		ERPNext:  ERPNextConfig{BaseURL: "http://localhost:8080"},
		Supply:   SupplyConfig{Source: "memory"},
		LogLevel: "info",
		Rules: RulesConfig{
			NoWeekends:           true,
			CutoffTime:           "14:00",
			LeadTimeBufferDays:   1,
			FulfillmentMode:      "EARLIEST",
			NearSupplyWindowDays: 7,
		},
	}
}

// Load reads configuration from a YAML file, applies environment
// overrides and validates the result. An empty path loads defaults
// plus environment overrides only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables. Secrets
// normally arrive this way rather than through the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("OTP_ERPNEXT_BASE_URL"); v != "" {
		c.ERPNext.BaseURL = v
	}
	if v := os.Getenv("OTP_ERPNEXT_API_KEY"); v != "" {
		c.ERPNext.APIKey = v
	}
	if v := os.Getenv("OTP_ERPNEXT_API_SECRET"); v != "" {
		c.ERPNext.APISecret = v
	}
	if v := os.Getenv("OTP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("OTP_SUPPLY_SOURCE"); v != "" {
		c.Supply.Source = v
	}
	if v := os.Getenv("OTP_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks structural constraints and the rule values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.BusinessRules(); err != nil {
		return fmt.Errorf("invalid rules configuration: %w", err)
	}
	if c.Supply.Source == "csv" && (c.Supply.StockCSVPath == "" || c.Supply.SupplyCSVPath == "") {
		return fmt.Errorf("csv supply source requires stock_csv_path and supply_csv_path")
	}
	return nil
}

// BusinessRules converts the configured defaults into domain rules
func (c *Config) BusinessRules() (entities.BusinessRules, error) {
	rules := entities.DefaultBusinessRules()
	rules.SkipWeekends = c.Rules.NoWeekends
	rules.LeadTimeBufferDays = c.Rules.LeadTimeBufferDays

	if c.Rules.CutoffTime != "" {
		cutoff, err := entities.ParseCutoffTime(c.Rules.CutoffTime)
		if err != nil {
			return rules, err
		}
		rules.Cutoff = cutoff
	}
	if c.Rules.FulfillmentMode != "" {
		mode, err := entities.ParseFulfillmentMode(c.Rules.FulfillmentMode)
		if err != nil {
			return rules, err
		}
		rules.Mode = mode
	}
	if c.Rules.NearSupplyWindowDays > 0 {
		rules.NearSupplyWindowDays = c.Rules.NearSupplyWindowDays
	}
	for _, wh := range c.Rules.WarehousePriority {
		rules.WarehousePriority = append(rules.WarehousePriority, entities.Warehouse(wh))
	}
	return rules, nil
}
