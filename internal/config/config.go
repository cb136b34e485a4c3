package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"fabric-stock/internal/core"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration shared by the server and the CLI.
type Config struct {
	DatabaseURL    string
	ServerPort     string
	AllowedOrigins []string
	JWTSecret      string
	OpenAIAPIKey   string

	Policy core.StockPolicy
	// ColourOrder is the stock-health colour order used when a request names none.
	ColourOrder core.ColourOrder
}

// PolicyFile is the YAML layout of STOCK_POLICY_FILE. Absent keys keep their defaults.
type PolicyFile struct {
	WindowDays            *int    `yaml:"window_days"`
	DefaultLeadTimeDays   *int    `yaml:"default_lead_time_days"`
	SafetyFactor          *string `yaml:"safety_factor"`
	SoonMultiplier        *string `yaml:"soon_multiplier"`
	ForecastWeeks         *int    `yaml:"forecast_weeks"`
	RecentWeeks           *int    `yaml:"recent_weeks"`
	DefaultWastagePercent *string `yaml:"default_wastage_percent"`
	ColourOrder           *string `yaml:"colour_order"`
}

// Load reads .env (if present), the optional policy file and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ServerPort:   os.Getenv("SERVER_PORT"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		Policy:       core.DefaultStockPolicy(),
		ColourOrder:  core.ColourOrderName,
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	// An empty ALLOWED_ORIGINS leaves CORS disabled.
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if path := os.Getenv("STOCK_POLICY_FILE"); path != "" {
		pf, err := LoadPolicyFile(path)
		if err != nil {
			return nil, err
		}
		if err := pf.apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid policy file %s: %w", path, err)
		}
	}

	if v := os.Getenv("DEFAULT_LEAD_TIME_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_LEAD_TIME_DAYS %q: %w", v, err)
		}
		cfg.Policy.DefaultLeadTimeDays = n
	}
	if v := os.Getenv("SAFETY_FACTOR"); v != "" {
		f, err := positiveDecimal("SAFETY_FACTOR", v)
		if err != nil {
			return nil, err
		}
		cfg.Policy.SafetyFactor = f
	}
	return cfg, nil
}

// LoadPolicyFile reads and parses a YAML stock policy file.
func LoadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}
	var pf PolicyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse policy YAML: %w", err)
	}
	return &pf, nil
}

func (pf *PolicyFile) apply(cfg *Config) error {
	p := &cfg.Policy
	if pf.WindowDays != nil && *pf.WindowDays != core.ConsumptionWindowDays {
		return fmt.Errorf("window_days is fixed at %d, got %d", core.ConsumptionWindowDays, *pf.WindowDays)
	}
	if pf.DefaultLeadTimeDays != nil {
		p.DefaultLeadTimeDays = *pf.DefaultLeadTimeDays
	}
	if pf.SafetyFactor != nil {
		f, err := positiveDecimal("safety_factor", *pf.SafetyFactor)
		if err != nil {
			return err
		}
		p.SafetyFactor = f
	}
	if pf.SoonMultiplier != nil {
		m, err := positiveDecimal("soon_multiplier", *pf.SoonMultiplier)
		if err != nil {
			return err
		}
		if m.LessThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("soon_multiplier must be at least 1, got %s", m)
		}
		p.SoonMultiplier = m
	}
	if pf.ForecastWeeks != nil {
		if *pf.ForecastWeeks <= 0 {
			return fmt.Errorf("forecast_weeks must be positive, got %d", *pf.ForecastWeeks)
		}
		p.ForecastWeeks = *pf.ForecastWeeks
	}
	if pf.RecentWeeks != nil {
		if *pf.RecentWeeks <= 0 {
			return fmt.Errorf("recent_weeks must be positive, got %d", *pf.RecentWeeks)
		}
		p.RecentWeeks = *pf.RecentWeeks
	}
	if pf.DefaultWastagePercent != nil {
		w, err := decimal.NewFromString(*pf.DefaultWastagePercent)
		if err != nil || w.IsNegative() {
			return fmt.Errorf("default_wastage_percent must be a non-negative number, got %q", *pf.DefaultWastagePercent)
		}
		p.DefaultWastagePercent = w
	}
	if pf.ColourOrder != nil {
		o, err := core.ParseColourOrder(*pf.ColourOrder)
		if err != nil {
			return err
		}
		cfg.ColourOrder = o
	}
	return nil
}

func positiveDecimal(name, s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be positive, got %s", name, v)
	}
	return v, nil
}
