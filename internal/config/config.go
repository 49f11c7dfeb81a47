// Package config содержит логику чтения конфигурации сервиса синхронизации CRM.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config содержит параметры конфигурации сервиса синхронизации CRM.
type Config struct {
	RunAddress       string  `env:"RUN_ADDRESS"`
	PlatformBaseURL  string  `env:"PLATFORM_BASE_URL"`
	PlatformAPIToken string  `env:"PLATFORM_API_TOKEN"`
	DefaultPlan      string  `env:"DEFAULT_PLAN"`
	LedgerFile       string  `env:"LEDGER_FILE"`
	RevenueShare     float64 `env:"REVENUE_SHARE"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами; значения по умолчанию
// позволяют запустить сервис без какой-либо настройки.
func Parse() (*Config, error) {
	// Локальный .env подхватывается, если он есть; его отсутствие не ошибка.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envBaseURL := cfg.PlatformBaseURL
	envToken := cfg.PlatformAPIToken
	envPlan := cfg.DefaultPlan
	envLedger := cfg.LedgerFile
	envShare := cfg.RevenueShare

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.PlatformBaseURL, "p", "https://api.myplatform.io", "base URL of the user platform API")
	flag.StringVar(&cfg.PlatformAPIToken, "t", "demo_token", "bearer token for the user platform API")
	flag.StringVar(&cfg.DefaultPlan, "n", "free", "default subscription plan")
	flag.StringVar(&cfg.LedgerFile, "l", "sales.csv", "path to the purchase ledger file")
	flag.Float64Var(&cfg.RevenueShare, "s", 0.10, "revenue share fraction for reports")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envBaseURL != "" {
		cfg.PlatformBaseURL = envBaseURL
	}
	if envToken != "" {
		cfg.PlatformAPIToken = envToken
	}
	if envPlan != "" {
		cfg.DefaultPlan = envPlan
	}
	if envLedger != "" {
		cfg.LedgerFile = envLedger
	}
	if envShare != 0 {
		cfg.RevenueShare = envShare
	}

	return cfg, nil
}
