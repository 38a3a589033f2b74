// Package config содержит логику чтения конфигурации системы учёта заказов.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/mmeshcher/retail-orders-system/internal/validation"
)

// Config содержит параметры конфигурации системы учёта заказов.
type Config struct {
	DatabaseURI   string `env:"DATABASE_URI"`
	DatePivotYear int    `env:"DATE_PIVOT_YEAR"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных
// окружения; окружение имеет приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envDatabaseURI := cfg.DatabaseURI
	envDatePivotYear := cfg.DatePivotYear

	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.IntVar(&cfg.DatePivotYear, "p", validation.DefaultPivotYear,
		"pivot for two-digit years: below means 2000s, otherwise 1900s")

	flag.Parse()

	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envDatePivotYear != 0 {
		cfg.DatePivotYear = envDatePivotYear
	}

	if cfg.DatePivotYear < 0 || cfg.DatePivotYear > 100 {
		return nil, fmt.Errorf("date pivot year %d out of range [0,100]", cfg.DatePivotYear)
	}

	return cfg, nil
}
