package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/angas/agilewatch/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If not assigned, the server will serve embedded files.
	// If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
}

type AppConfigTariff struct {
	BaseUrl     string        `mapstructure:"base_url"`     // Octopus REST API root, e.g. https://api.octopus.energy/v1
	ProductCode string        `mapstructure:"product_code"` // e.g. AGILE-24-04-03
	TariffCode  string        `mapstructure:"tariff_code"`  // e.g. E-1R-AGILE-24-04-03-D, the last letter is the region
	PageSize    int           `mapstructure:"page_size"`    // Number of slots requested, only the first page is ever read
	Timeout     time.Duration `mapstructure:"timeout"`
	RunAt       string        `mapstructure:"run_at"` // Cron expression for refetching prices
	// Providers in the order they are tried: "rest", "sdk"
	Providers []string `mapstructure:"providers"`
}

type AppConfigRefresh struct {
	// How often the current slot is re-evaluated
	Interval time.Duration `mapstructure:"interval"`
}

type AppConfigDatabase struct {
	// Log database, logging to database is disabled when empty
	Path string
}

type AppConfigGui struct {
	// Timezone for displaying times in the GUI, default: Europe/London
	Timezone *string `mapstructure:"timezone"`
	// Reference rate drawn on the chart (standard variable tariff) in p/kWh
	SvtRate float64 `mapstructure:"svt_rate"`
}

func (g AppConfigGui) GetTimezone() string {
	if g.Timezone == nil {
		return "Europe/London"
	}
	return *g.Timezone
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for database console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api      AppConfigApi
	Tariff   AppConfigTariff   `mapstructure:"tariff"`
	Refresh  AppConfigRefresh  `mapstructure:"refresh"`
	Database AppConfigDatabase `mapstructure:"database"`
	Gui      AppConfigGui      `mapstructure:"gui"`
	Logging  AppConfigLogging  `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.address", "")
	v.SetDefault("api.port", 8080)
	v.SetDefault("tariff.base_url", "https://api.octopus.energy/v1")
	v.SetDefault("tariff.product_code", "AGILE-24-04-03")
	v.SetDefault("tariff.tariff_code", "E-1R-AGILE-24-04-03-D")
	v.SetDefault("tariff.page_size", 96)
	v.SetDefault("tariff.timeout", 10*time.Second)
	v.SetDefault("tariff.run_at", "*/30 * * * *")
	v.SetDefault("tariff.providers", []string{"rest", "sdk"})
	v.SetDefault("refresh.interval", 10*time.Second)
	v.SetDefault("database.path", "")
	v.SetDefault("gui.svt_rate", 25.76)
}

// Load reads the config file at path, or config/config.yaml when path is empty.
// A missing default file is not an error, every key has a default.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *AppConfig) validate() error {
	if c.Tariff.PageSize < 1 {
		return fmt.Errorf("tariff.page_size must be positive, got %d", c.Tariff.PageSize)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive, got %s", c.Refresh.Interval)
	}
	if c.Tariff.ProductCode == "" || c.Tariff.TariffCode == "" {
		return errors.New("tariff.product_code and tariff.tariff_code are required")
	}
	if len(c.Tariff.Providers) == 0 {
		return errors.New("tariff.providers must name at least one provider")
	}
	return nil
}
