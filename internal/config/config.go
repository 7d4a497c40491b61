package config

import (
	"time"

	"trends-dashboard/pkg/api"
	"trends-dashboard/pkg/logger"
	"trends-dashboard/pkg/render"
	"trends-dashboard/pkg/trends"
	"trends-dashboard/pkg/wordcloud"
)

type Config struct {
	Server ServerConfig       `mapstructure:"server"`
	Trends TrendsConfig       `mapstructure:"trends"`
	Retry  trends.RetryPolicy `mapstructure:"retry"`
	Render RenderConfig       `mapstructure:"render"`
	Logger logger.Config      `mapstructure:"logger"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type TrendsConfig struct {
	Client       api.ClientConfig  `mapstructure:"client"`
	Timeframe    string            `mapstructure:"timeframe"`
	DefaultTerms []string          `mapstructure:"default_terms"`
	Geos         []trends.GeoScope `mapstructure:"geos"`
}

type RenderConfig struct {
	WordCloud   wordcloud.Options   `mapstructure:"wordcloud"`
	Chart       render.ChartOptions `mapstructure:"chart"`
	RisingLimit int                 `mapstructure:"rising_limit"`
}

type Manager interface {
	Load(configPath string) (*Config, error)
	Reload() error
	GetConfig() *Config
}
