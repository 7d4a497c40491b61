package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"trends-dashboard/pkg/api"
	"trends-dashboard/pkg/dashboard"
	"trends-dashboard/pkg/render"
	"trends-dashboard/pkg/trends"
	"trends-dashboard/pkg/wordcloud"
)

const envPrefix = "TRENDS"

type manager struct {
	mu         sync.RWMutex
	config     *Config
	viper      *viper.Viper
	configPath string
}

func NewManager() Manager {
	return &manager{
		viper: viper.New(),
	}
}

// Load reads configPath (optional: an empty path uses defaults and the
// environment only) and validates the result.
func (m *manager) Load(configPath string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.configPath = configPath
	m.setupViper(configPath)

	if configPath != "" {
		if err := m.viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	config, err := m.decode()
	if err != nil {
		return nil, err
	}
	m.config = config
	return config, nil
}

func (m *manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config == nil {
		return fmt.Errorf("config not loaded")
	}

	if m.configPath != "" {
		if err := m.viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to reload config: %w", err)
		}
	}

	config, err := m.decode()
	if err != nil {
		return err
	}
	m.config = config
	return nil
}

func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) decode() (*Config, error) {
	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// comma-separated env values arrive as one string
	config.Trends.DefaultTerms = splitTerms(config.Trends.DefaultTerms)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func (m *manager) setupViper(configPath string) {
	if configPath != "" {
		m.viper.SetConfigFile(configPath)
	}

	m.viper.SetEnvPrefix(envPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	setDefaults(m.viper)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.read_timeout", "30s")
	// a fully rate-limited submission waits (attempts-1) * delay per geography
	v.SetDefault("server.write_timeout", "20m")
	v.SetDefault("server.shutdown_timeout", "10s")

	conn := api.DefaultConnectionConfig()
	v.SetDefault("trends.client.base_url", api.DefaultBaseURL)
	v.SetDefault("trends.client.hl", api.DefaultHostLang)
	v.SetDefault("trends.client.tz", api.DefaultTZOffset)
	v.SetDefault("trends.client.user_agent", api.DefaultUserAgent)
	v.SetDefault("trends.client.connection.max_conns_per_host", conn.MaxConnsPerHost)
	v.SetDefault("trends.client.connection.max_idle_conn_duration", conn.MaxIdleConnDuration)
	v.SetDefault("trends.client.connection.read_timeout", conn.ReadTimeout)
	v.SetDefault("trends.client.connection.write_timeout", conn.WriteTimeout)
	v.SetDefault("trends.client.connection.request_timeout", conn.RequestTimeout)
	v.SetDefault("trends.timeframe", dashboard.DefaultTimeframe)
	v.SetDefault("trends.default_terms", []string{})
	v.SetDefault("trends.geos", []map[string]interface{}{
		{"code": "US", "name": "United States"},
		{"code": "US-CA", "name": "California"},
		{"code": "US-NY", "name": "New York"},
	})

	v.SetDefault("retry.max_attempts", trends.DefaultMaxAttempts)
	v.SetDefault("retry.delay", trends.DefaultRetryDelay)

	v.SetDefault("render.wordcloud.width", wordcloud.DefaultWidth)
	v.SetDefault("render.wordcloud.height", wordcloud.DefaultHeight)
	v.SetDefault("render.wordcloud.max_words", wordcloud.DefaultMaxWords)
	v.SetDefault("render.wordcloud.background", wordcloud.DefaultBackground)
	v.SetDefault("render.chart.width", 900)
	v.SetDefault("render.chart.height", 450)
	v.SetDefault("render.rising_limit", render.DefaultRisingLimit)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if len(config.Trends.Geos) == 0 {
		return fmt.Errorf("at least one geo must be configured")
	}

	if strings.TrimSpace(config.Trends.Timeframe) == "" {
		return fmt.Errorf("timeframe cannot be empty")
	}

	if config.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}

	if config.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay cannot be negative")
	}

	if config.Render.RisingLimit < 0 {
		return fmt.Errorf("render.rising_limit cannot be negative")
	}

	return nil
}

func splitTerms(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
