package api

import (
	"time"

	"github.com/valyala/fasthttp"

	"trends-dashboard/pkg/logger"
)

// ConnectionConfig holds configuration for upstream connections
type ConnectionConfig struct {
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	MaxIdleConnDuration time.Duration `mapstructure:"max_idle_conn_duration"`
	ReadTimeout         time.Duration `mapstructure:"read_timeout"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
}

// DefaultConnectionConfig returns the settings used for the trends endpoint.
// Traffic is one interaction at a time, so the pool stays small.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxConnsPerHost:     8,
		MaxIdleConnDuration: 90 * time.Second,
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        10 * time.Second,
		RequestTimeout:      30 * time.Second,
	}
}

// ConnectionManager owns the fasthttp client used for upstream calls
type ConnectionManager struct {
	config ConnectionConfig
	client *fasthttp.Client
	log    *logger.Logger
}

// NewConnectionManager creates a new connection manager with specified config
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	defaults := DefaultConnectionConfig()
	if config.MaxConnsPerHost <= 0 {
		config.MaxConnsPerHost = defaults.MaxConnsPerHost
	}
	if config.MaxIdleConnDuration <= 0 {
		config.MaxIdleConnDuration = defaults.MaxIdleConnDuration
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}

	client := &fasthttp.Client{
		Name:                          "trends-dashboard",
		MaxConnsPerHost:               config.MaxConnsPerHost,
		MaxIdleConnDuration:           config.MaxIdleConnDuration,
		ReadTimeout:                   config.ReadTimeout,
		WriteTimeout:                  config.WriteTimeout,
		NoDefaultUserAgentHeader:      true,
		DisableHeaderNamesNormalizing: false,
	}

	return &ConnectionManager{
		config: config,
		client: client,
		log:    logger.GetLogger().WithField("component", "connection_manager"),
	}
}

// GetFastHTTPClient returns the managed client
func (cm *ConnectionManager) GetFastHTTPClient() *fasthttp.Client {
	return cm.client
}

// RequestTimeout returns the per-request timeout applied when the caller's
// context carries no deadline.
func (cm *ConnectionManager) RequestTimeout() time.Duration {
	return cm.config.RequestTimeout
}

// Close closes all idle connections
func (cm *ConnectionManager) Close() {
	cm.log.Debug("Closing connection manager")
	cm.client.CloseIdleConnections()
}
