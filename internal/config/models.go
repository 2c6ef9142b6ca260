package config

import (
	"fmt"
	"time"
)

// APIConfig represents the configuration of the classification API client
type APIConfig struct {
	BaseURL            string
	Timeout            time.Duration
	SlowBackendMessage string
}

// ServerConfig represents the configuration of the web front end
type ServerConfig struct {
	ListenAddress string
	Mode          string
}

// SessionConfig represents the configuration of the session store
type SessionConfig struct {
	Store            string
	TTL              time.Duration
	CleanupFrequency time.Duration
	CookieName       string
	SQLitePath       string
	MySQLDSN         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
}

// HeadersConfig names the headers added to classified mail
type HeadersConfig struct {
	Category   string
	Confidence string
	Method     string
	Error      string
}

// RelayConfig represents the next hop of the mail intake
type RelayConfig struct {
	Enabled bool
	Address string
	Port    int
}

// IntakeConfig represents the configuration of the mail intake
type IntakeConfig struct {
	Enabled       bool
	ListenAddress string
	Domain        string
	MaxBodySize   int64
	Relay         RelayConfig
	Headers       HeadersConfig
	SkipDomains   []string
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level string
	JSON  bool
}

// GetAPI returns the classification API configuration
func (c *Config) GetAPI() APIConfig {
	return APIConfig{
		BaseURL:            c.GetString("api.base_url"),
		Timeout:            time.Duration(c.GetInt64("api.timeout_ms")) * time.Millisecond,
		SlowBackendMessage: c.GetString("api.slow_backend_message"),
	}
}

// GetServer returns the web server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		Mode:          c.GetString("server.mode"),
	}
}

// GetSession returns the session store configuration
func (c *Config) GetSession() (SessionConfig, error) {
	ttl, err := c.GetDuration("session.ttl")
	if err != nil {
		return SessionConfig{}, fmt.Errorf("invalid session TTL: %w", err)
	}
	cleanupFreq, err := c.GetDuration("session.cleanup_frequency")
	if err != nil {
		return SessionConfig{}, fmt.Errorf("invalid session cleanup frequency: %w", err)
	}

	return SessionConfig{
		Store:            c.GetString("session.store"),
		TTL:              ttl,
		CleanupFrequency: cleanupFreq,
		CookieName:       c.GetString("session.cookie_name"),
		SQLitePath:       c.GetString("session.sqlite_path"),
		MySQLDSN:         c.GetString("session.mysql_dsn"),
		RedisAddr:        c.GetString("session.redis_addr"),
		RedisPassword:    c.GetString("session.redis_password"),
		RedisDB:          c.GetInt("session.redis_db"),
	}, nil
}

// GetIntake returns the mail intake configuration
func (c *Config) GetIntake() IntakeConfig {
	return IntakeConfig{
		Enabled:       c.GetBool("intake.enabled"),
		ListenAddress: c.GetString("intake.listen_address"),
		Domain:        c.GetString("intake.domain"),
		MaxBodySize:   c.GetInt64("intake.max_body_size"),
		Relay: RelayConfig{
			Enabled: c.GetBool("intake.relay.enabled"),
			Address: c.GetString("intake.relay.address"),
			Port:    c.GetInt("intake.relay.port"),
		},
		Headers: HeadersConfig{
			Category:   c.GetString("intake.headers.category"),
			Confidence: c.GetString("intake.headers.confidence"),
			Method:     c.GetString("intake.headers.method"),
			Error:      c.GetString("intake.headers.error"),
		},
		SkipDomains: c.GetStringSlice("intake.skip_domains"),
	}
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level: c.GetString("logging.level"),
		JSON:  c.GetString("logging.format") == "json",
	}
}
