package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/rekama"
	ConfigFileName    = "rekama.yml"
)

// Storage backends.
const (
	StorageFile     = "file"
	StorageDatabase = "database"
	StorageMemory   = "memory"
)

// ValidStorageBackends is the list of valid storage_backend values
var ValidStorageBackends = []string{StorageFile, StorageDatabase, StorageMemory}

// ValidLogFormats is the list of valid log_format values
var ValidLogFormats = []string{"text", "json"}

// Config holds all server configuration settings
type Config struct {
	// StorageBackend selects where snapshots are kept
	StorageBackend string `yaml:"storage_backend" json:"storage_backend"`

	// SnapshotPath is the snapshot file for the file backend
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`

	// DatabaseURL is used by the database backend and migrations
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// DataKey is a base64 AES-256 key; when set, snapshots are sealed
	DataKey string `yaml:"data_key" json:"data_key"`

	// BindAddress is the interface the HTTP server listens on
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// Port is the HTTP server port
	Port int `yaml:"port" json:"port"`

	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// TokenSecret signs session bearer tokens
	TokenSecret string `yaml:"token_secret" json:"token_secret"`

	// TokenTTL is the bearer token lifetime in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// SessionIdleTimeout ends idle sessions, in seconds; 0 disables expiry
	SessionIdleTimeout int `yaml:"session_idle_timeout" json:"session_idle_timeout"`

	// SyncInterval is the scheduled connector sync period in seconds; 0 disables it
	SyncInterval int `yaml:"sync_interval" json:"sync_interval"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is text or json
	LogFormat string `yaml:"log_format" json:"log_format"`

	// LogFile, when set, receives logs with rotation instead of stderr
	LogFile string `yaml:"log_file" json:"log_file"`

	// AuditSyslog mirrors audit entries as RFC5424 lines on stdout
	AuditSyslog bool `yaml:"audit_syslog" json:"audit_syslog"`

	// AuditDatabaseURL, when set, mirrors audit entries into audit_messages
	AuditDatabaseURL string `yaml:"audit_database_url" json:"audit_database_url"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		StorageBackend:     StorageFile,
		SnapshotPath:       "rekama.snapshot",
		BindAddress:        "127.0.0.1",
		Port:               8080,
		TrustedProxies:     []string{},
		TokenTTL:           8 * 60 * 60,
		SessionIdleTimeout: 15 * 60,
		SyncInterval:       0,
		LogLevel:           "info",
		LogFormat:          "text",
		sources:            make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("REKAMA_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig, data)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"storage_backend", "snapshot_path", "database_url", "data_key",
		"bind_address", "port", "trusted_proxies", "token_secret", "token_ttl",
		"session_idle_timeout", "sync_interval", "log_level", "log_format",
		"log_file", "audit_syslog", "audit_database_url",
	}
}

// applyFileConfig copies the values present in the file. raw is consulted
// for keys whose zero value is meaningful.
func (c *Config) applyFileConfig(file *Config, raw []byte) {
	set := func(name string) { c.sources[name] = "file" }

	if file.StorageBackend != "" {
		c.StorageBackend = file.StorageBackend
		set("storage_backend")
	}
	if file.SnapshotPath != "" {
		c.SnapshotPath = file.SnapshotPath
		set("snapshot_path")
	}
	if file.DatabaseURL != "" {
		c.DatabaseURL = file.DatabaseURL
		set("database_url")
	}
	if file.DataKey != "" {
		c.DataKey = file.DataKey
		set("data_key")
	}
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		set("bind_address")
	}
	if file.Port != 0 {
		c.Port = file.Port
		set("port")
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		set("trusted_proxies")
	}
	if file.TokenSecret != "" {
		c.TokenSecret = file.TokenSecret
		set("token_secret")
	}
	if file.TokenTTL != 0 {
		c.TokenTTL = file.TokenTTL
		set("token_ttl")
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
		set("log_level")
	}
	if file.LogFormat != "" {
		c.LogFormat = file.LogFormat
		set("log_format")
	}
	if file.LogFile != "" {
		c.LogFile = file.LogFile
		set("log_file")
	}
	if file.AuditDatabaseURL != "" {
		c.AuditDatabaseURL = file.AuditDatabaseURL
		set("audit_database_url")
	}

	var present map[string]any
	if err := yaml.Unmarshal(raw, &present); err != nil {
		return
	}
	if _, ok := present["session_idle_timeout"]; ok {
		c.SessionIdleTimeout = file.SessionIdleTimeout
		set("session_idle_timeout")
	}
	if _, ok := present["sync_interval"]; ok {
		c.SyncInterval = file.SyncInterval
		set("sync_interval")
	}
	if _, ok := present["audit_syslog"]; ok {
		c.AuditSyslog = file.AuditSyslog
		set("audit_syslog")
	}
}

func (c *Config) applyEnvConfig() error {
	setString := func(env, name string, dst *string) {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			*dst = val
			c.sources[name] = "environment"
		}
	}
	setInt := func(env, name string, dst *int) error {
		val, ok := os.LookupEnv(env)
		if !ok || val == "" {
			return nil
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", env, val, err)
		}
		*dst = i
		c.sources[name] = "environment"
		return nil
	}

	setString("REKAMA_STORAGE_BACKEND", "storage_backend", &c.StorageBackend)
	setString("REKAMA_SNAPSHOT_PATH", "snapshot_path", &c.SnapshotPath)
	setString("REKAMA_DATA_KEY", "data_key", &c.DataKey)
	setString("REKAMA_BIND_ADDRESS", "bind_address", &c.BindAddress)
	setString("REKAMA_TOKEN_SECRET", "token_secret", &c.TokenSecret)
	setString("REKAMA_LOG_LEVEL", "log_level", &c.LogLevel)
	setString("REKAMA_LOG_FORMAT", "log_format", &c.LogFormat)
	setString("REKAMA_LOG_FILE", "log_file", &c.LogFile)
	setString("REKAMA_AUDIT_DATABASE_URL", "audit_database_url", &c.AuditDatabaseURL)

	// DATABASE_URL is honoured for compatibility with migrate tooling.
	setString("DATABASE_URL", "database_url", &c.DatabaseURL)
	setString("REKAMA_DATABASE_URL", "database_url", &c.DatabaseURL)

	if val := os.Getenv("REKAMA_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("REKAMA_AUDIT_SYSLOG"); val != "" {
		c.AuditSyslog = val == "true" || val == "1"
		c.sources["audit_syslog"] = "environment"
	}

	// PORT follows the convention of container platforms.
	for _, env := range []string{"PORT", "REKAMA_PORT"} {
		if err := setInt(env, "port", &c.Port); err != nil {
			return err
		}
	}
	if err := setInt("REKAMA_TOKEN_TTL", "token_ttl", &c.TokenTTL); err != nil {
		return err
	}
	if err := setInt("REKAMA_SESSION_IDLE_TIMEOUT", "session_idle_timeout", &c.SessionIdleTimeout); err != nil {
		return err
	}
	return setInt("REKAMA_SYNC_INTERVAL", "sync_interval", &c.SyncInterval)
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// ListenAddress joins bind address and port.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.Port))
}

func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleTimeout) * time.Second
}

func (c *Config) SyncPeriod() time.Duration {
	return time.Duration(c.SyncInterval) * time.Second
}

// DataKeyBytes decodes DataKey. It returns nil when no key is configured.
func (c *Config) DataKeyBytes() ([]byte, error) {
	if c.DataKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.DataKey)
	if err != nil {
		return nil, fmt.Errorf("invalid data_key: %w", err)
	}
	return key, nil
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *Config) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !contains(ValidStorageBackends, c.StorageBackend) {
		return fmt.Errorf("invalid storage_backend: %s", c.StorageBackend)
	}
	if c.StorageBackend == StorageFile && c.SnapshotPath == "" {
		return fmt.Errorf("snapshot_path is required for the file storage backend")
	}
	if c.StorageBackend == StorageDatabase && c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required for the database storage backend")
	}
	if key, err := c.DataKeyBytes(); err != nil {
		return err
	} else if key != nil && len(key) != 32 {
		return fmt.Errorf("invalid data_key: want 32 bytes, got %d", len(key))
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.SessionIdleTimeout < 0 {
		return fmt.Errorf("invalid session_idle_timeout: %d", c.SessionIdleTimeout)
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("invalid sync_interval: %d", c.SyncInterval)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token_ttl: %d", c.TokenTTL)
	}
	if !contains(ValidLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}
	return nil
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets are masked.
func (c *Config) Attributes() []Attribute {
	attr := func(name, value string) Attribute {
		return Attribute{Name: name, Value: value, Source: c.Source(name)}
	}
	return []Attribute{
		attr("storage_backend", c.StorageBackend),
		attr("snapshot_path", c.SnapshotPath),
		attr("database_url", redactURL(c.DatabaseURL)),
		attr("data_key", mask(c.DataKey)),
		attr("bind_address", c.BindAddress),
		attr("port", strconv.Itoa(c.Port)),
		attr("trusted_proxies", strings.Join(c.TrustedProxies, ",")),
		attr("token_secret", mask(c.TokenSecret)),
		attr("token_ttl", strconv.Itoa(c.TokenTTL)),
		attr("session_idle_timeout", strconv.Itoa(c.SessionIdleTimeout)),
		attr("sync_interval", strconv.Itoa(c.SyncInterval)),
		attr("log_level", c.LogLevel),
		attr("log_format", c.LogFormat),
		attr("log_file", c.LogFile),
		attr("audit_syslog", strconv.FormatBool(c.AuditSyslog)),
		attr("audit_database_url", redactURL(c.AuditDatabaseURL)),
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
