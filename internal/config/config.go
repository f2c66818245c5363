package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr      string        `yaml:"listen_addr"`      // ex: ":8080"
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // ex: 10s
	RequestTimeout  time.Duration `yaml:"request_timeout"`  // per-request deadline

	LogLevel  string `yaml:"log_level"`  // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"pretty_log"` // true => zap dev (color), false => zap prod (JSON)

	DatabasePath        string        `yaml:"database_path"`        // SQLite file
	MaintenanceInterval time.Duration `yaml:"maintenance_interval"` // WAL checkpoint + optimize period

	// Sync
	OwnerHeader  string `yaml:"owner_header"`   // header set by the upstream auth layer
	MaxChanges   int    `yaml:"max_changes"`    // max client changes per sync call
	MaxBodyBytes int64  `yaml:"max_body_bytes"` // max sync request body size

	// Redis (real-time notifications)
	RedisEnabled          bool          `yaml:"redis_enabled"`           // false => events are only logged
	RedisAddr             string        `yaml:"redis_addr"`              // ex: "localhost:6379"
	RedisUser             string        `yaml:"redis_username"`          // optional
	RedisPassword         string        `yaml:"redis_password"`          // optional
	RedisPasswordRequired bool          `yaml:"redis_password_required"` // true => require password
	RedisDB               int           `yaml:"redis_db"`                // Redis DB number
	RedisDT               time.Duration `yaml:"redis_dial_timeout"`      // ex: 5s
	RedisRT               time.Duration `yaml:"redis_read_timeout"`      // ex: 3s
	RedisWT               time.Duration `yaml:"redis_write_timeout"`     // ex: 3s
	RedisMaxWait          time.Duration `yaml:"redis_max_wait"`          // max wait between retries
	RedisPingTimeout      time.Duration `yaml:"redis_ping_timeout"`      // timeout for each ping attempt
	RedisPoolSize         int           `yaml:"redis_pool_size"`
	RedisConnectTimeout   time.Duration `yaml:"redis_connect_timeout"` // total time to retry connecting
	RedisRetryInterval    time.Duration `yaml:"redis_retry_interval"`  // initial wait, grows exponentially
	RedisWarnThreshold    int           `yaml:"redis_warn_threshold"`  // warn after this many attempts
	EventChannelPrefix    string        `yaml:"event_channel_prefix"`  // channel = <prefix>:<ownerId>

	// Access restrictions
	AllowedHosts   []string `yaml:"allowed_hosts"`    // optional, restrict the sync API to these Host headers
	AllowedCIDRS   []string `yaml:"allowed_cidrs"`    // optional, restrict infra endpoints (e.g. "10.0.0.0/8")
	AllowedOrigins []string `yaml:"allowed_origins"`  // CORS origins for web and extension clients
	TrustProxy     bool     `yaml:"trust_proxy"`      // true => trust X-Forwarded-For headers
	RateLimitBurst int      `yaml:"rate_limit_burst"` // requests allowed at once per client IP
	RateLimitRPM   int      `yaml:"rate_limit_rpm"`   // refill per client IP per minute
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ListenAddr:      ":8080",
		ShutdownTimeout: 10 * time.Second,
		RequestTimeout:  30 * time.Second,

		LogLevel:  "info",
		PrettyLog: false,

		DatabasePath:        "/data/marksync.db",
		MaintenanceInterval: 6 * time.Hour,

		OwnerHeader:  "X-Owner-ID",
		MaxChanges:   1000,
		MaxBodyBytes: 10 << 20,

		RedisEnabled:        false,
		RedisAddr:           "localhost:6379",
		RedisUser:           "default",
		RedisDT:             5 * time.Second,
		RedisRT:             3 * time.Second,
		RedisWT:             3 * time.Second,
		RedisMaxWait:        10 * time.Second,
		RedisPingTimeout:    5 * time.Second,
		RedisPoolSize:       10,
		RedisConnectTimeout: 30 * time.Second,
		RedisRetryInterval:  2 * time.Second,
		RedisWarnThreshold:  3,
		EventChannelPrefix:  "marksync:events",

		TrustProxy:     false,
		RateLimitBurst: 30,
		RateLimitRPM:   120,
	}
}

// Load builds the configuration: defaults, then the optional YAML file named
// by MARKSYNC_CONFIG_FILE, then MARKSYNC_* environment variables.
// It panics on invalid values, like the rest of the startup path.
func Load() *Config {
	cfg := Defaults()

	if path := getenv("MARKSYNC_CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			panic(fmt.Sprintf("❌ FATAL: %v", err))
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current value.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	// Server settings
	cfg.ListenAddr = getenv("MARKSYNC_LISTEN_ADDR", cfg.ListenAddr)
	cfg.ShutdownTimeout = mustDuration("MARKSYNC_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.RequestTimeout = mustDuration("MARKSYNC_REQUEST_TIMEOUT", cfg.RequestTimeout)

	// Logging
	cfg.LogLevel = getenv("MARKSYNC_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = mustBool("MARKSYNC_PRETTY_LOG", cfg.PrettyLog)

	// Storage
	cfg.DatabasePath = getenv("MARKSYNC_DATABASE_PATH", cfg.DatabasePath)
	cfg.MaintenanceInterval = mustDuration("MARKSYNC_MAINTENANCE_INTERVAL", cfg.MaintenanceInterval)

	// Sync
	cfg.OwnerHeader = getenv("MARKSYNC_OWNER_HEADER", cfg.OwnerHeader)
	cfg.MaxChanges = getenvInt("MARKSYNC_MAX_CHANGES", cfg.MaxChanges)
	cfg.MaxBodyBytes = int64(getenvInt("MARKSYNC_MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))

	// Redis settings
	cfg.RedisEnabled = mustBool("MARKSYNC_REDIS_ENABLED", cfg.RedisEnabled)
	cfg.RedisAddr = getenv("MARKSYNC_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisUser = getenv("MARKSYNC_REDIS_USERNAME", cfg.RedisUser)
	cfg.RedisPassword = getenv("MARKSYNC_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisPasswordRequired = mustBool("MARKSYNC_REDIS_PASSWORD_REQUIRED", cfg.RedisPasswordRequired)
	cfg.RedisDB = getenvInt("MARKSYNC_REDIS_DB", cfg.RedisDB)
	cfg.RedisDT = mustDuration("MARKSYNC_REDIS_DIAL_TIMEOUT", cfg.RedisDT)
	cfg.RedisRT = mustDuration("MARKSYNC_REDIS_READ_TIMEOUT", cfg.RedisRT)
	cfg.RedisWT = mustDuration("MARKSYNC_REDIS_WRITE_TIMEOUT", cfg.RedisWT)
	cfg.RedisMaxWait = mustDuration("MARKSYNC_REDIS_MAX_WAIT", cfg.RedisMaxWait)
	cfg.RedisPingTimeout = mustDuration("MARKSYNC_REDIS_PING_TIMEOUT", cfg.RedisPingTimeout)
	cfg.RedisPoolSize = getenvInt("MARKSYNC_REDIS_POOL_SIZE", cfg.RedisPoolSize)
	cfg.RedisConnectTimeout = mustDuration("MARKSYNC_REDIS_CONNECT_TIMEOUT", cfg.RedisConnectTimeout)
	cfg.RedisRetryInterval = mustDuration("MARKSYNC_REDIS_RETRY_INTERVAL", cfg.RedisRetryInterval)
	cfg.RedisWarnThreshold = getenvInt("MARKSYNC_REDIS_WARN_THRESHOLD", cfg.RedisWarnThreshold)
	cfg.EventChannelPrefix = getenv("MARKSYNC_EVENT_CHANNEL_PREFIX", cfg.EventChannelPrefix)

	// Access restrictions
	cfg.AllowedHosts = getenvSlice("MARKSYNC_ALLOWED_HOSTS", cfg.AllowedHosts)
	cfg.AllowedCIDRS = getenvSlice("MARKSYNC_ALLOWED_CIDRS", cfg.AllowedCIDRS)
	cfg.AllowedOrigins = getenvSlice("MARKSYNC_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.TrustProxy = mustBool("MARKSYNC_TRUST_PROXY", cfg.TrustProxy)
	cfg.RateLimitBurst = getenvInt("MARKSYNC_RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.RateLimitRPM = getenvInt("MARKSYNC_RATE_LIMIT_RPM", cfg.RateLimitRPM)
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("MARKSYNC_DATABASE_PATH is required")
	}
	if c.MaintenanceInterval <= 0 {
		return fmt.Errorf("MARKSYNC_MAINTENANCE_INTERVAL must be > 0, got %s", c.MaintenanceInterval)
	}
	if strings.TrimSpace(c.OwnerHeader) == "" {
		return fmt.Errorf("MARKSYNC_OWNER_HEADER cannot be empty")
	}
	if c.MaxChanges < 1 {
		return fmt.Errorf("MARKSYNC_MAX_CHANGES must be > 0, got %d", c.MaxChanges)
	}
	if c.RedisEnabled && c.RedisAddr == "" {
		return fmt.Errorf("MARKSYNC_REDIS_ADDR is required when MARKSYNC_REDIS_ENABLED=true")
	}
	if c.RedisEnabled && c.RedisPasswordRequired && c.RedisPassword == "" {
		return fmt.Errorf("MARKSYNC_REDIS_PASSWORD is required when MARKSYNC_REDIS_PASSWORD_REQUIRED=true")
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvSlice(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		return splitAndTrim(v)
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
