package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MARKSYNC_CONFIG_FILE", "")

	cfg := Load()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %v, want :8080", cfg.ListenAddr)
	}
	if cfg.OwnerHeader != "X-Owner-ID" {
		t.Errorf("OwnerHeader = %v, want X-Owner-ID", cfg.OwnerHeader)
	}
	if cfg.MaxChanges != 1000 {
		t.Errorf("MaxChanges = %v, want 1000", cfg.MaxChanges)
	}
	if cfg.RedisEnabled {
		t.Error("RedisEnabled should default to false")
	}
	if cfg.MaintenanceInterval != 6*time.Hour {
		t.Errorf("MaintenanceInterval = %v, want 6h", cfg.MaintenanceInterval)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marksync.yaml")
	content := `
listen_addr: ":9090"
database_path: /tmp/file.db
max_changes: 50
maintenance_interval: 30m
redis_enabled: true
redis_addr: redis:6379
redis_dial_timeout: 7s
allowed_cidrs:
  - 10.0.0.0/8
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("MARKSYNC_CONFIG_FILE", path)
	t.Setenv("MARKSYNC_MAX_CHANGES", "75")

	cfg := Load()

	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %v, want :9090", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "/tmp/file.db" {
		t.Errorf("DatabasePath = %v, want /tmp/file.db", cfg.DatabasePath)
	}
	if cfg.MaxChanges != 75 {
		t.Errorf("MaxChanges = %v, want 75 (env wins over file)", cfg.MaxChanges)
	}
	if !cfg.RedisEnabled || cfg.RedisAddr != "redis:6379" {
		t.Errorf("redis = %v %v, want true redis:6379", cfg.RedisEnabled, cfg.RedisAddr)
	}
	if cfg.MaintenanceInterval != 30*time.Minute {
		t.Errorf("MaintenanceInterval = %v, want 30m", cfg.MaintenanceInterval)
	}
	if cfg.RedisDT != 7*time.Second {
		t.Errorf("RedisDT = %v, want 7s", cfg.RedisDT)
	}
	if cfg.RedisRT != 3*time.Second {
		t.Errorf("RedisRT = %v, want default 3s", cfg.RedisRT)
	}
	if !reflect.DeepEqual(cfg.AllowedCIDRS, []string{"10.0.0.0/8"}) {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
}

func TestLoad_PanicsOnInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing file", map[string]string{"MARKSYNC_CONFIG_FILE": "/does/not/exist.yaml"}},
		{"zero max changes", map[string]string{"MARKSYNC_MAX_CHANGES": "0"}},
		{"negative maintenance interval", map[string]string{"MARKSYNC_MAINTENANCE_INTERVAL": "-1m"}},
		{"redis password required", map[string]string{
			"MARKSYNC_REDIS_ENABLED":           "true",
			"MARKSYNC_REDIS_PASSWORD_REQUIRED": "true",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MARKSYNC_CONFIG_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked")
				}
			}()
			Load()
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{`"10.0.0.0/8", '127.0.0.1'`, []string{"10.0.0.0/8", "127.0.0.1"}},
	}

	for _, tt := range tests {
		got := splitAndTrim(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitAndTrim(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}
