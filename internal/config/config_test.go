package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Storage.Driver != StorageRedis {
		t.Errorf("Storage.Driver = %q, want redis", cfg.Storage.Driver)
	}
	if cfg.Storage.Timeout != 2*time.Second {
		t.Errorf("Storage.Timeout = %s, want 2s", cfg.Storage.Timeout)
	}
	if cfg.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("HTTP.ShutdownTimeout = %s, want 10s", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.HTTP.APIKey != "" {
		t.Errorf("HTTP.APIKey should default to empty")
	}
	if cfg.Maps.FallbackSpeedKmh != 25 {
		t.Errorf("Maps.FallbackSpeedKmh = %v, want 25", cfg.Maps.FallbackSpeedKmh)
	}
	if cfg.IsProduction() {
		t.Errorf("default env should not be production")
	}
	if cfg.NeedsPostgres() {
		t.Errorf("default config should not need postgres")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COMMUTE_STORAGE_DRIVER", "postgres")
	t.Setenv("COMMUTE_STORAGE_TIMEOUT", "500ms")
	t.Setenv("COMMUTE_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Driver != StoragePostgres {
		t.Errorf("Storage.Driver = %q, want postgres", cfg.Storage.Driver)
	}
	if cfg.Storage.Timeout != 500*time.Millisecond {
		t.Errorf("Storage.Timeout = %s, want 500ms", cfg.Storage.Timeout)
	}
	if !cfg.IsProduction() || !cfg.NeedsPostgres() {
		t.Errorf("expected production config backed by postgres")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown driver", "COMMUTE_STORAGE_DRIVER", "etcd"},
		{"zero timeout", "COMMUTE_STORAGE_TIMEOUT", "0s"},
		{"bad timezone", "COMMUTE_PRICING_TIMEZONE", "Mars/Olympus"},
		{"malformed duration", "COMMUTE_STORAGE_TIMEOUT", "soon"},
		{"negative fallback speed", "COMMUTE_MAPS_FALLBACK_SPEED_KMH", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%s: expected error", tt.key, tt.value)
			}
		})
	}
}
