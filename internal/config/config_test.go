package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func withEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	keys := []string{
		"ENVIRONMENT", "STORE_DRIVER", "DATABASE_URL", "JWT_SECRET",
		"SESSION_TTL_HOURS", "SESSION_COOKIE_NAME", "JOBS_ENABLED",
		"CORS_ALLOWED_ORIGINS", "RATE_LIMIT_TRUSTED_PROXIES",
	}
	original := make(map[string]string, len(keys))
	for _, k := range keys {
		original[k] = os.Getenv(k)
		_ = os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				_ = os.Unsetenv(k)
			} else {
				_ = os.Setenv(k, v)
			}
		}
	})
	for k, v := range vars {
		_ = os.Setenv(k, v)
	}
}

func TestLoad_PostgresRequiresDatabaseURL(t *testing.T) {
	withEnv(t, map[string]string{
		"STORE_DRIVER": "postgres",
		"JWT_SECRET":   "12345678901234567890123456789012",
	})

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error when DATABASE_URL is empty with postgres driver, got nil")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Expected error message to mention DATABASE_URL, got: %v", err)
	}
}

func TestLoad_MemoryDriverNeedsNoDatabaseURL(t *testing.T) {
	withEnv(t, map[string]string{
		"STORE_DRIVER": "memory",
		"JWT_SECRET":   "12345678901234567890123456789012",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error with memory driver, got: %v", err)
	}
	if cfg.Store.Driver != StoreDriverMemory {
		t.Errorf("Expected memory driver, got %q", cfg.Store.Driver)
	}
}

func TestLoad_UnknownDriverRejected(t *testing.T) {
	withEnv(t, map[string]string{
		"STORE_DRIVER": "sqlite",
		"JWT_SECRET":   "12345678901234567890123456789012",
	})

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for unknown STORE_DRIVER, got nil")
	}
	if !strings.Contains(err.Error(), "STORE_DRIVER") {
		t.Errorf("Expected error message to mention STORE_DRIVER, got: %v", err)
	}
}

func TestLoad_ShortJWTSecretRejected(t *testing.T) {
	withEnv(t, map[string]string{
		"STORE_DRIVER": "memory",
		"JWT_SECRET":   "too-short",
	})

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for short JWT_SECRET, got nil")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("Expected error message to mention JWT_SECRET, got: %v", err)
	}
}

func TestLoad_SessionDefaults(t *testing.T) {
	withEnv(t, map[string]string{
		"STORE_DRIVER": "memory",
		"JWT_SECRET":   "12345678901234567890123456789012",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("Expected 24h session TTL by default, got %v", cfg.Session.TTL)
	}
	if cfg.Session.CookieName != "warebase_session" {
		t.Errorf("Expected warebase_session cookie name, got %q", cfg.Session.CookieName)
	}
}

func TestLoad_JobsRequirePostgres(t *testing.T) {
	withEnv(t, map[string]string{
		"STORE_DRIVER": "memory",
		"JWT_SECRET":   "12345678901234567890123456789012",
		"JOBS_ENABLED": "true",
	})

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error when JOBS_ENABLED with memory driver, got nil")
	}
	if !strings.Contains(err.Error(), "JOBS_ENABLED") {
		t.Errorf("Expected error message to mention JOBS_ENABLED, got: %v", err)
	}
}

func TestLoad_ProductionCORS_EmptyOrigins(t *testing.T) {
	withEnv(t, map[string]string{
		"ENVIRONMENT":  "production",
		"STORE_DRIVER": "memory",
		"JWT_SECRET":   "12345678901234567890123456789012",
	})

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error when CORS_ALLOWED_ORIGINS is empty in production, got nil")
	}
	if !strings.Contains(err.Error(), "CORS_ALLOWED_ORIGINS") {
		t.Errorf("Expected error message to mention CORS_ALLOWED_ORIGINS, got: %v", err)
	}
}

func TestLoad_ProductionCORS_ValidOrigins(t *testing.T) {
	withEnv(t, map[string]string{
		"ENVIRONMENT":          "production",
		"STORE_DRIVER":         "memory",
		"JWT_SECRET":           "12345678901234567890123456789012",
		"CORS_ALLOWED_ORIGINS": "https://example.com,https://app.example.com",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error with valid CORS_ALLOWED_ORIGINS, got: %v", err)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 allowed origins, got %d", len(cfg.CORS.AllowedOrigins))
	}
	if cfg.CORS.AllowAllOrigins {
		t.Error("Expected AllowAllOrigins to be false in production")
	}
}

func TestLoad_DevelopmentCORS_AllowsAll(t *testing.T) {
	withEnv(t, map[string]string{
		"ENVIRONMENT":  "development",
		"STORE_DRIVER": "memory",
		"JWT_SECRET":   "12345678901234567890123456789012",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error in development, got: %v", err)
	}
	if !cfg.CORS.AllowAllOrigins {
		t.Error("Expected AllowAllOrigins to be true in development")
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected IsDevelopment to be true")
	}
}
