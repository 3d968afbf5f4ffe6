package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"APP_NAME", "APP_VERSION", "APP_ENV", "APP_PORT",
		"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT", "HTTP_SHUTDOWN_TIMEOUT",
		"AUTH_ENABLED", "JWT_ISSUER_URI", "JWT_JWK_SET_URI", "AUTH_CLOCK_SKEW", "AUTH_BYPASS_PATHS",
		"LOG_LEVEL", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DRIVE_ENABLED", "DRIVE_CREDENTIALS_FILE", "DRIVE_FOLDER_ID", "DRIVE_UPLOAD_WORKERS",
		"BACKUP_DIR", "BACKUP_PG_DUMP_PATH", "BACKUP_TIMEOUT",
	}
	for _, key := range envVars {
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	// Avoid requiring JWT config
	os.Setenv("AUTH_ENABLED", "false")
	defer os.Unsetenv("AUTH_ENABLED")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "ms_gestion_core" {
		t.Errorf("expected default app name 'ms_gestion_core', got %q", cfg.App.Name)
	}

	if cfg.App.Environment != "local" {
		t.Errorf("expected default environment 'local', got %q", cfg.App.Environment)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTP.Port)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("expected default db port 5432, got %d", cfg.Database.Port)
	}

	if cfg.Storage.Enabled {
		t.Error("expected storage disabled by default")
	}

	if cfg.Backup.Directory != "./backups" {
		t.Errorf("expected default backup dir './backups', got %q", cfg.Backup.Directory)
	}

	if cfg.Backup.DumpTimeout != 10*time.Minute {
		t.Errorf("expected default backup timeout 10m, got %v", cfg.Backup.DumpTimeout)
	}
}

func TestLoad_WithCustomValues(t *testing.T) {
	clearEnv(t)

	os.Setenv("APP_NAME", "test-app")
	os.Setenv("APP_ENV", "production")
	os.Setenv("APP_PORT", "9090")
	os.Setenv("AUTH_ENABLED", "false")
	os.Setenv("HTTP_WRITE_TIMEOUT", "45s")
	defer clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "test-app" {
		t.Errorf("expected app name 'test-app', got %q", cfg.App.Name)
	}

	if cfg.App.Environment != "production" {
		t.Errorf("expected environment 'production', got %q", cfg.App.Environment)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}

	if cfg.HTTP.WriteTimeout != 45*time.Second {
		t.Errorf("expected write timeout 45s, got %v", cfg.HTTP.WriteTimeout)
	}
}

func TestLoad_AuthEnabled_MissingIssuerURI(t *testing.T) {
	clearEnv(t)

	os.Setenv("AUTH_ENABLED", "true")
	defer os.Unsetenv("AUTH_ENABLED")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when AUTH_ENABLED=true and JWT_ISSUER_URI is missing")
	}

	if err.Error() != "invalid config: JWT_ISSUER_URI is required when AUTH_ENABLED=true" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestLoad_StorageEnabled_MissingCredentials(t *testing.T) {
	clearEnv(t)

	os.Setenv("AUTH_ENABLED", "false")
	os.Setenv("DRIVE_ENABLED", "true")
	defer clearEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DRIVE_ENABLED=true and DRIVE_CREDENTIALS_FILE is missing")
	}
}

func TestDatabaseSettings_DSN(t *testing.T) {
	d := DatabaseSettings{
		Host: "db.local", Port: 5433, Database: "gestion",
		User: "app", Password: "secret", SSLMode: "require",
	}

	want := "host=db.local port=5433 dbname=gestion user=app password=secret sslmode=require"
	if got := d.DSN(); got != want {
		t.Errorf("unexpected DSN:\n got %q\nwant %q", got, want)
	}
}
