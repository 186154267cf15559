package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/aanand-mishra/student-records/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const sample = `
env: dev
storage:
  dsn: storage/test.db
http_server:
  address: localhost:9090
auth:
  token: secret
cors:
  allowed_origins: ["http://localhost:5173"]
`

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Env != "dev" || cfg.Addr != "localhost:9090" || cfg.Auth.Token != "secret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Storage.Driver != "sqlite3" {
		t.Fatalf("driver should default to sqlite3, got %q", cfg.Storage.Driver)
	}
	if cfg.ReadTimeout != 10*time.Second || cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("timeouts should use defaults: %+v", cfg.HTTPServer)
	}
	if cfg.Auth.ProtectReads {
		t.Fatal("reads should be open by default")
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"http://localhost:5173"}) {
		t.Fatalf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "from-env")
	t.Setenv("AUTH_PROTECT_READS", "true")

	cfg, err := config.Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.Token != "from-env" || !cfg.Auth.ProtectReads {
		t.Fatalf("env should override file: %+v", cfg.Auth)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	path := writeConfig(t, sample+"\n")
	t.Setenv("STORAGE_DRIVER", "oracle")

	if _, err := config.Load(path); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoad_MissingToken(t *testing.T) {
	body := `
env: dev
storage:
  dsn: x.db
http_server:
  address: localhost:9090
`
	if _, err := config.Load(writeConfig(t, body)); err == nil {
		t.Fatal("auth token is required")
	}
}
