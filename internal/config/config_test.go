package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 6464 {
		t.Errorf("default port = %d, want 6464", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Storage.Engine != "sqlite" {
		t.Errorf("default engine = %q, want sqlite", cfg.Storage.Engine)
	}
	if cfg.Storage.DataPath != "./data" {
		t.Errorf("default data path = %q, want ./data", cfg.Storage.DataPath)
	}
	if cfg.Directory.Mode != "local" {
		t.Errorf("default directory mode = %q, want local", cfg.Directory.Mode)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("KINDRED_PORT", "9000")
	t.Setenv("KINDRED_HOST", "0.0.0.0")
	t.Setenv("KINDRED_STORAGE_ENGINE", "postgres")
	t.Setenv("KINDRED_POSTGRES_DSN", "postgres://localhost/kindred")
	t.Setenv("KINDRED_DIRECTORY_MODE", "remote")
	t.Setenv("KINDRED_DIRECTORY_URL", "http://directory:8080")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Storage.Engine != "postgres" {
		t.Errorf("engine = %q, want postgres", cfg.Storage.Engine)
	}
	if cfg.Storage.PostgresDSN != "postgres://localhost/kindred" {
		t.Errorf("dsn = %q", cfg.Storage.PostgresDSN)
	}
	if cfg.Directory.Mode != "remote" || cfg.Directory.RemoteURL != "http://directory:8080" {
		t.Errorf("directory = %+v", cfg.Directory)
	}
}

func TestGetEnvIntBadValue(t *testing.T) {
	t.Setenv("KINDRED_PORT", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 6464 {
		t.Errorf("port with bad env = %d, want default 6464", cfg.Server.Port)
	}
}
