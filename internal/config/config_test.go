package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8745 {
		t.Errorf("default port = %d, want 8745", cfg.Server.Port)
	}
	if cfg.Engine.DefaultPolicy != "effort_aware" {
		t.Errorf("default policy = %q, want effort_aware", cfg.Engine.DefaultPolicy)
	}
	if cfg.Engine.ComparatorSeed != 42 {
		t.Errorf("comparator seed = %d, want 42", cfg.Engine.ComparatorSeed)
	}
	if !cfg.Storage.PersistRuns {
		t.Error("run persistence should be enabled by default")
	}
	if cfg.Auth.Enabled {
		t.Error("auth should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldwd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Errorf("missing file should yield defaults, got port %d", cfg.Server.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prio.json")

	content := `{
		"server": {"host": "0.0.0.0", "port": 9000},
		"storage": {"dataDir": "/var/lib/prio", "persistRuns": false},
		"engine": {"defaultPolicy": "risk_first", "comparatorSeed": 7},
		"logging": {"format": "json", "level": "debug"}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9000 {
		t.Errorf("server = %s:%d, want 0.0.0.0:9000", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Storage.DataDir != "/var/lib/prio" {
		t.Errorf("dataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Storage.PersistRuns {
		t.Error("persistRuns should be false")
	}
	if cfg.Engine.DefaultPolicy != "risk_first" {
		t.Errorf("defaultPolicy = %q", cfg.Engine.DefaultPolicy)
	}
	if cfg.Engine.ComparatorSeed != 7 {
		t.Errorf("comparatorSeed = %d", cfg.Engine.ComparatorSeed)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prio.json")

	if err := os.WriteFile(path, []byte(`{"server": {"port": 9100}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Engine.DefaultPolicy != "effort_aware" {
		t.Errorf("unset fields should keep defaults, got policy %q", cfg.Engine.DefaultPolicy)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "prio.json")

	cfg := DefaultConfig()
	cfg.Server.Port = 9200
	cfg.Engine.DefaultPolicy = "coverage_first"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server.Port != 9200 {
		t.Errorf("port = %d, want 9200", loaded.Server.Port)
	}
	if loaded.Engine.DefaultPolicy != "coverage_first" {
		t.Errorf("policy = %q, want coverage_first", loaded.Engine.DefaultPolicy)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty data dir", func(c *Config) { c.Storage.DataDir = "" }, true},
		{"empty default policy", func(c *Config) { c.Engine.DefaultPolicy = "" }, true},
		{"auth enabled without hash", func(c *Config) { c.Auth.Enabled = true }, true},
		{"auth enabled with hash", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.TokenHash = "$2a$12$something"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestListenAddr(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ListenAddr(); got != "127.0.0.1:8745" {
		t.Errorf("ListenAddr() = %q", got)
	}
}
