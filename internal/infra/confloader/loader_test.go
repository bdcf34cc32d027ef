package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/sessprobe-go/internal/config"
)

type testConfig struct {
	Target struct {
		URL    string `koanf:"base_url"`
		APIKey string `koanf:"api_key"`
	} `koanf:"target"`
	Load struct {
		Users int `koanf:"users"`
	} `koanf:"load"`
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "probe.yaml")

	yaml := `
target:
  base_url: http://localhost:8080
  api_key: dev-key
load:
  users: 25
`
	if err := os.WriteFile(configFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	l := NewLoader(WithConfigFile(configFile))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Target.URL != "http://localhost:8080" {
		t.Errorf("target.base_url = %q, want http://localhost:8080", cfg.Target.URL)
	}
	if cfg.Load.Users != 25 {
		t.Errorf("load.users = %d, want 25", cfg.Load.Users)
	}
}

func TestLoader_LoadFile_Missing(t *testing.T) {
	l := NewLoader(WithConfigFile("/nonexistent/probe.yaml"))
	var cfg testConfig
	if err := l.Load(&cfg); err == nil {
		t.Error("Load() with missing file expected error")
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "probe.yaml")
	if err := os.WriteFile(configFile, []byte("target:\n  base_url: http://file-value\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("SESSPROBE_TARGET_BASE_URL", "http://env-value")

	l := NewLoader(WithConfigFile(configFile))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Target.URL != "http://env-value" {
		t.Errorf("target.base_url = %q, want env override", cfg.Target.URL)
	}
}

func TestLoader_EnvMultiWordKeys(t *testing.T) {
	t.Setenv("SESSPROBE_TARGET_API_KEY", "env-key")
	t.Setenv("SESSPROBE_LOAD_THINK_MIN", "5s")

	cfg := config.Default()
	if err := NewLoader().Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Target.APIKey != "env-key" {
		t.Errorf("target.api_key = %q, want env-key", cfg.Target.APIKey)
	}
	if cfg.Load.ThinkMin != 5*time.Second {
		t.Errorf("load.think_min = %v, want 5s", cfg.Load.ThinkMin)
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"load.users": 50}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Load.Users != 50 {
		t.Errorf("load.users = %d, want 50", cfg.Load.Users)
	}
}

func TestLoader_Getters(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{
		"target.base_url": "http://x",
		"load.users": 5,
		"stub.slow":  true,
	}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if got := l.GetString("target.base_url"); got != "http://x" {
		t.Errorf("GetString() = %q", got)
	}
	if got := l.GetInt("load.users"); got != 5 {
		t.Errorf("GetInt() = %d", got)
	}
	if got := l.GetBool("stub.slow"); !got {
		t.Error("GetBool() = false")
	}
	if l.Get("missing") != nil {
		t.Error("Get(missing) != nil")
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()
	if l.IsLoaded() {
		t.Error("IsLoaded() = true before Load")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() = false after Load")
	}
}

func TestMapProvider_ReadBytes(t *testing.T) {
	p := mapProvider{}
	if _, err := p.ReadBytes(); err == nil {
		t.Error("ReadBytes() expected error")
	}
}
