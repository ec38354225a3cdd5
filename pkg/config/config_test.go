package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/wordvec/pkg/catalog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Models.Default != catalog.DefaultModelID {
		t.Errorf("default model = %q", cfg.Models.Default)
	}
	if cfg.Models.CacheLimit != 3 {
		t.Errorf("cache limit = %d", cfg.Models.CacheLimit)
	}
	if cfg.Addr() != "0.0.0.0:5000" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.LoadTimeout() != 300*time.Second {
		t.Errorf("LoadTimeout = %v", cfg.LoadTimeout())
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordvec.toml")

	cfg := DefaultConfig()
	cfg.Server.Port = 8080
	cfg.Models.Default = "glove-twitter-25"
	cfg.Models.Preload = true

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Server.Port != 8080 {
		t.Errorf("port = %d", loaded.Server.Port)
	}
	if loaded.Models.Default != "glove-twitter-25" {
		t.Errorf("default model = %q", loaded.Models.Default)
	}
	if !loaded.Models.Preload {
		t.Error("preload flag lost")
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	// Untouched sections keep their defaults.
	if cfg.Models.Default != catalog.DefaultModelID {
		t.Errorf("default model = %q", cfg.Models.Default)
	}
	if cfg.Sampler.BatchSize != 10 {
		t.Errorf("sampler batch = %d", cfg.Sampler.BatchSize)
	}
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "wordvec.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	// A second init reads the file it just wrote.
	again, err := InitConfig(path)
	if err != nil {
		t.Fatalf("second InitConfig: %v", err)
	}
	if again.Server.Port != cfg.Server.Port {
		t.Error("reloaded config diverges")
	}
}

func TestInitConfigBadFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("not = [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig must not fail on a broken file: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("fallback config port = %d", cfg.Server.Port)
	}
}
