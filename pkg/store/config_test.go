package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	body := []byte("backend: sqlite\npath: " + filepath.Join(dir, "ordo.sqlite") + "\nowner: alice\nlog:\n  level: debug\n")
	if err := os.WriteFile(filepath.Join(dir, ".ordo.yaml"), body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ORDO_CONFIG_PATH", dir)
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Backend() != "sqlite" {
		t.Errorf("backend = %q", cfg.Backend())
	}
	if cfg.BasePath() != filepath.Join(dir, "ordo.sqlite") {
		t.Errorf("path = %q", cfg.BasePath())
	}
	if cfg.Owner() != "alice" {
		t.Errorf("owner = %q", cfg.Owner())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel())
	}
	if cfg.RedisAddr() != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.RedisAddr())
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ORDO_CONFIG_PATH", t.TempDir())
	t.Setenv("ORDO_BACKEND", "memory")
	t.Setenv("ORDO_OWNER", "bob")
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Backend() != "memory" || cfg.Owner() != "bob" {
		t.Fatalf("env not applied: backend=%q owner=%q", cfg.Backend(), cfg.Owner())
	}
}

func TestWithOverrides(t *testing.T) {
	base := testConfig{backend: "diskv", path: "/tmp/x"}
	cfg := WithOverrides(base, " memory ", "")
	if cfg.Backend() != "memory" || cfg.Owner() != "tester" || cfg.BasePath() != "/tmp/x" {
		t.Fatalf("unexpected config backend=%q owner=%q path=%q", cfg.Backend(), cfg.Owner(), cfg.BasePath())
	}
	cfg = WithOverrides(base, "", "bob")
	if cfg.Backend() != "diskv" || cfg.Owner() != "bob" {
		t.Fatalf("unexpected config backend=%q owner=%q", cfg.Backend(), cfg.Owner())
	}
}
