package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/provider"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := loadConfig("", nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if want := filepath.Join(home, ".local", "share", "nucleus", "nucleus.duckdb"); cfg.DBPath != want {
		t.Errorf("db-path = %q, want %q", cfg.DBPath, want)
	}
	if cfg.Engine.AutoAdvance != model.DefaultAutoAdvance || cfg.Engine.Idle != model.DefaultIdleTimeout {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Ticker.SwapDelay != model.DefaultTickerSwapDelay {
		t.Errorf("ticker swap delay = %v", cfg.Ticker.SwapDelay)
	}
	if cfg.Selection.First != model.DefaultSelectionFirst || cfg.Selection.Remainder != model.DefaultSelectionRemainder {
		t.Errorf("selection = %+v", cfg.Selection)
	}
	if cfg.Providers.Source != provider.SourceStore || cfg.Providers.Timeout != model.DefaultProviderTimeout {
		t.Errorf("providers = %+v", cfg.Providers)
	}
	if cfg.APIAddr != "127.0.0.1:3737" {
		t.Errorf("api-addr = %q", cfg.APIAddr)
	}
	if cfg.Backup.Enabled || cfg.Backup.KeepLast != 7 || cfg.Backup.Interval != 24*time.Hour {
		t.Errorf("backup = %+v", cfg.Backup)
	}
	if want := filepath.Join(home, ".local", "share", "nucleus", "backups"); cfg.Backup.LocalDir != want {
		t.Errorf("backup dir = %q, want %q", cfg.Backup.LocalDir, want)
	}
	if !cfg.needsStore() {
		t.Error("store source must open the store")
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NUCLEUS_ENGINE_IDLE_TIMEOUT", "9s")
	t.Setenv("NUCLEUS_REDUCED_MOTION", "true")

	writeFile(t, filepath.Join(home, ".config", "nucleus", "config.yml"), `
skin: retro
skin-file: ~/skins/mine.yml
api-port: 4100
engine:
  auto-advance: 45s
ticker:
  blank-values: ["", "-"]
providers:
  source: file
  fixtures-dir: ~/fixtures
  endpoints:
    sleep: http://127.0.0.1:9000/sleep
`)

	cfg, err := loadConfig("", nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Skin != "retro" || cfg.SkinFile != filepath.Join(home, "skins", "mine.yml") {
		t.Errorf("skin = %q, skin-file = %q", cfg.Skin, cfg.SkinFile)
	}
	if cfg.Engine.AutoAdvance != 45*time.Second {
		t.Errorf("auto-advance = %v", cfg.Engine.AutoAdvance)
	}
	if cfg.Engine.Idle != 9*time.Second {
		t.Errorf("idle-timeout = %v, want env override", cfg.Engine.Idle)
	}
	if !cfg.ReducedMotion {
		t.Error("reduced-motion env not applied")
	}
	if len(cfg.Ticker.Blank) != 2 || cfg.Ticker.Blank[1] != "-" {
		t.Errorf("blank values = %q", cfg.Ticker.Blank)
	}
	if cfg.Providers.FixturesDir != filepath.Join(home, "fixtures") {
		t.Errorf("fixtures-dir = %q", cfg.Providers.FixturesDir)
	}
	if cfg.Providers.Endpoints["sleep"] != "http://127.0.0.1:9000/sleep" {
		t.Errorf("endpoints = %v", cfg.Providers.Endpoints)
	}
	if cfg.APIAddr != "127.0.0.1:4100" {
		t.Errorf("api-addr = %q", cfg.APIAddr)
	}
	if cfg.needsStore() {
		t.Error("file source without the API must not open the store")
	}
}

func TestLoadConfig_Flags(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--skin", "ocean", "--api-enabled", "--db-path", "~/db/n.duckdb"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	cfg, err := loadConfig("", cmd.Flags())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Skin != "ocean" || !cfg.APIEnabled {
		t.Errorf("flags not applied: skin %q api %v", cfg.Skin, cfg.APIEnabled)
	}
	if cfg.DBPath != filepath.Join(home, "db", "n.duckdb") {
		t.Errorf("db-path = %q", cfg.DBPath)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "bad.yml")
	writeFile(t, path, "api-port: 70000\n")
	if _, err := loadConfig(path, nil); err == nil {
		t.Fatal("expected invalid api-port error")
	}

	writeFile(t, path, "frame-rate: 0\n")
	if _, err := loadConfig(path, nil); err == nil {
		t.Fatal("expected invalid frame-rate error")
	}

	writeFile(t, path, "skin: [unterminated\n")
	if _, err := loadConfig(path, nil); err == nil {
		t.Fatal("expected parse error")
	}
}
