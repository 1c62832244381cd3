// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tenex.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeConfig(t, "data_dir: /tmp/tenex-test\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.DataDir != "/tmp/tenex-test" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Status.StalenessSeconds != 60 {
		t.Errorf("StalenessSeconds = %d, want 60", cfg.Status.StalenessSeconds)
	}
	if cfg.Cache.MaxAgeSeconds != 7*24*60*60 {
		t.Errorf("MaxAgeSeconds = %d, want 7 days", cfg.Cache.MaxAgeSeconds)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
data_dir: /data/tenex
relays:
  - wss://relay.example.com
  - wss://backup.example.com
logging:
  level: debug
status:
  staleness_seconds: 120
cache:
  disabled: true
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.Relays) != 2 || cfg.Relays[0] != "wss://relay.example.com" {
		t.Errorf("Relays = %v", cfg.Relays)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Status.StalenessSeconds != 120 {
		t.Errorf("StalenessSeconds = %d", cfg.Status.StalenessSeconds)
	}
	if !cfg.Cache.Disabled {
		t.Error("Cache.Disabled = false, want true")
	}
}

func TestLoadFileExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	path := writeConfig(t, "data_dir: ${HOME}/.tenex\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.DataDir != filepath.Join(home, ".tenex") {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, filepath.Join(home, ".tenex"))
	}
}

func TestLoadFileRejectsBadLevel(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: verbose\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for invalid logging level")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRequiresEnvVar(t *testing.T) {
	t.Setenv("TENEX_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when TENEX_CONFIG is unset")
	}
}
