// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tenex-chat/tenex/lib/config"
)

func TestBuildLoggerRejectsUnknownLevel(t *testing.T) {
	if _, _, err := buildLogger(config.LoggingConfig{Level: "loud"}); err == nil {
		t.Fatal("buildLogger accepted level loud")
	}
}

func TestBuildLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenex.log")
	logger, closeLog, err := buildLogger(config.LoggingConfig{Level: "info", File: path})
	if err != nil {
		t.Fatalf("buildLogger: %v", err)
	}
	logger.Info("hello")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file empty")
	}
}

func TestLoadConfigFlagOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tenex.yaml")
	if err := os.WriteFile(path, []byte("data_dir: "+dir+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("TENEX_CONFIG", filepath.Join(dir, "missing.yaml"))

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
}
