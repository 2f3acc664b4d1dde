// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("LLM.Provider = %q, want gemini", cfg.LLM.Provider)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("LLM.Temperature = %v, want 0.7", cfg.LLM.Temperature)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("Embedding.Dimensions = %d, want 768", cfg.Embedding.Dimensions)
	}
	if cfg.Qdrant.Collection != "textbook" {
		t.Errorf("Qdrant.Collection = %q, want textbook", cfg.Qdrant.Collection)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Server.Addr = %q, want :8000", cfg.Server.Addr)
	}
	if cfg.Store.Path != "paideia.db" {
		t.Errorf("Store.Path = %q, want paideia.db", cfg.Store.Path)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false")
	}
	if cfg.Telemetry.Environment != "development" {
		t.Errorf("Telemetry.Environment = %q, want development", cfg.Telemetry.Environment)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paideia.yaml")
	data := `
llm:
  provider: ollama
  model: llama3.2
server:
  addr: ":9000"
qdrant:
  enabled: true
  collection: robotics
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("LLM.Provider = %q, want ollama", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "llama3.2" {
		t.Errorf("LLM.Model = %q, want llama3.2", cfg.LLM.Model)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
	if !cfg.Qdrant.Enabled {
		t.Error("Qdrant.Enabled = false, want true")
	}
	// Values not in the file keep their defaults.
	if cfg.Embedding.Model != "text-embedding-004" {
		t.Errorf("Embedding.Model = %q, want default", cfg.Embedding.Model)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PAIDEIA_LLM_PROVIDER", "mock")
	t.Setenv("PAIDEIA_SERVER_ADDR", ":7777")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != "mock" {
		t.Errorf("LLM.Provider = %q, want mock", cfg.LLM.Provider)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("Server.Addr = %q, want :7777", cfg.Server.Addr)
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paideia.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  provider: gemini\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w, err := NewWatcher(path, WithWatchInterval(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if got := w.Config().LLM.Provider; got != "gemini" {
		t.Fatalf("initial provider = %q, want gemini", got)
	}

	changed := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// Backdate the recorded mtime so the rewrite registers even on
	// filesystems with coarse timestamp resolution.
	w.mu.Lock()
	w.lastModTime = w.lastModTime.Add(-time.Hour)
	w.mu.Unlock()

	if err := os.WriteFile(path, []byte("llm:\n  provider: ollama\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.LLM.Provider != "ollama" {
			t.Errorf("reloaded provider = %q, want ollama", cfg.LLM.Provider)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	if got := w.Config().LLM.Provider; got != "ollama" {
		t.Errorf("Config() provider after reload = %q, want ollama", got)
	}
}

func TestWatcherBadReloadKeepsConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paideia.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	if err := os.WriteFile(path, []byte(": not yaml ["), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	w.reload()

	if got := w.Config().Server.Addr; got != ":9000" {
		t.Errorf("Server.Addr after failed reload = %q, want :9000", got)
	}
}
