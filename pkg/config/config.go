// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads Paideia configuration from defaults, an
// optional YAML file, and PAIDEIA_-prefixed environment variables, in
// that order of precedence.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Qdrant    QdrantConfig    `koanf:"qdrant"`
	Store     StoreConfig     `koanf:"store"`
	Server    ServerConfig    `koanf:"server"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider    string  `koanf:"provider"` // gemini, ollama, mock
	Model       string  `koanf:"model"`
	BaseURL     string  `koanf:"base_url"` // ollama only
	APIKey      string  `koanf:"api_key"`
	Temperature float64 `koanf:"temperature"`
}

type EmbeddingConfig struct {
	Model      string `koanf:"model"`
	Dimensions int    `koanf:"dimensions"`
}

type QdrantConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Addr       string `koanf:"addr"`
	Collection string `koanf:"collection"`
}

type StoreConfig struct {
	Path string `koanf:"path"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
	Exporter    string `koanf:"exporter"` // stdout, otlp
	OTLPAddr    string `koanf:"otlp_addr"`
	Environment string `koanf:"environment"`
}

// Load reads configuration from defaults, the optional YAML file at
// path, and PAIDEIA_ environment variables (PAIDEIA_LLM_MODEL ->
// llm.model).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("llm.provider", "gemini")
	k.Set("llm.model", "gemini-2.0-flash-001")
	k.Set("llm.base_url", "http://localhost:11434")
	k.Set("llm.temperature", 0.7)

	k.Set("embedding.model", "text-embedding-004")
	k.Set("embedding.dimensions", 768)

	k.Set("qdrant.enabled", false)
	k.Set("qdrant.addr", "localhost:6334")
	k.Set("qdrant.collection", "textbook")

	k.Set("store.path", "paideia.db")

	k.Set("server.addr", ":8000")

	k.Set("telemetry.enabled", false)
	k.Set("telemetry.service_name", "paideia")
	k.Set("telemetry.exporter", "stdout")
	k.Set("telemetry.otlp_addr", "localhost:4317")
	k.Set("telemetry.environment", "development")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("PAIDEIA_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "PAIDEIA_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
