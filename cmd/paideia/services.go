package main

import (
	"context"
	"log/slog"

	"github.com/jllopis/paideia/pkg/agents"
	"github.com/jllopis/paideia/pkg/config"
	"github.com/jllopis/paideia/pkg/llm"
	"github.com/jllopis/paideia/pkg/llm/gemini"
	"github.com/jllopis/paideia/pkg/memory"
	geminiembed "github.com/jllopis/paideia/pkg/memory/gemini"
	"github.com/jllopis/paideia/pkg/memory/qdrant"
	"github.com/jllopis/paideia/pkg/store"
)

// buildServices wires the agent collaborators from configuration.
// Unavailable collaborators are logged and left nil; the agents
// degrade to placeholder output instead of failing at startup.
func buildServices(ctx context.Context, cfg *config.Config) (agents.Services, func(), error) {
	svc := agents.Services{Collection: cfg.Qdrant.Collection}

	svc.LLM = buildLLM(ctx, cfg)
	svc.Embedder = buildEmbedder(ctx, cfg)

	if cfg.Qdrant.Enabled {
		vectors, err := qdrant.New(cfg.Qdrant.Addr)
		if err != nil {
			slog.Warn("qdrant unavailable, retrieval degraded", "addr", cfg.Qdrant.Addr, "error", err)
		} else {
			svc.Vectors = vectors
			if svc.Embedder != nil {
				if err := vectors.EnsureCollection(ctx, cfg.Qdrant.Collection, uint64(svc.Embedder.Dimensions())); err != nil {
					slog.Warn("failed to ensure collection", "collection", cfg.Qdrant.Collection, "error", err)
				}
			}
		}
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return agents.Services{}, nil, err
	}
	svc.Store = st

	cleanup := func() {
		if err := st.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}
	return svc, cleanup, nil
}

func buildLLM(ctx context.Context, cfg *config.Config) llm.Provider {
	switch cfg.LLM.Provider {
	case "gemini":
		var provider llm.Provider
		var err error
		if cfg.LLM.APIKey != "" {
			provider, err = gemini.NewWithAPIKey(ctx, cfg.LLM.APIKey, gemini.WithModel(cfg.LLM.Model))
		} else {
			provider, err = gemini.New(ctx, gemini.WithModel(cfg.LLM.Model))
		}
		if err != nil {
			slog.Warn("gemini unavailable, agents degraded", "error", err)
			return nil
		}
		return provider
	case "ollama":
		return llm.NewOllama(cfg.LLM.BaseURL, cfg.LLM.Model)
	case "mock":
		return &llm.MockProvider{Response: "mock response"}
	default:
		slog.Warn("unknown llm provider, agents degraded", "provider", cfg.LLM.Provider)
		return nil
	}
}

func buildEmbedder(ctx context.Context, cfg *config.Config) memory.Embedder {
	embedder, err := geminiembed.New(ctx, cfg.LLM.APIKey, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	if err != nil {
		slog.Warn("embedder unavailable, retrieval degraded", "error", err)
		return nil
	}
	return embedder
}
