// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

// Package agents implements the tutoring agents that plug into the
// Paideia registry: content generation, code help, retrieval, Urdu
// translation, personalization, auth and history.
package agents

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/errors"
	"github.com/jllopis/paideia/pkg/llm"
	"github.com/jllopis/paideia/pkg/memory"
	"github.com/jllopis/paideia/pkg/store"
)

// Services bundles the collaborators agents draw on. Any field may be
// nil; agents degrade to placeholder output or report the missing
// collaborator instead of panicking.
type Services struct {
	LLM        llm.Provider
	Embedder   memory.Embedder
	Vectors    memory.VectorStore
	Collection string
	Store      *store.Store
}

// generate runs a tutoring prompt through the configured provider.
func (s Services) generate(ctx context.Context, query, retrieved string, history []llm.HistoryTurn, language string) (string, error) {
	if s.LLM == nil {
		return "", errors.New(errors.CodeLLMError, "llm provider not configured", nil)
	}
	resp, err := s.LLM.Chat(ctx, llm.ComposeTutorRequest(query, retrieved, history, language))
	if err != nil {
		return "", errors.New(errors.CodeLLMError, "chat completion failed", err)
	}
	return resp.Content, nil
}

func historyTurns(ictx *core.Context) []llm.HistoryTurn {
	turns := make([]llm.HistoryTurn, 0, len(ictx.ConversationHistory))
	for _, t := range ictx.ConversationHistory {
		turns = append(turns, llm.HistoryTurn{Role: t.Role, Content: t.Content})
	}
	return turns
}

// stringArg reads a string kwarg, falling back to def when absent or
// not a string.
func stringArg(kwargs map[string]any, key, def string) string {
	if v, ok := kwargs[key].(string); ok && v != "" {
		return v
	}
	return def
}

// requireString reads a mandatory string kwarg.
func requireString(kwargs map[string]any, key string) (string, error) {
	v, ok := kwargs[key].(string)
	if !ok || v == "" {
		return "", errors.New(errors.CodeInvalidInput, "missing required argument: "+key, nil)
	}
	return v, nil
}

// intArg reads an int kwarg, tolerating the numeric types JSON
// decoding produces.
func intArg(kwargs map[string]any, key string, def int) int {
	switch v := kwargs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func boolArg(kwargs map[string]any, key string, def bool) bool {
	if v, ok := kwargs[key].(bool); ok {
		return v
	}
	return def
}

// stringsArg reads a string-slice kwarg, accepting both []string and
// the []any shape produced by JSON decoding.
func stringsArg(kwargs map[string]any, key string) []string {
	switch v := kwargs[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	}
	return nil
}

func mapArg(kwargs map[string]any, key string) map[string]any {
	if v, ok := kwargs[key].(map[string]any); ok {
		return v
	}
	return nil
}
