// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/memory"
)

// RAG answers questions with citations retrieved from the textbook
// vector database.
type RAG struct {
	agent.Base
	svc Services
}

// NewRAG creates the retrieval-augmented answering agent.
func NewRAG(svc Services) *RAG {
	a := &RAG{
		Base: agent.NewBase("RAGAgent",
			"Answers questions using RAG with citations from the Physical AI textbook vector database."),
		svc: svc,
	}
	a.Register(core.NewSkill("ragQuery",
		"Answer questions using RAG with citations from the textbook",
		a.ragQuery, core.WithOutputType("dict")))
	a.Register(core.NewSkill("searchChapters",
		"Search for relevant chapters in the textbook",
		a.searchChapters, core.WithOutputType("dict")))
	a.Register(core.NewSkill("retrieveSections",
		"Retrieve specific sections from a chapter",
		a.retrieveSections, core.WithOutputType("dict")))
	return a
}

// ExecuteSkill promotes citations gathered by the handlers onto the
// response envelope.
func (a *RAG) ExecuteSkill(ctx context.Context, skillName string, ictx *core.Context, kwargs map[string]any) *core.Response {
	resp := a.Base.ExecuteSkill(ctx, skillName, ictx, kwargs)
	if data, ok := resp.Data.(map[string]any); ok {
		if citations, ok := data["citations"].([]core.Citation); ok {
			resp.WithCitations(citations)
		}
	}
	return resp
}

// search embeds the query and runs a filtered vector search. Retrieval
// failures degrade to an empty result set so answering can continue
// without context.
func (a *RAG) search(ctx context.Context, query string, limit int, filter map[string]string) []memory.SearchResult {
	if a.svc.Embedder == nil || a.svc.Vectors == nil {
		return nil
	}
	vector, err := a.svc.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "query embedding failed", "error", err)
		return nil
	}
	results, err := a.svc.Vectors.Search(ctx, a.svc.Collection, vector, limit, filter)
	if err != nil {
		slog.ErrorContext(ctx, "vector search failed", "error", err)
		return nil
	}
	return results
}

func (a *RAG) ragQuery(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	message, err := requireString(kwargs, "message")
	if err != nil {
		return nil, err
	}
	numResults := intArg(kwargs, "num_results", 5)
	var filter map[string]string
	if chapter := stringArg(kwargs, "chapter_filter", ""); chapter != "" {
		filter = map[string]string{"chapter_id": chapter}
	}

	results := a.search(ctx, message, numResults, filter)
	citations := make([]core.Citation, 0, len(results))
	contextParts := make([]string, 0, len(results))
	for i, result := range results {
		contextParts = append(contextParts, fmt.Sprintf("[%d] %v", i+1, result.Payload["content"]))
		citations = append(citations, citationFromPayload(result.Payload, result.Score))
	}
	retrieved := strings.Join(contextParts, "\n\n")

	if a.svc.LLM == nil {
		return map[string]any{
			"answer":    "RAG service not fully available",
			"citations": citations,
			"query":     message,
		}, nil
	}
	answer, err := a.svc.generate(ctx, message, retrieved, historyTurns(ictx), ictx.Language)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"answer":      answer,
		"citations":   citations,
		"query":       message,
		"num_results": len(citations),
		"language":    ictx.Language,
	}, nil
}

func (a *RAG) searchChapters(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	query, err := requireString(kwargs, "query")
	if err != nil {
		return nil, err
	}
	limit := intArg(kwargs, "limit", 10)

	chapters := []map[string]any{}
	seen := map[string]bool{}
	for _, result := range a.search(ctx, query, limit, nil) {
		chapterID := payloadString(result.Payload, "chapter_id")
		if seen[chapterID] {
			continue
		}
		seen[chapterID] = true
		chapters = append(chapters, map[string]any{
			"chapter_id":      chapterID,
			"chapter_title":   payloadString(result.Payload, "chapter_title"),
			"path":            payloadString(result.Payload, "path"),
			"relevance_score": result.Score,
			"preview":         preview(payloadString(result.Payload, "content"), 200),
		})
	}
	return map[string]any{
		"chapters":    chapters,
		"query":       query,
		"total_found": len(chapters),
	}, nil
}

func (a *RAG) retrieveSections(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	chapterID := stringArg(kwargs, "chapter_id", "")
	sectionQuery := stringArg(kwargs, "section_query", "")
	limit := intArg(kwargs, "limit", 5)

	sections := []map[string]any{}
	if sectionQuery != "" {
		var filter map[string]string
		if chapterID != "" {
			filter = map[string]string{"chapter_id": chapterID}
		}
		for _, result := range a.search(ctx, sectionQuery, limit, filter) {
			sections = append(sections, map[string]any{
				"section_id":      payloadString(result.Payload, "section_id"),
				"section_title":   payloadString(result.Payload, "section_title"),
				"chapter_id":      payloadString(result.Payload, "chapter_id"),
				"chapter_title":   payloadString(result.Payload, "chapter_title"),
				"content":         payloadString(result.Payload, "content"),
				"relevance_score": result.Score,
			})
		}
	}
	return map[string]any{
		"sections":    sections,
		"chapter_id":  chapterID,
		"query":       sectionQuery,
		"total_found": len(sections),
	}, nil
}

func citationFromPayload(payload map[string]any, score float32) core.Citation {
	return core.Citation{
		ChapterID:    payloadString(payload, "chapter_id"),
		ChapterTitle: payloadString(payload, "chapter_title"),
		SectionID:    payloadString(payload, "section_id"),
		SectionTitle: payloadString(payload, "section_title"),
		Path:         payloadString(payload, "path"),
		Score:        score,
	}
}

func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func preview(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
