// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for Paideia tutoring telemetry. These follow
// OpenTelemetry naming conventions where applicable.
const (
	// Agent and skill attributes
	AttrAgentName = "paideia.agent.name"
	AttrSkillName = "paideia.skill.name"
	AttrSuccess   = "paideia.success"
	AttrErrorCode = "paideia.error.code"

	// Session attributes
	AttrSessionID = "paideia.session.id"
	AttrUserID    = "paideia.user.id"
	AttrLanguage  = "paideia.language"
	AttrUserLevel = "paideia.user.level"

	// Retrieval attributes
	AttrRAGQuery      = "paideia.rag.query"
	AttrRAGCollection = "paideia.rag.collection"
	AttrRAGResults    = "paideia.rag.result_count"
	AttrRAGChapter    = "paideia.rag.chapter_filter"

	// LLM attributes (standard gen_ai conventions)
	AttrLLMModel      = "gen_ai.request.model"
	AttrLLMProvider   = "gen_ai.system"
	AttrLLMDurationMs = "gen_ai.duration_ms"

	// History attributes
	AttrEventID   = "paideia.event.id"
	AttrEventType = "paideia.event.type"
)

// SkillAttributes returns common attributes for skill dispatch spans.
func SkillAttributes(agentName, skillName string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAgentName, agentName),
		attribute.String(AttrSkillName, skillName),
	}
}

// SessionAttributes returns attributes identifying the caller. Empty
// fields are left out.
func SessionAttributes(userID, sessionID, language string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if userID != "" {
		attrs = append(attrs, attribute.String(AttrUserID, userID))
	}
	if sessionID != "" {
		attrs = append(attrs, attribute.String(AttrSessionID, sessionID))
	}
	if language != "" {
		attrs = append(attrs, attribute.String(AttrLanguage, language))
	}
	return attrs
}

// RAGAttributes returns attributes for retrieval spans. The query is
// truncated to keep span payloads bounded.
func RAGAttributes(query, collection, chapterFilter string, results int) []attribute.KeyValue {
	if len(query) > 200 {
		query = query[:200] + "..."
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrRAGQuery, query),
		attribute.Int(AttrRAGResults, results),
	}
	if collection != "" {
		attrs = append(attrs, attribute.String(AttrRAGCollection, collection))
	}
	if chapterFilter != "" {
		attrs = append(attrs, attribute.String(AttrRAGChapter, chapterFilter))
	}
	return attrs
}

// LLMAttributes returns attributes for LLM call spans.
func LLMAttributes(model, provider string, durationMs float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrLLMModel, model),
	}
	if provider != "" {
		attrs = append(attrs, attribute.String(AttrLLMProvider, provider))
	}
	if durationMs > 0 {
		attrs = append(attrs, attribute.Float64(AttrLLMDurationMs, durationMs))
	}
	return attrs
}

// OutcomeAttributes returns attributes describing a skill result.
func OutcomeAttributes(success bool, errorCode string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Bool(AttrSuccess, success),
	}
	if errorCode != "" {
		attrs = append(attrs, attribute.String(AttrErrorCode, errorCode))
	}
	return attrs
}

// EventAttributes returns attributes for history record spans.
func EventAttributes(eventID, eventType string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if eventID != "" {
		attrs = append(attrs, attribute.String(AttrEventID, eventID))
	}
	if eventType != "" {
		attrs = append(attrs, attribute.String(AttrEventType, eventType))
	}
	return attrs
}
