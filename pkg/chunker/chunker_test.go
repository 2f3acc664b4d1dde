// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package chunker

import (
	"strings"
	"testing"
)

var testDoc = Document{
	ChapterID:    "ch03",
	ChapterTitle: "Kinematics",
	Path:         "docs/ch03.md",
}

func TestChunkSmallDocument(t *testing.T) {
	content := "# Forward Kinematics\n\nThe pose of the end effector follows from the joint angles."
	chunks := New().ChunkDocument(content, testDoc)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.SectionID != "forward-kinematics" {
		t.Fatalf("unexpected section id %q", c.SectionID)
	}
	if c.SectionTitle != "Forward Kinematics" {
		t.Fatalf("unexpected section title %q", c.SectionTitle)
	}
	if !strings.HasPrefix(c.Content, "# Forward Kinematics") {
		t.Fatalf("header should stay in chunk content: %q", c.Content)
	}
	if c.Language != "en" {
		t.Fatalf("expected default language en, got %q", c.Language)
	}
	if c.ChapterID != "ch03" || c.Path != "docs/ch03.md" {
		t.Fatalf("document metadata not carried: %+v", c)
	}
}

func TestChunkSplitsByHeaders(t *testing.T) {
	content := "intro text before any header\n\n# One\n\nbody one\n\n## Two\n\nbody two"
	chunks := New().ChunkDocument(content, testDoc)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].SectionID != "intro" || chunks[0].SectionTitle != "Introduction" {
		t.Fatalf("preamble should land in the intro section: %+v", chunks[0])
	}
	if chunks[1].SectionID != "one" || chunks[2].SectionID != "two" {
		t.Fatalf("unexpected section ids: %q %q", chunks[1].SectionID, chunks[2].SectionID)
	}
}

func TestChunkLargeSectionSplitsByParagraphs(t *testing.T) {
	para := strings.Repeat("robot arm dynamics ", 20) // ~95 tokens
	var sb strings.Builder
	sb.WriteString("# Dynamics\n\n")
	for i := 0; i < 10; i++ {
		sb.WriteString(para)
		sb.WriteString("\n\n")
	}
	c := New(WithTokenRange(100, 200), WithOverlap(20))
	chunks := c.ChunkDocument(sb.String(), testDoc)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if ch.TokenEstimate > 2*200 {
			t.Fatalf("chunk %d far over budget: %d tokens", i, ch.TokenEstimate)
		}
		if ch.SectionID != "dynamics" {
			t.Fatalf("chunk %d lost its section: %q", i, ch.SectionID)
		}
	}
}

func TestChunkOversizedParagraphSplitsBySentences(t *testing.T) {
	sentence := "The actuator torque saturates near the joint limit. "
	para := strings.Repeat(sentence, 40)
	c := New(WithTokenRange(50, 100))
	chunks := c.ChunkDocument("# Limits\n\n"+para, testDoc)
	if len(chunks) < 2 {
		t.Fatalf("expected sentence-level split, got %d chunks", len(chunks))
	}
	for i, ch := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(strings.TrimSpace(ch.Content), ".") {
			t.Fatalf("chunk %d should end on a sentence boundary: %q", i, ch.Content)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(strings.Repeat("a", 400)); got != 100 {
		t.Fatalf("expected 100 tokens for 400 chars, got %d", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Fatalf("expected 0 tokens for empty text, got %d", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Forward Kinematics":        "forward-kinematics",
		"ROS 2: Nodes & Topics!":    "ros-2-nodes-topics",
		"  spaced   out  ":          "spaced-out",
		"!!!":                       "untitled",
		"under_scored title":        "under-scored-title",
		"Inverse Kinematics (IK)":   "inverse-kinematics-ik",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChunkPayload(t *testing.T) {
	c := Chunk{
		Content:       "text",
		ChapterID:     "ch01",
		ChapterTitle:  "Intro",
		SectionID:     "intro",
		SectionTitle:  "Introduction",
		Path:          "docs/ch01.md",
		Language:      "en",
		TokenEstimate: 1,
		Metadata:      map[string]any{"revision": 3},
	}
	payload := c.Payload()
	if payload["chapter_id"] != "ch01" || payload["content"] != "text" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload["revision"] != 3 {
		t.Fatalf("metadata should be flattened into payload: %+v", payload)
	}
}

func TestEmptyDocument(t *testing.T) {
	if chunks := New().ChunkDocument("", testDoc); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(chunks))
	}
	if chunks := New().ChunkDocument("\n\n\n", testDoc); len(chunks) != 0 {
		t.Fatalf("expected no chunks for whitespace input, got %d", len(chunks))
	}
}
