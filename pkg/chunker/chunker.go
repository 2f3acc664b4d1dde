// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunker splits Markdown textbook content into embedding-sized
// chunks along header and paragraph boundaries.
package chunker

import (
	"regexp"
	"strings"
)

// Chunk is one indexable piece of a Markdown document.
type Chunk struct {
	Content       string         `json:"content"`
	ChapterID     string         `json:"chapter_id"`
	ChapterTitle  string         `json:"chapter_title"`
	SectionID     string         `json:"section_id"`
	SectionTitle  string         `json:"section_title"`
	Path          string         `json:"path"`
	Language      string         `json:"language"`
	TokenEstimate int            `json:"token_estimate"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Payload flattens the chunk into a payload map for the vector store.
func (c Chunk) Payload() map[string]any {
	payload := map[string]any{
		"content":        c.Content,
		"chapter_id":     c.ChapterID,
		"chapter_title":  c.ChapterTitle,
		"section_id":     c.SectionID,
		"section_title":  c.SectionTitle,
		"path":           c.Path,
		"language":       c.Language,
		"token_estimate": c.TokenEstimate,
	}
	for k, v := range c.Metadata {
		payload[k] = v
	}
	return payload
}

// Document identifies the chapter being chunked.
type Document struct {
	ChapterID    string
	ChapterTitle string
	Path         string
	Language     string
}

var (
	headerRE    = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	paragraphRE = regexp.MustCompile(`\n\s*\n`)
	sentenceRE  = regexp.MustCompile(`([.!?])\s+`)
	nonSlugRE   = regexp.MustCompile(`[^\w\s-]`)
	spaceRE     = regexp.MustCompile(`[\s_]+`)
)

// Chunker splits Markdown by headers, falling back to paragraphs and then
// sentences when a section overruns the token budget.
type Chunker struct {
	minTokens     int
	maxTokens     int
	overlapTokens int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithTokenRange sets the minimum and maximum tokens per chunk.
func WithTokenRange(min, max int) Option {
	return func(c *Chunker) {
		if min > 0 {
			c.minTokens = min
		}
		if max > 0 {
			c.maxTokens = max
		}
	}
}

// WithOverlap sets the token overlap carried between adjacent chunks.
func WithOverlap(tokens int) Option {
	return func(c *Chunker) { c.overlapTokens = tokens }
}

// New creates a Chunker targeting 512-1000 tokens with 50 tokens of overlap.
func New(opts ...Option) *Chunker {
	c := &Chunker{minTokens: 512, maxTokens: 1000, overlapTokens: 50}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EstimateTokens approximates the token count at four characters per token.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// ChunkDocument splits a Markdown document into chunks.
func (c *Chunker) ChunkDocument(content string, doc Document) []Chunk {
	if doc.Language == "" {
		doc.Language = "en"
	}
	var chunks []Chunk
	for _, section := range splitByHeaders(content) {
		chunks = append(chunks, c.chunkSection(section, doc)...)
	}
	return chunks
}

type section struct {
	id      string
	title   string
	content string
}

func splitByHeaders(content string) []section {
	var sections []section
	current := section{id: "intro", title: "Introduction"}
	var buf []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if text == "" {
			return
		}
		current.id = slugify(current.title)
		current.content = text
		sections = append(sections, current)
	}

	for _, line := range strings.Split(content, "\n") {
		if m := headerRE.FindStringSubmatch(line); m != nil {
			flush()
			current = section{title: strings.TrimSpace(m[2])}
			buf = []string{line}
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return sections
}

func (c *Chunker) chunkSection(sec section, doc Document) []Chunk {
	if EstimateTokens(sec.content) <= c.maxTokens {
		return []Chunk{c.newChunk(sec.content, sec, doc)}
	}
	return c.splitByParagraphs(sec, doc)
}

func (c *Chunker) splitByParagraphs(sec section, doc Document) []Chunk {
	var chunks []Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, c.newChunk(strings.Join(current, "\n\n"), sec, doc))
	}

	for _, para := range paragraphRE.Split(sec.content, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraTokens := EstimateTokens(para)

		if paraTokens > c.maxTokens {
			flush()
			current = nil
			currentTokens = 0
			chunks = append(chunks, c.splitBySentences(para, sec, doc)...)
			continue
		}

		if currentTokens+paraTokens > c.maxTokens {
			flush()
			if c.overlapTokens > 0 && len(current) > 0 {
				overlap := current[len(current)-1]
				current = []string{overlap, para}
				currentTokens = EstimateTokens(overlap) + paraTokens
			} else {
				current = []string{para}
				currentTokens = paraTokens
			}
			continue
		}
		current = append(current, para)
		currentTokens += paraTokens
	}
	flush()
	return chunks
}

func (c *Chunker) splitBySentences(content string, sec section, doc Document) []Chunk {
	var chunks []Chunk
	var current []string
	currentTokens := 0

	for _, sentence := range splitSentences(content) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentTokens := EstimateTokens(sentence)
		if currentTokens+sentTokens > c.maxTokens {
			if len(current) > 0 {
				chunks = append(chunks, c.newChunk(strings.Join(current, " "), sec, doc))
			}
			current = []string{sentence}
			currentTokens = sentTokens
			continue
		}
		current = append(current, sentence)
		currentTokens += sentTokens
	}
	if len(current) > 0 {
		chunks = append(chunks, c.newChunk(strings.Join(current, " "), sec, doc))
	}
	return chunks
}

// splitSentences breaks text after terminal punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	marked := sentenceRE.ReplaceAllString(text, "$1\x00")
	return strings.Split(marked, "\x00")
}

func (c *Chunker) newChunk(content string, sec section, doc Document) Chunk {
	return Chunk{
		Content:       content,
		ChapterID:     doc.ChapterID,
		ChapterTitle:  doc.ChapterTitle,
		SectionID:     sec.id,
		SectionTitle:  sec.title,
		Path:          doc.Path,
		Language:      doc.Language,
		TokenEstimate: EstimateTokens(content),
	}
}

func slugify(text string) string {
	slug := nonSlugRE.ReplaceAllString(strings.ToLower(text), "")
	slug = spaceRE.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}
