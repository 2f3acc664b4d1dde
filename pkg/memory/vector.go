// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides the vector search and embedding contracts
// used by the retrieval skills.
package memory

import "context"

// VectorStore defines the interface for a vector database.
type VectorStore interface {
	// Upsert adds or updates points in the vector store.
	Upsert(ctx context.Context, collection string, points []Point) error
	// Search returns the nearest points to the given vector. filter
	// restricts results to points whose payload matches every key/value
	// pair; a nil filter matches everything.
	Search(ctx context.Context, collection string, vector []float32, limit int, filter map[string]string) ([]SearchResult, error)
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, name string, vectorSize uint64) error
}

// Point represents a data point in the vector store.
type Point struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

// SearchResult represents a result from a vector search.
type SearchResult struct {
	ID      string                 `json:"id"`
	Score   float32                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// Embedder defines the interface for converting text to vectors.
type Embedder interface {
	// EmbedQuery converts a search query into a vector.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// EmbedDocument converts a document into a vector for storage.
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the embedding dimensionality.
	Dimensions() int
}
