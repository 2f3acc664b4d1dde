// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"testing"
)

func TestInMemoryStoreSearch(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	if err := store.EnsureCollection(ctx, "chunks", 3); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	points := []Point{
		{ID: "a", Vector: []float32{1, 0, 0}, Payload: map[string]interface{}{"chapter_id": "ch-1", "content": "kinematics"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Payload: map[string]interface{}{"chapter_id": "ch-2", "content": "sensors"}},
		{ID: "c", Vector: []float32{0.9, 0.1, 0}, Payload: map[string]interface{}{"chapter_id": "ch-1", "content": "dynamics"}},
	}
	if err := store.Upsert(ctx, "chunks", points); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := store.Search(ctx, "chunks", []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" {
		t.Fatalf("expected exact match first, got %s", results[0].ID)
	}
}

func TestInMemoryStoreFilter(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	store.EnsureCollection(ctx, "chunks", 2)
	store.Upsert(ctx, "chunks", []Point{
		{ID: "a", Vector: []float32{1, 0}, Payload: map[string]interface{}{"chapter_id": "ch-1"}},
		{ID: "b", Vector: []float32{1, 0}, Payload: map[string]interface{}{"chapter_id": "ch-2"}},
	})

	results, err := store.Search(ctx, "chunks", []float32{1, 0}, 10, map[string]string{"chapter_id": "ch-2"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "b" {
		t.Fatalf("filter should keep only ch-2, got %+v", results)
	}
}

func TestInMemoryStoreMissingCollection(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Search(context.Background(), "nope", []float32{1}, 1, nil); err == nil {
		t.Fatalf("expected error for missing collection")
	}
}

func TestInMemoryStoreUpsertReplaces(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	store.Upsert(ctx, "chunks", []Point{{ID: "a", Vector: []float32{1, 0}}})
	store.Upsert(ctx, "chunks", []Point{{ID: "a", Vector: []float32{0, 1}, Payload: map[string]interface{}{"v": "2"}}})

	results, err := store.Search(ctx, "chunks", []float32{0, 1}, 1, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Payload["v"] != "2" {
		t.Fatalf("upsert should replace point, got %+v", results)
	}
}
