package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jllopis/paideia/pkg/chunker"
	"github.com/jllopis/paideia/pkg/memory"
)

type stubEmbedder struct {
	calls int
}

func (e *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (e *stubEmbedder) EmbedDocument(_ context.Context, _ string) ([]float32, error) {
	e.calls++
	return []float32{0, 1, 0}, nil
}

func (e *stubEmbedder) Dimensions() int { return 3 }

func writeContentTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	chapters := map[string]string{
		"01-intro/index.md": "# Introduction\n\nPhysical AI combines robotics and machine learning.\n",
		"03-sensors/lidar.mdx": "# Sensors\n\n## LIDAR\n\nLIDAR measures distance with laser pulses.\n",
		"03-sensors/notes.txt": "not markdown, must be skipped",
	}
	for rel, content := range chapters {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return root
}

func TestIndexContent(t *testing.T) {
	root := writeContentTree(t)
	embedder := &stubEmbedder{}
	vectors := memory.NewInMemoryStore()

	idx := &indexer{
		chunker:    chunker.New(),
		embedder:   embedder,
		vectors:    vectors,
		collection: "textbook",
	}
	total, err := idx.indexContent(context.Background(), root, "en")
	if err != nil {
		t.Fatalf("indexContent: %v", err)
	}
	if total == 0 {
		t.Fatal("no chunks indexed")
	}
	if embedder.calls != total {
		t.Errorf("embedded %d chunks but indexed %d", embedder.calls, total)
	}

	results, err := vectors.Search(context.Background(), "textbook", []float32{0, 1, 0}, 100, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != total {
		t.Fatalf("store holds %d points, want %d", len(results), total)
	}

	chapterIDs := map[string]bool{}
	for _, res := range results {
		id, _ := res.Payload["chapter_id"].(string)
		chapterIDs[id] = true
		if lang, _ := res.Payload["language"].(string); lang != "en" {
			t.Errorf("language = %q, want en", lang)
		}
	}
	if !chapterIDs["01-intro-en"] || !chapterIDs["03-sensors-en"] {
		t.Errorf("chapter ids = %v, want 01-intro-en and 03-sensors-en", chapterIDs)
	}
}

func TestIndexContentFiltered(t *testing.T) {
	root := writeContentTree(t)
	embedder := &stubEmbedder{}
	vectors := memory.NewInMemoryStore()

	idx := &indexer{
		chunker:    chunker.New(),
		embedder:   embedder,
		vectors:    vectors,
		collection: "textbook",
	}
	if _, err := idx.indexContent(context.Background(), root, "ur"); err != nil {
		t.Fatalf("indexContent: %v", err)
	}

	results, err := vectors.Search(context.Background(), "textbook", []float32{0, 1, 0}, 100,
		map[string]string{"chapter_id": "03-sensors-ur"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("chapter filter returned no points")
	}
}

func TestIndexContentEmptyRoot(t *testing.T) {
	idx := &indexer{
		chunker:    chunker.New(),
		embedder:   &stubEmbedder{},
		vectors:    memory.NewInMemoryStore(),
		collection: "textbook",
	}
	if _, err := idx.indexContent(context.Background(), t.TempDir(), "en"); err == nil {
		t.Fatal("expected error for a root without chapter directories")
	}
}

func TestChapterTitleFromDir(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"01-intro", "Intro"},
		{"03-sensors", "Sensors"},
		{"05-ai-integration", "Ai Integration"},
		{"appendix", "Appendix"},
	}
	for _, tc := range cases {
		if got := chapterTitleFromDir(tc.in); got != tc.want {
			t.Errorf("chapterTitleFromDir(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsMarkdown(t *testing.T) {
	if !isMarkdown("a/b/index.md") || !isMarkdown("c.MDX") {
		t.Error("markdown extensions not recognized")
	}
	if isMarkdown("notes.txt") || isMarkdown("dir.md/file.go") {
		t.Error("non-markdown paths accepted")
	}
}
