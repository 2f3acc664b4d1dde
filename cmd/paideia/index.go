package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jllopis/paideia/pkg/chunker"
	"github.com/jllopis/paideia/pkg/config"
	"github.com/jllopis/paideia/pkg/memory"
	"github.com/jllopis/paideia/pkg/memory/qdrant"
	"github.com/jllopis/paideia/pkg/telemetry"
)

// upsertBatchSize bounds the number of points sent per upsert call.
const upsertBatchSize = 64

func runIndex(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := flags.String("config", "", "path to YAML config file")
	contentDir := flags.String("content", "", "directory with chapter subdirectories of Markdown files")
	language := flags.String("language", "en", "language code for the indexed content (en or ur)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *contentDir == "" {
		return fmt.Errorf("the -content flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	embedder := buildEmbedder(ctx, cfg)
	if embedder == nil {
		return fmt.Errorf("embedder not configured: set llm.api_key or GOOGLE_API_KEY")
	}
	vectors, err := qdrant.New(cfg.Qdrant.Addr)
	if err != nil {
		return fmt.Errorf("cannot connect to qdrant at %s: %w", cfg.Qdrant.Addr, err)
	}
	if err := vectors.EnsureCollection(ctx, cfg.Qdrant.Collection, uint64(embedder.Dimensions())); err != nil {
		return err
	}

	idx := &indexer{
		chunker:    chunker.New(),
		embedder:   embedder,
		vectors:    vectors,
		collection: cfg.Qdrant.Collection,
	}
	total, err := idx.indexContent(ctx, *contentDir, *language)
	if err != nil {
		return err
	}
	slog.Info("indexing complete", "chunks", total, "collection", cfg.Qdrant.Collection)
	return nil
}

type indexer struct {
	chunker    *chunker.Chunker
	embedder   memory.Embedder
	vectors    memory.VectorStore
	collection string
}

// indexContent indexes every chapter directory under root. Each
// immediate subdirectory is one chapter; its chunks get the chapter id
// <dir>-<language>.
func (idx *indexer) indexContent(ctx context.Context, root, language string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, err
	}

	var chapters []string
	for _, entry := range entries {
		if entry.IsDir() {
			chapters = append(chapters, entry.Name())
		}
	}
	sort.Strings(chapters)
	if len(chapters) == 0 {
		return 0, fmt.Errorf("no chapter directories under %s", root)
	}

	total := 0
	for _, name := range chapters {
		count, err := idx.indexChapter(ctx, filepath.Join(root, name), name, language)
		if err != nil {
			return total, err
		}
		total += count
	}
	return total, nil
}

func (idx *indexer) indexChapter(ctx context.Context, dir, name, language string) (int, error) {
	chapterID := name + "-" + language
	chapterTitle := chapterTitleFromDir(name)
	slog.Info("indexing chapter", "chapter", chapterID, "title", chapterTitle)

	total := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMarkdown(path) {
			return nil
		}
		count, err := idx.indexFile(ctx, path, chapterID, chapterTitle, language)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
		total += count
		return nil
	})
	return total, err
}

func (idx *indexer) indexFile(ctx context.Context, path, chapterID, chapterTitle, language string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	chunks := idx.chunker.ChunkDocument(string(content), chunker.Document{
		ChapterID:    chapterID,
		ChapterTitle: chapterTitle,
		Path:         path,
		Language:     language,
	})
	if len(chunks) == 0 {
		slog.Info("no chunks generated", "path", path)
		return 0, nil
	}

	points := make([]memory.Point, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := idx.embedder.EmbedDocument(ctx, chunk.Content)
		if err != nil {
			return 0, fmt.Errorf("embedding chunk %s: %w", chunk.SectionID, err)
		}
		points = append(points, memory.Point{
			ID:      uuid.NewString(),
			Vector:  vector,
			Payload: chunk.Payload(),
		})
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := idx.vectors.Upsert(ctx, idx.collection, points[start:end]); err != nil {
			return 0, err
		}
	}

	slog.Info("indexed file", "path", path, "chunks", len(points))
	return len(points), nil
}

var chapterPrefixRE = regexp.MustCompile(`^\d+[-_]`)

// chapterTitleFromDir derives a display title from a chapter directory
// name: "03-sensors" becomes "Sensors".
func chapterTitleFromDir(name string) string {
	name = chapterPrefixRE.ReplaceAllString(name, "")
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdx":
		return true
	}
	return false
}
