package memory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/zhiwei-liang/geofile-go/internal/embedding"
	"github.com/zhiwei-liang/geofile-go/internal/metrics"
)

// QueryLimit is the number of nearest records returned by Query.
const QueryLimit = 5

// Record is one stored memory document.
type Record struct {
	ID        *surrealmodels.RecordID `json:"id,omitempty"`
	Content   string                  `json:"content"`
	Embedding []float32               `json:"embedding,omitempty"`
	Filepath  string                  `json:"filepath,omitempty"`
	Modified  string                  `json:"modified,omitempty"`
	Metadata  map[string]any          `json:"metadata,omitempty"`
}

// Match is a query hit with its cosine similarity score.
type Match struct {
	ID       *surrealmodels.RecordID `json:"id,omitempty"`
	Content  string                  `json:"content"`
	Filepath string                  `json:"filepath,omitempty"`
	Modified string                  `json:"modified,omitempty"`
	Metadata map[string]any          `json:"metadata,omitempty"`
	Score    float64                 `json:"score"`
}

// Store persists geodata reports and chat notes as embedded documents.
// Record identity is the md5 of the content, so storing the same text twice
// overwrites rather than duplicates.
type Store struct {
	client   *Client
	embedder embedding.Embedder
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewStore creates a store over an established client.
func NewStore(client *Client, embedder embedding.Embedder, collector *metrics.Collector, logger *slog.Logger) *Store {
	return &Store{client: client, embedder: embedder, metrics: collector, logger: logger}
}

// ContentID derives the stable record key for a piece of content.
func ContentID(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Add embeds content and upserts it. When sourcePath is non-empty the file's
// path and modification time are stamped into the record so stale entries can
// be told apart from current ones.
func (s *Store) Add(ctx context.Context, content, sourcePath string, metadata map[string]any) (string, error) {
	if content == "" {
		return "", fmt.Errorf("empty content")
	}

	var vec []float32
	err := s.metrics.Time(metrics.OpEmbedding, func() error {
		var embErr error
		vec, embErr = s.embedder.Embed(ctx, content)
		return embErr
	})
	if err != nil {
		return "", fmt.Errorf("embed content: %w", err)
	}

	rec := Record{
		Content:   content,
		Embedding: vec,
		Metadata:  metadata,
	}
	if sourcePath != "" {
		rec.Filepath = sourcePath
		if info, statErr := os.Stat(sourcePath); statErr == nil {
			rec.Modified = strconv.FormatInt(info.ModTime().Unix(), 10)
		}
	}

	id := ContentID(content)
	start := time.Now()
	_, err = surrealdb.Query[[]Record](ctx, s.client.DB(), `
		UPSERT type::thing('geo_memory', $id) SET
			content = $content,
			embedding = $embedding,
			filepath = $filepath,
			modified = $modified,
			metadata = $metadata
	`, map[string]any{
		"id":        id,
		"content":   rec.Content,
		"embedding": rec.Embedding,
		"filepath":  rec.Filepath,
		"modified":  rec.Modified,
		"metadata":  rec.Metadata,
	})
	s.metrics.Observe(metrics.OpMemoryAdd, time.Since(start), err != nil)
	if err != nil {
		return "", fmt.Errorf("upsert memory: %w", err)
	}

	s.logger.Debug("memory stored", "id", id, "filepath", rec.Filepath)
	return id, nil
}

// Query embeds the question and returns the closest records by cosine
// similarity. When filterPath is non-empty only records stamped with that
// source file are considered.
func (s *Store) Query(ctx context.Context, question, filterPath string) ([]Match, error) {
	var vec []float32
	err := s.metrics.Time(metrics.OpEmbedding, func() error {
		var embErr error
		vec, embErr = s.embedder.Embed(ctx, question)
		return embErr
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	sql := fmt.Sprintf(`
		SELECT id, content, filepath, modified, metadata,
			vector::similarity::cosine(embedding, $vec) AS score
		FROM geo_memory
		WHERE embedding <|%d,COSINE|> $vec`, QueryLimit)
	vars := map[string]any{"vec": vec}
	if filterPath != "" {
		sql += " AND filepath = $filepath"
		vars["filepath"] = filterPath
	}
	sql += " ORDER BY score DESC"

	start := time.Now()
	res, err := surrealdb.Query[[]Match](ctx, s.client.DB(), sql, vars)
	s.metrics.Observe(metrics.OpMemoryQuery, time.Since(start), err != nil)
	if err != nil {
		return nil, fmt.Errorf("query memory: %w", err)
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	return (*res)[0].Result, nil
}

// Forget removes every record stamped with the given source file.
func (s *Store) Forget(ctx context.Context, sourcePath string) error {
	_, err := surrealdb.Query[any](ctx, s.client.DB(),
		"DELETE geo_memory WHERE filepath = $filepath",
		map[string]any{"filepath": sourcePath})
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) error {
	_, err := surrealdb.Query[any](ctx, s.client.DB(), "DELETE geo_memory", nil)
	if err != nil {
		return fmt.Errorf("clear memory: %w", err)
	}
	return nil
}
