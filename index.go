package ragger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/flarexio/ragger/vector"
)

// Embedder turns text into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text in input order. It fails as a
	// whole when any single text fails.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel answers a prompt given the prior conversation.
type ChatModel interface {
	Chat(ctx context.Context, prompt string, history []Message) (string, error)
}

// BuildIndex embeds every record and stores it in the collection.
func BuildIndex(ctx context.Context, records []Record, embedder Embedder, collection vector.Collection) error {
	log := zap.L().With(
		zap.String("action", "build_index"),
		zap.Int("records", len(records)),
	)

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.String()
	}

	embeddings, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("got error while embedding: %w", err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("got error while embedding: expected %d embeddings, got %d",
			len(records), len(embeddings))
	}

	docs := make([]vector.Document, len(records))
	for i, r := range records {
		docs[i] = RecordToDocument(r, i, embeddings[i])
	}

	if len(docs) > 0 {
		if err := collection.AddDocuments(ctx, docs); err != nil {
			return err
		}
	}

	log.Info("index built", zap.Int("documents", collection.Count()))
	return nil
}
