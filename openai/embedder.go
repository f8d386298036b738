// Package openai adapts OpenAI-compatible embedding and chat completion APIs
// to the ragger capabilities.
package openai

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/philippgille/chromem-go"
	"golang.org/x/sync/errgroup"

	"github.com/flarexio/ragger"
)

func NewEmbedder(cfg ragger.EmbeddingConfig) (*Embedder, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ragger.ErrMissingAPIKey, cfg.APIKeyEnv)
	}

	embed := chromem.NewEmbeddingFuncOpenAICompat(cfg.BaseURL, apiKey, cfg.Model, nil)

	return NewEmbedderFunc(embed, cfg.Concurrency), nil
}

// NewEmbedderFunc wraps a single-text embedding function. Batches run up to
// concurrency requests at once; zero means one per CPU.
func NewEmbedderFunc(embed func(ctx context.Context, text string) ([]float32, error), concurrency int) *Embedder {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	return &Embedder{embed, concurrency}
}

type Embedder struct {
	embed       func(ctx context.Context, text string) ([]float32, error)
	concurrency int
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, text := range texts {
		g.Go(func() error {
			embedding, err := e.embed(ctx, text)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}

			embeddings[i] = embedding
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return embeddings, nil
}
