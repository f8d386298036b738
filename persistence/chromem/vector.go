package chromem

import (
	"context"
	"errors"
	"runtime"

	"github.com/philippgille/chromem-go"

	"github.com/flarexio/ragger/vector"
)

var ErrMissingEmbeddingFunc = errors.New("missing embedding function")

func NewChromemVectorDB(cfg vector.Config) (vector.VectorDB, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	return &chromemVectorDB{
		db:          chromem.NewDB(),
		concurrency: concurrency,
	}, nil
}

type chromemVectorDB struct {
	db          *chromem.DB
	concurrency int
}

func (v *chromemVectorDB) Collection(name string, embed vector.EmbeddingFunc) (vector.Collection, error) {
	if embed == nil {
		return nil, ErrMissingEmbeddingFunc
	}

	c, err := v.db.GetOrCreateCollection(name, nil, chromem.EmbeddingFunc(embed))
	if err != nil {
		return nil, err
	}

	return &collection{c, embed, v.concurrency}, nil
}

type collection struct {
	collection  *chromem.Collection
	embed       vector.EmbeddingFunc
	concurrency int
}

func (c *collection) AddDocuments(ctx context.Context, docs []vector.Document) error {
	documents := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		documents[i] = chromem.Document{
			ID:        doc.ID,
			Metadata:  doc.Metadata,
			Embedding: doc.Embedding,
			Content:   doc.Content,
		}
	}

	return c.collection.AddDocuments(ctx, documents, c.concurrency)
}

func (c *collection) Query(ctx context.Context, query string, k int) ([]vector.Document, error) {
	if k > c.collection.Count() {
		k = c.collection.Count()
	}

	if k <= 0 {
		return []vector.Document{}, nil
	}

	// chromem refuses empty query text, so embed here and query by vector.
	embedding, err := c.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := c.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, err
	}

	docs := make([]vector.Document, len(results))
	for i, result := range results {
		docs[i] = vector.Document{
			ID:         result.ID,
			Metadata:   result.Metadata,
			Embedding:  result.Embedding,
			Content:    result.Content,
			Similarity: result.Similarity,
		}
	}

	return docs, nil
}

func (c *collection) Count() int {
	return c.collection.Count()
}
