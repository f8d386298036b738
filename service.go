package ragger

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/flarexio/ragger/vector"
)

// Service defines one retrieval-augmented chat session over the employee index.
type Service interface {

	// Ask retrieves the records relevant to the prompt, forwards the augmented
	// prompt with the history to the chat model and records both turns.
	Ask(ctx context.Context, prompt string) (string, error)

	// Reset clears the chat history.
	Reset(ctx context.Context) error

	// Search returns the records closest to the query, best match first.
	Search(ctx context.Context, query string, k ...int) ([]Match, error)

	// History returns a copy of the chat history.
	History(ctx context.Context) ([]Message, error)
}

type ServiceMiddleware func(Service) Service

func NewService(cfg Config, collection vector.Collection, chat ChatModel) (Service, error) {
	if collection == nil || chat == nil {
		return nil, ErrInvalidRequest
	}

	topN := cfg.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	log := zap.L().With(
		zap.String("service", "ragger"),
	)

	return &service{
		collection: collection,
		chat:       chat,
		history:    make([]Message, 0),
		topN:       topN,
		maxTurns:   cfg.History.MaxTurns,
		log:        log,
	}, nil
}

type service struct {
	// Index is read-only after startup.
	collection vector.Collection
	chat       ChatModel

	// One turn at a time; transports may share the session.
	history []Message
	mu      sync.Mutex

	topN     int
	maxTurns int
	log      *zap.Logger
}

func (svc *service) Ask(ctx context.Context, prompt string) (string, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	matches, err := svc.Search(ctx, prompt, svc.topN)
	if err != nil {
		return "", err
	}

	records := make([]Record, len(matches))
	for i, m := range matches {
		records[i] = m.Record
	}

	augmented := AugmentPrompt(prompt, records)

	history := make([]Message, len(svc.history))
	copy(history, svc.history)

	answer, err := svc.chat.Chat(ctx, augmented, history)
	if err != nil {
		return "", err
	}

	svc.history = append(svc.history,
		UserMessage(augmented),
		AssistantMessage(answer),
	)

	if svc.maxTurns > 0 {
		svc.trimHistory()
	}

	return answer, nil
}

// trimHistory drops the oldest exchanges until at most maxTurns remain,
// never splitting a user turn from its answer.
func (svc *service) trimHistory() {
	limit := svc.maxTurns - svc.maxTurns%2
	if limit < 2 {
		limit = 2
	}

	if len(svc.history) <= limit {
		return
	}

	drop := len(svc.history) - limit
	svc.history = append([]Message(nil), svc.history[drop:]...)

	svc.log.Debug("history trimmed", zap.Int("dropped", drop))
}

func (svc *service) Reset(ctx context.Context) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.history = svc.history[:0]
	return nil
}

func (svc *service) Search(ctx context.Context, query string, k ...int) ([]Match, error) {
	n := svc.topN
	if len(k) > 0 && k[0] > 0 {
		n = k[0]
	}

	docs, err := svc.collection.Query(ctx, query, n)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(docs))
	for i, doc := range docs {
		record, err := DocumentToRecord(doc)
		if err != nil {
			return nil, err
		}

		matches[i] = Match{
			Record:     record,
			Similarity: doc.Similarity,
		}
	}

	return matches, nil
}

func (svc *service) History(ctx context.Context) ([]Message, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	history := make([]Message, len(svc.history))
	copy(history, svc.history)

	return history, nil
}
