package ragger

import (
	"context"

	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "ragger"),
	)

	return func(next Service) Service {
		log.Info("service initialized")

		return &loggingMiddleware{
			log:  log,
			next: next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Ask(ctx context.Context, prompt string) (string, error) {
	log := mw.log.With(
		zap.String("action", "ask"),
		zap.String("prompt", prompt),
	)

	answer, err := mw.next.Ask(ctx, prompt)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}

	log.Info("prompt answered", zap.Int("answer_length", len(answer)))
	return answer, nil
}

func (mw *loggingMiddleware) Reset(ctx context.Context) error {
	log := mw.log.With(
		zap.String("action", "reset"),
	)

	err := mw.next.Reset(ctx)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("conversation reset")
	return nil
}

func (mw *loggingMiddleware) Search(ctx context.Context, query string, k ...int) ([]Match, error) {
	var n int
	if len(k) > 0 {
		n = k[0]
	}

	log := mw.log.With(
		zap.String("action", "search"),
		zap.String("query", query),
	)

	if n > 0 {
		log = log.With(
			zap.Int("k", n),
		)
	}

	matches, err := mw.next.Search(ctx, query, k...)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("records searched", zap.Int("count", len(matches)))
	return matches, nil
}

func (mw *loggingMiddleware) History(ctx context.Context) ([]Message, error) {
	log := mw.log.With(
		zap.String("action", "history"),
	)

	history, err := mw.next.History(ctx)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Debug("history listed", zap.Int("turns", len(history)))
	return history, nil
}
