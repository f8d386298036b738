package ragger

import (
	"context"
)

// ProxyMiddleware serves the Service through remote endpoints, ignoring next.
func ProxyMiddleware(endpoints *EndpointSet) ServiceMiddleware {
	return func(next Service) Service {
		return &proxyMiddleware{
			endpoints: endpoints,
		}
	}
}

type proxyMiddleware struct {
	endpoints *EndpointSet
}

func (mw *proxyMiddleware) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := mw.endpoints.Ask(ctx, AskRequest{prompt})
	if err != nil {
		return "", err
	}

	answer, ok := resp.(AskResponse)
	if !ok {
		return "", ErrInvalidResponse
	}

	return answer.Answer, nil
}

func (mw *proxyMiddleware) Reset(ctx context.Context) error {
	_, err := mw.endpoints.Reset(ctx, nil)
	return err
}

func (mw *proxyMiddleware) Search(ctx context.Context, query string, k ...int) ([]Match, error) {
	n := 0
	if len(k) > 0 {
		n = k[0]
	}

	req := SearchRequest{
		Query: query,
		K:     n,
	}

	resp, err := mw.endpoints.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	matches, ok := resp.([]Match)
	if !ok {
		return nil, ErrInvalidResponse
	}

	return matches, nil
}

func (mw *proxyMiddleware) History(ctx context.Context) ([]Message, error) {
	resp, err := mw.endpoints.History(ctx, nil)
	if err != nil {
		return nil, err
	}

	history, ok := resp.([]Message)
	if !ok {
		return nil, ErrInvalidResponse
	}

	return history, nil
}
