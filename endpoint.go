package ragger

import (
	"context"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	Ask     endpoint.Endpoint
	Reset   endpoint.Endpoint
	Search  endpoint.Endpoint
	History endpoint.Endpoint
}

func MakeEndpoints(svc Service) EndpointSet {
	return EndpointSet{
		Ask:     AskEndpoint(svc),
		Reset:   ResetEndpoint(svc),
		Search:  SearchEndpoint(svc),
		History: HistoryEndpoint(svc),
	}
}

type AskRequest struct {
	Prompt string `json:"prompt" form:"prompt"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

func AskEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(AskRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		answer, err := svc.Ask(ctx, req.Prompt)
		if err != nil {
			return nil, err
		}

		return AskResponse{answer}, nil
	}
}

func ResetEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		err := svc.Reset(ctx)
		return nil, err
	}
}

type SearchRequest struct {
	Query string `json:"query" form:"query"`
	K     int    `json:"k,omitempty" form:"k"`
}

func SearchEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(SearchRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		return svc.Search(ctx, req.Query, req.K)
	}
}

func HistoryEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		return svc.History(ctx)
	}
}
