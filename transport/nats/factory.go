package nats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/ragger"
)

// Chat completions are slow; asks get a longer deadline than nats.DefaultTimeout.
const AskTimeout = 2 * time.Minute

func MakeEndpoints(nc *nats.Conn, prefix string) *ragger.EndpointSet {
	return &ragger.EndpointSet{
		Ask:     AskEndpoint(nc, prefix+".ask"),
		Reset:   ResetEndpoint(nc, prefix+".reset"),
		Search:  SearchEndpoint(nc, prefix+".search"),
		History: HistoryEndpoint(nc, prefix+".history"),
	}
}

func AskEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(ragger.AskRequest)
		if !ok {
			return nil, ragger.ErrInvalidRequest
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		msg, err := nc.Request(topic, data, AskTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(msg); err != nil {
			return nil, err
		}

		var resp ragger.AskResponse
		if err := json.Unmarshal(msg.Data, &resp); err != nil {
			return nil, err
		}

		return resp, nil
	}
}

func ResetEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		msg, err := nc.Request(topic, nil, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		return nil, Error(msg)
	}
}

func SearchEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(ragger.SearchRequest)
		if !ok {
			return nil, ragger.ErrInvalidRequest
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		msg, err := nc.Request(topic, data, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(msg); err != nil {
			return nil, err
		}

		var matches []ragger.Match
		if err := json.Unmarshal(msg.Data, &matches); err != nil {
			return nil, err
		}

		return matches, nil
	}
}

func HistoryEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		msg, err := nc.Request(topic, nil, nats.DefaultTimeout)
		if err != nil {
			return nil, err
		}

		if err := Error(msg); err != nil {
			return nil, err
		}

		var history []ragger.Message
		if err := json.Unmarshal(msg.Data, &history); err != nil {
			return nil, err
		}

		return history, nil
	}
}

func Error(msg *nats.Msg) error {
	if msg == nil {
		return errors.New("nil message")
	}

	code := msg.Header.Get(micro.ErrorCodeHeader)
	if code == "" {
		return nil
	}

	description := msg.Header.Get(micro.ErrorHeader)
	if description == "" {
		description = "unknown error"
	}

	return errors.New(code + ":" + description)
}
