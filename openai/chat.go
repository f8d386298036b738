package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"

	"github.com/flarexio/ragger"
)

var ErrNoChoices = errors.New("no choices returned")

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []ragger.Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message ragger.Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewChatModel(cfg ragger.ChatConfig) (*ChatModel, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ragger.ErrMissingAPIKey, cfg.APIKeyEnv)
	}

	client := &http.Client{
		Timeout: cfg.Timeout.Duration(),
	}

	return NewChatModelWithClient(cfg, apiKey, client)
}

func NewChatModelWithClient(cfg ragger.ChatConfig, apiKey string, client *http.Client) (*ChatModel, error) {
	tgt, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions")
	if err != nil {
		return nil, err
	}

	endpoint := httptransport.NewClient(http.MethodPost, tgt,
		httptransport.EncodeJSONRequest,
		decodeChatResponse,
		httptransport.SetClient(client),
		httptransport.ClientBefore(
			httptransport.SetRequestHeader("Authorization", "Bearer "+apiKey),
		),
	).Endpoint()

	return &ChatModel{
		model:    cfg.Model,
		preamble: cfg.Preamble,
		endpoint: endpoint,
	}, nil
}

// ChatModel sends a preamble, the history and the prompt to a chat
// completion endpoint.
type ChatModel struct {
	model    string
	preamble string
	endpoint endpoint.Endpoint
}

func (m *ChatModel) Chat(ctx context.Context, prompt string, history []ragger.Message) (string, error) {
	messages := make([]ragger.Message, 0, len(history)+2)
	if m.preamble != "" {
		messages = append(messages, ragger.Message{
			Role:    ragger.RoleSystem,
			Content: m.preamble,
		})
	}

	messages = append(messages, history...)
	messages = append(messages, ragger.UserMessage(prompt))

	req := chatRequest{
		Model:    m.model,
		Messages: messages,
	}

	resp, err := m.endpoint(ctx, req)
	if err != nil {
		return "", err
	}

	result, ok := resp.(chatResponse)
	if !ok {
		return "", ragger.ErrInvalidResponse
	}

	if len(result.Choices) == 0 {
		return "", ErrNoChoices
	}

	return result.Choices[0].Message.Content, nil
}

func decodeChatResponse(ctx context.Context, resp *http.Response) (any, error) {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		var e errorResponse
		if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
			return nil, fmt.Errorf("chat completion failed: %s: %s", resp.Status, e.Error.Message)
		}

		return nil, fmt.Errorf("chat completion failed: %s", resp.Status)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result, nil
}
