package ragger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingService struct {
	asks    []string
	resets  int
	history []Message
	fail    error
}

func (svc *countingService) Ask(ctx context.Context, prompt string) (string, error) {
	svc.asks = append(svc.asks, prompt)

	if svc.fail != nil {
		return "", svc.fail
	}

	svc.history = append(svc.history, UserMessage(prompt), AssistantMessage("ok: "+prompt))
	return "ok: " + prompt, nil
}

func (svc *countingService) Reset(ctx context.Context) error {
	svc.resets++
	svc.history = nil
	return nil
}

func (svc *countingService) Search(ctx context.Context, query string, k ...int) ([]Match, error) {
	return nil, nil
}

func (svc *countingService) History(ctx context.Context) ([]Message, error) {
	return svc.history, nil
}

func TestConsoleQuit(t *testing.T) {
	assert := assert.New(t)

	svc := new(countingService)
	out := new(bytes.Buffer)

	console := NewConsole(svc, strings.NewReader("quit\nWho is the engineer?\n"), out)

	err := console.Run(context.Background())
	assert.NoError(err)
	assert.Empty(svc.asks, "quit must not reach the service")
	assert.Contains(out.String(), Greeting)
}

func TestConsoleConversation(t *testing.T) {
	assert := assert.New(t)

	svc := new(countingService)
	out := new(bytes.Buffer)

	input := "  Who is the engineer?  \nreset\n\nquit\n"
	console := NewConsole(svc, strings.NewReader(input), out)

	err := console.Run(context.Background())
	assert.NoError(err)

	assert.Equal([]string{"Who is the engineer?", ""}, svc.asks, "blank lines are prompts too")
	assert.Equal(1, svc.resets)
	assert.Contains(out.String(), "ok: Who is the engineer?")
	assert.Contains(out.String(), ResetMessage)
	assert.Equal(4, strings.Count(out.String(), PromptMarker))
}

func TestConsoleEndOfInput(t *testing.T) {
	assert := assert.New(t)

	svc := new(countingService)
	console := NewConsole(svc, strings.NewReader("hello"), new(bytes.Buffer))

	err := console.Run(context.Background())
	assert.NoError(err)
	assert.Equal([]string{"hello"}, svc.asks)
}

func TestConsoleError(t *testing.T) {
	assert := assert.New(t)

	svc := &countingService{fail: errors.New("chat failed")}
	console := NewConsole(svc, strings.NewReader("first\nsecond\n"), new(bytes.Buffer))

	err := console.Run(context.Background())
	assert.EqualError(err, "chat failed")
	assert.Equal([]string{"first"}, svc.asks, "the loop stops at the first failure")
}

func TestConsoleLongLine(t *testing.T) {
	assert := assert.New(t)

	long := strings.Repeat("engineer ", 8000)

	svc := new(countingService)
	console := NewConsole(svc, strings.NewReader(long+"\nquit\n"), new(bytes.Buffer))

	err := console.Run(context.Background())
	assert.NoError(err)

	if assert.Len(svc.asks, 1) {
		assert.Equal(strings.TrimSpace(long), svc.asks[0])
		assert.Greater(len(svc.asks[0]), 64*1024)
	}
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("stdin closed")
}

func TestConsoleReadError(t *testing.T) {
	assert := assert.New(t)

	svc := new(countingService)
	console := NewConsole(svc, failingReader{}, new(bytes.Buffer))

	err := console.Run(context.Background())
	assert.EqualError(err, "stdin closed")
	assert.Empty(svc.asks)
}
