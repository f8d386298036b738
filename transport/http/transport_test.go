package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/flarexio/ragger"

	mcpE "github.com/flarexio/ragger/mcp"
)

type stubService struct {
	history []ragger.Message
	fail    error
}

func (svc *stubService) Ask(ctx context.Context, prompt string) (string, error) {
	if svc.fail != nil {
		return "", svc.fail
	}

	svc.history = append(svc.history, ragger.UserMessage(prompt), ragger.AssistantMessage("Jane Doe"))
	return "Jane Doe", nil
}

func (svc *stubService) Reset(ctx context.Context) error {
	svc.history = nil
	return nil
}

func (svc *stubService) Search(ctx context.Context, query string, k ...int) ([]ragger.Match, error) {
	jane := ragger.Match{
		Record:     ragger.Record{FirstName: "Jane", LastName: "Doe", Role: "Engineer", Salary: 90000},
		Similarity: 0.9,
	}

	n := 1
	if len(k) > 0 && k[0] > 0 {
		n = k[0]
	}

	matches := make([]ragger.Match, n)
	for i := range matches {
		matches[i] = jane
	}

	return matches, nil
}

func (svc *stubService) History(ctx context.Context) ([]ragger.Message, error) {
	return svc.history, nil
}

func newRouter(svc ragger.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	AddRouters(r, ragger.MakeEndpoints(svc))
	AddStreamableRouters(r, mcpE.Endpoints(svc))

	return r
}

func TestAskHandler(t *testing.T) {
	assert := assert.New(t)

	svc := new(stubService)
	r := newRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"prompt":"Who is the engineer?"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(http.StatusOK, w.Code)

	var resp ragger.AskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal("Jane Doe", resp.Answer)
	assert.Len(svc.history, 2)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	r.ServeHTTP(w, req)

	var history []ragger.Message
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Len(history, 2)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	r.ServeHTTP(w, req)

	assert.Equal(http.StatusOK, w.Code)
	assert.Empty(svc.history)
}

func TestAskHandlerFailure(t *testing.T) {
	assert := assert.New(t)

	r := newRouter(&stubService{fail: errors.New("chat failed")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"prompt":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(http.StatusExpectationFailed, w.Code)
	assert.Equal("chat failed", w.Body.String())
}

func TestSearchHandler(t *testing.T) {
	assert := assert.New(t)

	r := newRouter(new(stubService))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/employees/search?query=engineer&k=2", nil)
	r.ServeHTTP(w, req)

	assert.Equal(http.StatusOK, w.Code)

	var matches []ragger.Match
	if err := json.Unmarshal(w.Body.Bytes(), &matches); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Len(matches, 2)
	assert.Equal("Engineer", matches[0].Record.Role)
}

func TestMCPStreamableHandler(t *testing.T) {
	assert := assert.New(t)

	r := newRouter(new(stubService))

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(http.StatusOK, w.Code)
	assert.Contains(w.Body.String(), mcpE.ToolSearchEmployees)

	body = `{"jsonrpc":"2.0","id":2,"method":"resources/list"}`

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/mcp/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(http.StatusNotFound, w.Code)
}
