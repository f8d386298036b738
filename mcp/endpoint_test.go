package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/flarexio/ragger"
)

type stubService struct {
	prompts []string
	queries []string
	k       int
}

func (svc *stubService) Ask(ctx context.Context, prompt string) (string, error) {
	svc.prompts = append(svc.prompts, prompt)
	return "Jane Doe is the engineer.", nil
}

func (svc *stubService) Reset(ctx context.Context) error {
	return nil
}

func (svc *stubService) Search(ctx context.Context, query string, k ...int) ([]ragger.Match, error) {
	svc.queries = append(svc.queries, query)
	if len(k) > 0 {
		svc.k = k[0]
	}

	return []ragger.Match{
		{Record: ragger.Record{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com", Role: "Engineer", Salary: 90000}},
	}, nil
}

func (svc *stubService) History(ctx context.Context) ([]ragger.Message, error) {
	return nil, nil
}

func TestUnmarshalInitializeRequest(t *testing.T) {
	assert := assert.New(t)

	input := []byte(`{
	  "jsonrpc": "2.0",
	  "id": 1,
	  "method": "initialize",
	  "params": {
	    "protocolVersion": "2024-11-05",
	    "capabilities": {},
	    "clientInfo": {
	      "name": "ExampleClient",
	      "version": "1.0.0"
	    }
	  }
	}`)

	var req JSONRPCRequest
	if err := json.Unmarshal(input, &req); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(mcp.JSONRPC_VERSION, req.JSONRPC)
	assert.Equal(mcp.NewRequestId(int64(1)), req.ID)
	assert.Equal(mcp.MethodInitialize, req.Method)

	resp := InitializeEndpoint(new(stubService))(context.Background(), req)

	result, ok := resp.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid type")
		return
	}

	initResult, ok := result.Result.(*mcp.InitializeResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	assert.Equal("2024-11-05", initResult.ProtocolVersion)
	assert.Equal("ragger", initResult.ServerInfo.Name)
}

func TestCallSearchEmployees(t *testing.T) {
	assert := assert.New(t)

	input := []byte(`{
	  "jsonrpc": "2.0",
	  "id": 2,
	  "method": "tools/call",
	  "params": {
	    "name": "search_employees",
	    "arguments": {
	      "query": "engineer",
	      "k": 3
	    }
	  }
	}`)

	var req JSONRPCRequest
	if err := json.Unmarshal(input, &req); err != nil {
		assert.Fail(err.Error())
		return
	}

	svc := new(stubService)
	resp := CallToolEndpoint(svc)(context.Background(), req)

	result, ok := resp.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid type")
		return
	}

	toolResult, ok := result.Result.(*mcp.CallToolResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	assert.False(toolResult.IsError)
	assert.Equal([]string{"engineer"}, svc.queries)
	assert.Equal(3, svc.k)

	content, ok := toolResult.Content[0].(mcp.TextContent)
	if !ok {
		assert.Fail("invalid content type")
		return
	}

	assert.Contains(content.Text, "Role: Engineer")
}

func TestCallAskEmployees(t *testing.T) {
	assert := assert.New(t)

	input := []byte(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"ask_employees","arguments":{"prompt":"Who is the engineer?"}}}`)

	var req JSONRPCRequest
	if err := json.Unmarshal(input, &req); err != nil {
		assert.Fail(err.Error())
		return
	}

	svc := new(stubService)
	resp := CallToolEndpoint(svc)(context.Background(), req)

	result, ok := resp.(mcp.JSONRPCResponse)
	if !ok {
		assert.Fail("invalid type")
		return
	}

	toolResult, ok := result.Result.(*mcp.CallToolResult)
	if !ok {
		assert.Fail("invalid result type")
		return
	}

	assert.Equal([]string{"Who is the engineer?"}, svc.prompts)

	content, ok := toolResult.Content[0].(mcp.TextContent)
	if !ok {
		assert.Fail("invalid content type")
		return
	}

	assert.Equal("Jane Doe is the engineer.", content.Text)
}

func TestCallUnknownTool(t *testing.T) {
	assert := assert.New(t)

	input := []byte(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"get_weather"}}`)

	var req JSONRPCRequest
	if err := json.Unmarshal(input, &req); err != nil {
		assert.Fail(err.Error())
		return
	}

	resp := CallToolEndpoint(new(stubService))(context.Background(), req)

	_, ok := resp.(mcp.JSONRPCError)
	assert.True(ok)
}

func TestTools(t *testing.T) {
	assert := assert.New(t)

	tools := Tools()

	assert.Len(tools, 2)
	assert.Equal(ToolSearchEmployees, tools[0].Name)
	assert.Contains(tools[0].InputSchema.Required, "query")
	assert.Equal(ToolAskEmployees, tools[1].Name)
	assert.Contains(tools[1].InputSchema.Required, "prompt")
}
