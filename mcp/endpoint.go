package mcp

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/ragger"
)

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      mcp.RequestId   `json:"id"`
	Method  mcp.MCPMethod   `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// ErrorResponse builds a JSON-RPC error reply for the request id.
func ErrorResponse(id mcp.RequestId, code int, message string) mcp.JSONRPCError {
	return mcp.JSONRPCError{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      id,
		Error: struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    any    `json:"data,omitempty"`
		}{
			Code:    code,
			Message: message,
		},
	}
}

type MCPEndpoint func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage

const (
	ToolSearchEmployees = "search_employees"
	ToolAskEmployees    = "ask_employees"
)

const MCPSERVER_INSTRUCTIONS string = `Ragger answers questions about employees loaded from a CSV file.

Available tools:
- search_employees: find the employees closest to a natural language query
- ask_employees: ask a question; relevant employees are retrieved and given to the chat model as context

ask_employees shares one conversation; previous questions and answers are part of the context.`

func Tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolSearchEmployees,
			mcp.WithDescription("Search employee records by semantic similarity"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Natural language description of the employees to find"),
			),
			mcp.WithNumber("k",
				mcp.Description("Maximum number of employees to return"),
			),
		),
		mcp.NewTool(ToolAskEmployees,
			mcp.WithDescription("Ask a question answered from the employee records"),
			mcp.WithString("prompt",
				mcp.Required(),
				mcp.Description("The question to ask"),
			),
		),
	}
}

func InitializeEndpoint(svc ragger.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params mcp.InitializeParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		protocolVersion := mcp.LATEST_PROTOCOL_VERSION
		if clientVersion := params.ProtocolVersion; clientVersion != "" {
			if slices.Contains(mcp.ValidProtocolVersions, clientVersion) {
				protocolVersion = clientVersion
			}
		}

		result := &mcp.InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: mcp.ServerCapabilities{
				Tools: &struct {
					ListChanged bool `json:"listChanged,omitempty"`
				}{},
			},
			ServerInfo: mcp.Implementation{
				Name:    "ragger",
				Version: "1.0.0",
			},
			Instructions: MCPSERVER_INSTRUCTIONS,
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func PingEndpoint(svc ragger.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  struct{}{},
		}
	}
}

func ListToolsEndpoint(svc ragger.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		result := &mcp.ListToolsResult{
			Tools: Tools(),
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func CallToolEndpoint(svc ragger.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params mcp.CallToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		args, _ := params.Arguments.(map[string]any)

		var result *mcp.CallToolResult

		switch params.Name {
		case ToolSearchEmployees:
			query, _ := args["query"].(string)

			var k int
			if n, ok := args["k"].(float64); ok {
				k = int(n)
			}

			matches, err := svc.Search(ctx, query, k)
			if err != nil {
				result = mcp.NewToolResultError(err.Error())
				break
			}

			texts := make([]string, len(matches))
			for i, m := range matches {
				texts[i] = m.Record.String()
			}

			result = mcp.NewToolResultText(strings.Join(texts, "\n\n"))

		case ToolAskEmployees:
			prompt, _ := args["prompt"].(string)

			answer, err := svc.Ask(ctx, prompt)
			if err != nil {
				result = mcp.NewToolResultError(err.Error())
				break
			}

			result = mcp.NewToolResultText(answer)

		default:
			return ErrorResponse(req.ID, mcp.METHOD_NOT_FOUND, "tool not found: "+params.Name)
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func Endpoints(svc ragger.Service) map[mcp.MCPMethod]MCPEndpoint {
	return map[mcp.MCPMethod]MCPEndpoint{
		mcp.MethodInitialize: InitializeEndpoint(svc),
		mcp.MethodPing:       PingEndpoint(svc),
		mcp.MethodToolsList:  ListToolsEndpoint(svc),
		mcp.MethodToolsCall:  CallToolEndpoint(svc),
	}
}
