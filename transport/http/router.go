package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/ragger"

	mcpE "github.com/flarexio/ragger/mcp"
)

func AddRouters(r *gin.Engine, endpoints ragger.EndpointSet) {
	api := r.Group("/api")
	{
		api.POST("/ask", AskHandler(endpoints.Ask))
		api.POST("/reset", ResetHandler(endpoints.Reset))
		api.GET("/history", HistoryHandler(endpoints.History))
		api.GET("/employees/search", SearchHandler(endpoints.Search))
	}
}

func AddStreamableRouters(r *gin.Engine, endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint) {
	mcp := r.Group("/mcp")
	{
		mcp.POST("/", MCPStreamableHandler(endpoints))
	}
}
