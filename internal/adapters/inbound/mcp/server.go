package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewPipegateMCPServer creates an MCP server exposing compliance validation
// to AI coding assistants. The projectPath is the root of the project under
// validation.
func NewPipegateMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"pipegate",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
