package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	configadapter "github.com/pipegate/pipegate/internal/adapters/outbound/config"
	"github.com/pipegate/pipegate/internal/adapters/outbound/resultstore"
	"github.com/pipegate/pipegate/internal/application"
)

// registerResources registers all pipegate MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	s.AddResource(
		mcplib.NewResource(
			"pipegate://results",
			"Validation Results",
			mcplib.WithResourceDescription("Structured results document of the most recent validation session"),
			mcplib.WithMIMEType("application/json"),
		),
		handleResultsResource(projectPath),
	)

	s.AddResource(
		mcplib.NewResource(
			"pipegate://report",
			"Compliance Report",
			mcplib.WithResourceDescription("Markdown compliance report rendered from the most recent results document"),
			mcplib.WithMIMEType("text/markdown"),
		),
		handleReportResource(projectPath),
	)
}

func handleResultsResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		doc, err := loadResults(projectPath)
		if err != nil {
			return nil, err
		}

		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling results: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "pipegate://results",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleReportResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		doc, err := loadResults(projectPath)
		if err != nil {
			return nil, err
		}

		report, err := application.RenderReport(doc)
		if err != nil {
			return nil, fmt.Errorf("rendering report: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "pipegate://report",
				MIMEType: "text/markdown",
				Text:     report,
			},
		}, nil
	}
}

func loadResults(projectPath string) (map[string]any, error) {
	cfg, err := configadapter.New().Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	doc, err := resultstore.Load(filepath.Join(projectPath, cfg.OutputDir, application.ResultsFileName))
	if err != nil {
		return nil, fmt.Errorf("loading results: %w", err)
	}
	return doc, nil
}
