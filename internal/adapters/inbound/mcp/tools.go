package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	configadapter "github.com/pipegate/pipegate/internal/adapters/outbound/config"
	"github.com/pipegate/pipegate/internal/adapters/outbound/gitinfo"
	"github.com/pipegate/pipegate/internal/adapters/outbound/history"
	"github.com/pipegate/pipegate/internal/adapters/outbound/logging"
	"github.com/pipegate/pipegate/internal/adapters/outbound/resultstore"
	"github.com/pipegate/pipegate/internal/adapters/outbound/runner"
	"github.com/pipegate/pipegate/internal/adapters/outbound/scanner"
	"github.com/pipegate/pipegate/internal/adapters/outbound/sysmon"
	"github.com/pipegate/pipegate/internal/application"
	"github.com/pipegate/pipegate/internal/domain"
)

// registerTools registers all pipegate MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	s.AddTool(
		mcplib.NewTool("pipegate_validate",
			mcplib.WithDescription("Run the full compliance dimension set against the project and return the composite score, grade, and per-dimension results as JSON"),
			mcplib.WithNumber("min_score",
				mcplib.Description("Override the configured pass threshold (1-100)"),
			),
		),
		handleValidate(projectPath),
	)

	s.AddTool(
		mcplib.NewTool("pipegate_history",
			mcplib.WithDescription("Return the recorded validation history for the project"),
		),
		handleHistory(projectPath),
	)
}

// newSessionLogger builds a file-only logger: MCP clients get structured
// results, never log lines on stdio. The returned close func releases the
// log file after the run.
func newSessionLogger(projectPath string, cfg domain.ProjectConfig) (*logging.Logger, func()) {
	logPath := filepath.Join(projectPath, cfg.OutputDir, application.LogFileName)
	logger, closeFile, err := logging.NewWithFile(nil, logPath)
	if err != nil {
		return logging.New(nil, nil), func() {}
	}
	return logger, func() { _ = closeFile() }
}

// newService wires the production adapters.
func newService(logger domain.EventLog) *application.SessionService {
	return application.NewSessionService(
		scanner.New(),
		runner.New(),
		sysmon.New(),
		gitinfo.New(),
		history.New(),
		logger,
		func(p string) domain.ResultStore { return resultstore.New(p) },
	)
}

func handleValidate(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := configadapter.New().Load(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		opts := application.RunOptions{}
		if min := request.GetFloat("min_score", 0); min > 0 {
			opts.MinScore = int(min)
		}

		logger, closeLog := newSessionLogger(projectPath, cfg)
		defer closeLog()

		result, err := newService(logger).Run(ctx, projectPath, cfg, opts)
		if err != nil {
			return errorResult(fmt.Sprintf("validation aborted: %v", err)), nil
		}

		// The document itself is served as a resource; the tool returns the
		// verdict view.
		result.Document = nil
		return jsonResult(result)
	}
}

func handleHistory(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		entries, err := history.New().Load(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading history: %v", err)), nil
		}
		return jsonResult(entries)
	}
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return mcplib.NewToolResultError(msg)
}
