package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	configadapter "github.com/pipegate/pipegate/internal/adapters/outbound/config"
	"github.com/pipegate/pipegate/internal/adapters/outbound/gitinfo"
	"github.com/pipegate/pipegate/internal/adapters/outbound/history"
	"github.com/pipegate/pipegate/internal/adapters/outbound/logging"
	"github.com/pipegate/pipegate/internal/adapters/outbound/resultstore"
	"github.com/pipegate/pipegate/internal/adapters/outbound/runner"
	"github.com/pipegate/pipegate/internal/adapters/outbound/scanner"
	"github.com/pipegate/pipegate/internal/adapters/outbound/sysmon"
	"github.com/pipegate/pipegate/internal/adapters/outbound/tui"
	"github.com/pipegate/pipegate/internal/application"
	"github.com/pipegate/pipegate/internal/domain"
)

func newValidateCmd() *cobra.Command {
	var (
		jsonOutput bool
		ciOutput   bool
		minScore   int
		outputDir  string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Run the compliance dimension set and gate on the composite score",
		Long:  "Run every compliance dimension against the project's artifacts, persist the structured results document and markdown report, and exit 0 when the composite score meets the pass threshold, 1 otherwise.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := configadapter.New().Load(absPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}

			// With --json the document is the stdout payload; logs go to
			// the log file only.
			var console io.Writer
			if !jsonOutput {
				console = cmd.OutOrStdout()
			}
			logger, closeLog := newSessionLogger(console, absPath, cfg)
			defer closeLog()

			opts := application.RunOptions{MinScore: minScore, ReportPath: reportPath}
			result, err := newSessionService(logger).Run(cmd.Context(), absPath, cfg, opts)
			if err != nil {
				return fmt.Errorf("validation aborted: %w", err)
			}

			switch {
			case jsonOutput:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result.Document); err != nil {
					return err
				}
			case ciOutput:
				// Plain single-line verdict for CI logs; the log lines above
				// already carry the per-check detail.
				verdict := "FAIL"
				if result.Composite.Passed {
					verdict = "PASS"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d/100 grade %s (threshold %d)\n",
					verdict, result.Composite.Total, result.Composite.Grade, result.Composite.PassThreshold)
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderResult(result))
			}

			if !result.Composite.Passed {
				return fmt.Errorf("compliance score %d is below threshold %d",
					result.Composite.Total, result.Composite.PassThreshold)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the results document as JSON")
	cmd.Flags().BoolVar(&ciOutput, "ci", false, "Plain single-line verdict output for CI logs")
	cmd.Flags().IntVar(&minScore, "min", 0, "Override the configured pass threshold")
	cmd.Flags().StringVar(&outputDir, "output", "", "Override the output directory (default .pipegate)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Override the markdown report location")

	return cmd
}

// newSessionService wires the production adapters.
func newSessionService(logger domain.EventLog) *application.SessionService {
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

// newSessionLogger builds the leveled logger, degrading to console-only when
// the log file cannot be opened.
func newSessionLogger(console io.Writer, projectPath string, cfg domain.ProjectConfig) (*logging.Logger, func()) {
	logPath := filepath.Join(projectPath, cfg.OutputDir, application.LogFileName)
	logger, closeFile, err := logging.NewWithFile(console, logPath)
	if err != nil {
		logger = logging.New(console, nil)
		logger.Warnf("log file unavailable: %v", err)
		return logger, func() {}
	}
	return logger, func() { _ = closeFile() }
}
