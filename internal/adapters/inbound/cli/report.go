package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	configadapter "github.com/pipegate/pipegate/internal/adapters/outbound/config"
	"github.com/pipegate/pipegate/internal/adapters/outbound/resultstore"
	"github.com/pipegate/pipegate/internal/application"
)

func newReportCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "report [path]",
		Short: "Render the markdown report from an existing results document",
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

			resultsPath := input
			if resultsPath == "" {
				cfg, err := configadapter.New().Load(absPath)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				resultsPath = filepath.Join(absPath, cfg.OutputDir, application.ResultsFileName)
			}

			doc, err := resultstore.Load(resultsPath)
			if err != nil {
				return fmt.Errorf("loading results: %w", err)
			}

			report, err := application.RenderReport(doc)
			if err != nil {
				return fmt.Errorf("rendering report: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Results document to render (defaults to the project's results.json)")

	return cmd
}
