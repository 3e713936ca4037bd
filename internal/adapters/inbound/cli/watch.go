package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	configadapter "github.com/pipegate/pipegate/internal/adapters/outbound/config"
	"github.com/pipegate/pipegate/internal/application"
	"github.com/pipegate/pipegate/internal/domain"
)

const watchDebounce = 500 * time.Millisecond

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-run validation whenever project artifacts change",
		Long:  "Watch the project directory and re-run the full validation session, debounced, on every artifact change. Runs until interrupted; the exit code of individual runs is reported in the log, not the process status.",
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

			logger, closeLog := newSessionLogger(cmd.OutOrStdout(), absPath, cfg)
			defer closeLog()
			svc := newSessionService(logger)

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer watcher.Close()

			if err := addWatchDirs(watcher, absPath, cfg); err != nil {
				return fmt.Errorf("watching %s: %w", absPath, err)
			}

			runOnce := func() {
				if _, err := svc.Run(cmd.Context(), absPath, cfg, application.RunOptions{}); err != nil {
					logger.Errorf("validation aborted: %v", err)
				}
			}
			runOnce()
			logger.Infof("watching %s for artifact changes", absPath)

			debounce := time.NewTimer(watchDebounce)
			if !debounce.Stop() {
				<-debounce.C
			}

			outputDir := filepath.Join(absPath, cfg.OutputDir)
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op == fsnotify.Chmod || strings.HasPrefix(event.Name, outputDir) {
						continue
					}
					debounce.Reset(watchDebounce)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Warnf("watch error: %v", err)
				case <-debounce.C:
					runOnce()
				}
			}
		},
	}
	return cmd
}

// addWatchDirs registers every directory under root except excluded ones and
// the output directory, which would re-trigger validation on its own writes.
func addWatchDirs(watcher *fsnotify.Watcher, root string, cfg domain.ProjectConfig) error {
	excluded := make(map[string]bool, len(cfg.ExcludePaths)+1)
	for _, p := range cfg.ExcludePaths {
		excluded[p] = true
	}
	excluded[cfg.OutputDir] = true

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if path != root && excluded[d.Name()] {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
