// Package scanner walks a project directory and inventories the artifacts the
// compliance checks inspect.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pipegate/pipegate/internal/domain"
)

// Scanner implements domain.ArtifactScanner.
type Scanner struct{}

// New creates a Scanner.
func New() *Scanner { return &Scanner{} }

// Scan walks projectPath and returns the relative paths of all regular files,
// minus excluded directories. Workflow files under .github/workflows are
// indexed separately because several checks target them directly.
func (s *Scanner) Scan(projectPath string, excludePaths ...string) (*domain.ArtifactTree, error) {
	info, err := os.Stat(projectPath)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", projectPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %s: not a directory", projectPath)
	}

	excluded := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		excluded[p] = true
	}

	tree := &domain.ArtifactTree{Root: projectPath}

	err = filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(projectPath, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		tree.Files = append(tree.Files, rel)
		if isWorkflowFile(rel) {
			tree.WorkflowFiles = append(tree.WorkflowFiles, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", projectPath, err)
	}

	sort.Strings(tree.Files)
	sort.Strings(tree.WorkflowFiles)
	return tree, nil
}

func isWorkflowFile(rel string) bool {
	if !strings.HasPrefix(rel, ".github/workflows/") {
		return false
	}
	return strings.HasSuffix(rel, ".yml") || strings.HasSuffix(rel, ".yaml")
}
