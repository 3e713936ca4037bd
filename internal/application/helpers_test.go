package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pipegate/pipegate/internal/domain"
)

// memStore is an in-memory ResultStore. Error fields let tests inject
// persistence failures at specific lifecycle points.
type memStore struct {
	path        string
	doc         domain.Document
	initErr     error
	mergeErr    error
	mergeErrAt  string
	initialized bool
}

func (s *memStore) Initialize(meta domain.SessionMeta, targets domain.Targets, dimensions []string) error {
	if s.initErr != nil {
		return s.initErr
	}
	s.doc = domain.Document{}
	metaPartial, err := domain.Partial(meta)
	if err != nil {
		return err
	}
	targetsPartial, err := domain.Partial(targets)
	if err != nil {
		return err
	}
	s.doc.MergeAt("session", metaPartial)
	s.doc.MergeAt("targets", targetsPartial)
	s.doc.MergeAt("stages", map[string]any{})
	for _, d := range dimensions {
		s.doc.MergeAt("dimensions."+d, map[string]any{"validated": false})
	}
	s.initialized = true
	return nil
}

func (s *memStore) MergeUpdate(path string, partial map[string]any) error {
	if s.mergeErr != nil && (s.mergeErrAt == "" || strings.HasPrefix(path, s.mergeErrAt)) {
		return s.mergeErr
	}
	s.doc.MergeAt(path, partial)
	return nil
}

func (s *memStore) Read() (domain.Document, error) {
	return s.doc.Clone(), nil
}

func (s *memStore) Path() string { return s.path }

// nopLog discards all session events.
type nopLog struct{}

func (nopLog) Infof(string, ...any)    {}
func (nopLog) Successf(string, ...any) {}
func (nopLog) Warnf(string, ...any)    {}
func (nopLog) Errorf(string, ...any)   {}
func (nopLog) Metricf(string, ...any)  {}

// stubSampler returns a fixed snapshot.
type stubSampler struct {
	metrics domain.SystemMetrics
	err     error
}

func (s stubSampler) Sample() (domain.SystemMetrics, error) { return s.metrics, s.err }

// treeScanner serves a pre-built artifact tree.
type treeScanner struct {
	tree *domain.ArtifactTree
	err  error
}

func (s treeScanner) Scan(string, ...string) (*domain.ArtifactTree, error) {
	return s.tree, s.err
}

// fakeRunner executes commands through a supplied function.
type fakeRunner struct {
	run func(ctx context.Context, name string, args []string, dir string) (domain.CmdResult, error)
}

func (r fakeRunner) Run(ctx context.Context, name string, args []string, dir string) (domain.CmdResult, error) {
	if r.run == nil {
		return domain.CmdResult{}, errors.New("no runner behavior configured")
	}
	return r.run(ctx, name, args, dir)
}

// stubGit answers with a fixed commit hash or error.
type stubGit struct {
	hash string
	err  error
}

func (g stubGit) CommitHash(string) (string, error) { return g.hash, g.err }

// memHistory records saved entries in memory.
type memHistory struct {
	entries []domain.HistoryEntry
	saveErr error
}

func (h *memHistory) Save(_ string, entry domain.HistoryEntry) error {
	if h.saveErr != nil {
		return h.saveErr
	}
	h.entries = append(h.entries, entry)
	return nil
}

func (h *memHistory) Load(string) ([]domain.HistoryEntry, error) {
	return h.entries, nil
}

// fixtureTree writes files under a temp root and returns the matching
// artifact tree, so real predicates can read real content.
func fixtureTree(t *testing.T, files map[string]string) *domain.ArtifactTree {
	t.Helper()
	root := t.TempDir()

	tree := &domain.ArtifactTree{Root: root}
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))

		tree.Files = append(tree.Files, rel)
		if strings.HasPrefix(rel, ".github/workflows/") &&
			(strings.HasSuffix(rel, ".yml") || strings.HasSuffix(rel, ".yaml")) {
			tree.WorkflowFiles = append(tree.WorkflowFiles, rel)
		}
	}
	sort.Strings(tree.Files)
	sort.Strings(tree.WorkflowFiles)
	return tree
}

// blockUntilCanceled is runner behavior that only returns once the work
// context is done.
func blockUntilCanceled(ctx context.Context, _ string, _ []string, _ string) (domain.CmdResult, error) {
	select {
	case <-ctx.Done():
		return domain.CmdResult{}, ctx.Err()
	case <-time.After(5 * time.Second):
		return domain.CmdResult{}, errors.New("watchdog fired before context cancel")
	}
}
