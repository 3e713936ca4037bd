// Package resultstore persists the structured session record as a JSON
// document. The document is an in-memory aggregate owned by one session;
// every update is checkpointed with a write-to-temp-then-rename so a reader
// of the file never observes a half-written record.
package resultstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pipegate/pipegate/internal/domain"
)

// Store implements domain.ResultStore on a single JSON file.
type Store struct {
	path string
	doc  domain.Document
}

// New creates a store backed by the given file path. Nothing is written until
// Initialize.
func New(path string) *Store {
	return &Store{path: path, doc: domain.Document{}}
}

// Path returns the on-disk location of the document.
func (s *Store) Path() string { return s.path }

// Initialize seeds a fresh document with session metadata, declared targets,
// and empty dimension slots, then persists it. A failure here is fatal to the
// session: no dimension may run against an unwritable store.
func (s *Store) Initialize(meta domain.SessionMeta, targets domain.Targets, dimensions []string) error {
	s.doc = domain.Document{}

	sessionPartial, err := domain.Partial(meta)
	if err != nil {
		return err
	}
	targetsPartial, err := domain.Partial(targets)
	if err != nil {
		return err
	}

	s.doc.MergeAt("session", sessionPartial)
	s.doc.MergeAt("targets", targetsPartial)
	s.doc.MergeAt("stages", map[string]any{})
	slots := make(map[string]any, len(dimensions))
	for _, d := range dimensions {
		slots[d] = map[string]any{"validated": false}
	}
	s.doc.MergeAt("dimensions", slots)

	return s.flush()
}

// MergeUpdate deep-merges a partial record at a dotted path and checkpoints
// the document before returning.
func (s *Store) MergeUpdate(path string, partial map[string]any) error {
	s.doc.MergeAt(path, partial)
	return s.flush()
}

// Read returns a deep copy of the current document.
func (s *Store) Read() (domain.Document, error) {
	return s.doc.Clone(), nil
}

// Load reads an existing document from disk, for consumers such as the report
// command that render results produced by an earlier session.
func Load(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnwritable, err)
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStoreCorrupt, path, err)
	}
	return doc, nil
}

// flush writes the document atomically: marshal, write a temp file in the
// same directory, fsync, rename over the target.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreCorrupt, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnwritable, err)
	}

	tmp, err := os.CreateTemp(dir, ".results-*.json.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnwritable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnwritable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnwritable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnwritable, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnwritable, err)
	}
	return nil
}
