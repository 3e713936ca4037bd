package domain

import (
	"context"
	"errors"
)

// Persistence failures are the only error class that aborts a session.
var (
	// ErrStoreUnwritable wraps I/O failures writing the results document.
	ErrStoreUnwritable = errors.New("results store is not writable")
	// ErrStoreCorrupt wraps parse failures reading an existing document.
	ErrStoreCorrupt = errors.New("results store document is corrupt")
)

// ResultStore owns the durable structured record for one session. Updates
// merge into an in-memory aggregate and are checkpointed atomically, so a
// reader of the on-disk document never observes a half-written record.
type ResultStore interface {
	// Initialize seeds a fresh document with session metadata and empty
	// dimension slots, and persists it.
	Initialize(meta SessionMeta, targets Targets, dimensions []string) error

	// MergeUpdate deep-merges a partial record at a dotted path and
	// checkpoints the document before returning.
	MergeUpdate(path string, partial map[string]any) error

	// Read returns a deep copy of the current document.
	Read() (Document, error)

	// Path is the on-disk location of the document.
	Path() string
}

// MetricsSampler snapshots host resource usage for stage records.
type MetricsSampler interface {
	Sample() (SystemMetrics, error)
}

// ArtifactScanner walks a project directory and inventories its artifacts.
type ArtifactScanner interface {
	Scan(projectPath string, excludePaths ...string) (*ArtifactTree, error)
}

// ConfigLoader loads the project configuration, returning defaults when no
// config file exists.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// GitInfo reads repository metadata for the session record.
type GitInfo interface {
	CommitHash(projectPath string) (string, error)
}

// CmdResult holds the outcome of an external command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner executes external commands. Run returns a CmdResult with
// ExitCode set when the process exits (even non-zero); an error is returned
// only for execution failures such as a missing binary or a canceled context.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, dir string) (CmdResult, error)
}

// EventLog is the operator-facing leveled log surface used by the session.
type EventLog interface {
	Infof(format string, args ...any)
	Successf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Metricf(format string, args ...any)
}

// SessionResult is what a completed validation session hands back to its
// caller. The exit status is derived from Composite.Passed.
type SessionResult struct {
	SessionID   string         `json:"session_id"`
	Composite   CompositeScore `json:"composite"`
	Dimensions  []Dimension    `json:"dimensions"`
	Summary     Summary        `json:"summary"`
	Document    Document       `json:"document,omitempty"`
	ResultsPath string         `json:"results_path"`
	ReportPath  string         `json:"report_path"`
}

// ValidationHistory appends and loads per-project score history entries.
type ValidationHistory interface {
	Save(projectPath string, entry HistoryEntry) error
	Load(projectPath string) ([]HistoryEntry, error)
}

// HistoryEntry is one recorded validation outcome.
type HistoryEntry struct {
	Timestamp  string `json:"timestamp"`
	SessionID  string `json:"session_id"`
	CommitHash string `json:"commit_hash,omitempty"`
	Total      int    `json:"total"`
	Grade      string `json:"grade"`
	Passed     bool   `json:"passed"`
}
