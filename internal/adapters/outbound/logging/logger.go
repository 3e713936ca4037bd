// Package logging provides the operator-facing leveled logger. Lines go to
// the console with lipgloss-colored level tags and, when configured, as plain
// text to a log file. This output is for humans; the results document and the
// process exit code are the machine interfaces.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level tags.
const (
	LevelInfo    = "INFO"
	LevelSuccess = "SUCCESS"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
	LevelMetric  = "METRIC"
)

var levelStyles = map[string]lipgloss.Style{
	LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8B949E")),
	LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true),
	LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
	LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
	LevelMetric:  lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706")),
}

// Logger writes timestamped leveled lines to a console writer and an optional
// plain-text sink.
type Logger struct {
	console io.Writer
	file    io.Writer
	clock   func() time.Time
}

// New creates a Logger writing styled output to console. file may be nil.
func New(console, file io.Writer) *Logger {
	return &Logger{console: console, file: file, clock: time.Now}
}

// NewWithFile creates a Logger that also appends plain lines to logPath,
// creating parent directories as needed. The returned closer flushes the file.
func NewWithFile(console io.Writer, logPath string) (*Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return New(console, f), f.Close, nil
}

func (l *Logger) Infof(format string, args ...any)    { l.log(LevelInfo, format, args...) }
func (l *Logger) Successf(format string, args ...any) { l.log(LevelSuccess, format, args...) }
func (l *Logger) Warnf(format string, args ...any)    { l.log(LevelWarning, format, args...) }
func (l *Logger) Errorf(format string, args ...any)   { l.log(LevelError, format, args...) }
func (l *Logger) Metricf(format string, args ...any)  { l.log(LevelMetric, format, args...) }

func (l *Logger) log(level, format string, args ...any) {
	ts := l.clock().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)

	if l.console != nil {
		tag := levelStyles[level].Render(fmt.Sprintf("[%s]", level))
		fmt.Fprintf(l.console, "%s %s %s\n", ts, tag, msg)
	}
	if l.file != nil {
		fmt.Fprintf(l.file, "%s [%s] %s\n", ts, level, msg)
	}
}
