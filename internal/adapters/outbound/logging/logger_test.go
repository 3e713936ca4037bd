package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipegate/pipegate/internal/adapters/outbound/logging"
)

func TestLogger_ConsoleAndFileSinks(t *testing.T) {
	var console, file bytes.Buffer
	log := logging.New(&console, &file)

	log.Infof("session %s started", "s-1")
	log.Successf("check passed")
	log.Warnf("check failed")
	log.Errorf("session failed")
	log.Metricf("cpu %.1f%%", 12.5)

	out := console.String()
	for _, want := range []string{"[INFO]", "[SUCCESS]", "[WARNING]", "[ERROR]", "[METRIC]"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "session s-1 started")
	assert.Contains(t, out, "cpu 12.5%")

	plain := file.String()
	assert.Contains(t, plain, "[SUCCESS] check passed")
	assert.NotContains(t, plain, "\x1b[", "the file sink stays free of ANSI escapes")
	assert.Len(t, strings.Split(strings.TrimRight(plain, "\n"), "\n"), 5)

	// Lines open with a timestamp of the form 2006-01-02 15:04:05.
	first := strings.SplitN(plain, " ", 3)
	require.Len(t, first, 3)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, first[0])
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}$`, first[1])
}

func TestLogger_NilSinksAreSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		logging.New(nil, nil).Infof("nowhere to go")
	})
}

func TestNewWithFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, ".pipegate", "pipegate.log")

	var console bytes.Buffer
	log, closer, err := logging.NewWithFile(&console, logPath)
	require.NoError(t, err)

	log.Infof("hello")
	require.NoError(t, closer())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] hello")
}

func TestNewWithFile_Appends(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "pipegate.log")

	first, closeFirst, err := logging.NewWithFile(nil, logPath)
	require.NoError(t, err)
	first.Infof("run one")
	require.NoError(t, closeFirst())

	second, closeSecond, err := logging.NewWithFile(nil, logPath)
	require.NoError(t, err)
	second.Infof("run two")
	require.NoError(t, closeSecond())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run one")
	assert.Contains(t, string(data), "run two")
}

func TestNewWithFile_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, _, err := logging.NewWithFile(nil, filepath.Join(blocker, "pipegate.log"))
	assert.Error(t, err)
}
