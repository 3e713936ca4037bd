package resultstore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipegate/pipegate/internal/adapters/outbound/resultstore"
	"github.com/pipegate/pipegate/internal/domain"
)

func testMeta() domain.SessionMeta {
	return domain.SessionMeta{
		ID:        "1756000000-deadbeef",
		StartTime: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		Status:    domain.SessionStatusInProgress,
	}
}

func testTargets() domain.Targets {
	return domain.Targets{TimeoutMinutes: 10, MinScore: 80, AvailabilityPercent: 99.9}
}

func newInitialized(t *testing.T) *resultstore.Store {
	t.Helper()
	s := resultstore.New(filepath.Join(t.TempDir(), ".pipegate", "results.json"))
	require.NoError(t, s.Initialize(testMeta(), testTargets(), []string{"toolchain", "security"}))
	return s
}

func readDisk(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc), "on-disk document must always be valid JSON")
	return doc
}

func TestStore_Initialize_SeedsDocument(t *testing.T) {
	s := newInitialized(t)

	doc := readDisk(t, s.Path())
	session := doc["session"].(map[string]any)
	assert.Equal(t, "1756000000-deadbeef", session["id"])
	assert.Equal(t, domain.SessionStatusInProgress, session["status"])

	targets := doc["targets"].(map[string]any)
	assert.Equal(t, 80.0, targets["min_score"])

	dims := doc["dimensions"].(map[string]any)
	require.Contains(t, dims, "toolchain")
	require.Contains(t, dims, "security")
	assert.Equal(t, false, dims["toolchain"].(map[string]any)["validated"])
}

func TestStore_Initialize_CreatesOutputDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "results.json")
	s := resultstore.New(path)

	require.NoError(t, s.Initialize(testMeta(), testTargets(), nil))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestStore_Initialize_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := resultstore.New(filepath.Join(blocker, "results.json"))
	err := s.Initialize(testMeta(), testTargets(), nil)
	assert.ErrorIs(t, err, domain.ErrStoreUnwritable)
}

func TestStore_MergeUpdate_CheckpointsEveryUpdate(t *testing.T) {
	s := newInitialized(t)

	require.NoError(t, s.MergeUpdate("dimensions.toolchain", map[string]any{
		"validated":     true,
		"score_percent": 80,
	}))

	doc := readDisk(t, s.Path())
	tc := doc["dimensions"].(map[string]any)["toolchain"].(map[string]any)
	assert.Equal(t, true, tc["validated"])
	assert.Equal(t, 80.0, tc["score_percent"])
	assert.Contains(t, doc["dimensions"].(map[string]any), "security",
		"merging one dimension leaves the others untouched")
}

func TestStore_MergeUpdate_Idempotent(t *testing.T) {
	s := newInitialized(t)
	partial := map[string]any{"validated": true, "score_percent": 66}

	require.NoError(t, s.MergeUpdate("dimensions.toolchain", partial))
	once := readDisk(t, s.Path())

	require.NoError(t, s.MergeUpdate("dimensions.toolchain", partial))
	twice := readDisk(t, s.Path())

	assert.Equal(t, once, twice)
}

func TestStore_Read_ReturnsIsolatedCopy(t *testing.T) {
	s := newInitialized(t)

	doc, err := s.Read()
	require.NoError(t, err)
	doc.MergeAt("session", map[string]any{"id": "tampered"})

	fresh, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "1756000000-deadbeef", fresh.Section("session")["id"])
}

func TestStore_NoTempFilesLeftBehind(t *testing.T) {
	s := newInitialized(t)
	require.NoError(t, s.MergeUpdate("summary", map[string]any{"compliance_score": 70}))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "results.json", entries[0].Name())
}

func TestLoad(t *testing.T) {
	s := newInitialized(t)

	doc, err := resultstore.Load(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "1756000000-deadbeef", doc.Section("session")["id"])
}

func TestLoad_Missing(t *testing.T) {
	_, err := resultstore.Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, domain.ErrStoreUnwritable)
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := resultstore.Load(path)
	assert.ErrorIs(t, err, domain.ErrStoreCorrupt)
}
