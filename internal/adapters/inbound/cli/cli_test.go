package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipegate/pipegate/internal/adapters/inbound/cli"
	"github.com/pipegate/pipegate/internal/domain"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

const compliantCI = `name: ci
permissions:
  contents: read
concurrency:
  group: ci-${{ github.ref }}
  cancel-in-progress: true
on:
  push:
jobs:
  build-and-test:
    runs-on: ubuntu-latest
    timeout-minutes: 15
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-go@v5
        with:
          cache: true
      - uses: actions/cache@v4
        with:
          path: ~/.cache/go-build
          key: go-${{ hashFiles('go.sum') }}
      - run: make test
`

const compliantSecurity = `name: security
permissions:
  contents: read
on:
  schedule:
    - cron: "0 4 * * 1"
jobs:
  trivy-scan:
    runs-on: ubuntu-latest
    timeout-minutes: 30
    steps:
      - uses: actions/checkout@v4
      - uses: aquasecurity/trivy-action@0.28.0
`

// compliantProject builds a project that passes every built-in check.
func compliantProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, root, "go.sum", "example.com/dep v1.0.0 h1:abc=\n")
	write(t, root, "Makefile", "test:\n\tgo test ./...\n")
	write(t, root, ".golangci.yml", "linters:\n  enable:\n    - govet\n")
	write(t, root, ".github/workflows/ci.yml", compliantCI)
	write(t, root, ".github/workflows/security.yml", compliantSecurity)
	write(t, root, ".github/dependabot.yml", "version: 2\nupdates:\n  - package-ecosystem: gomod\n    directory: /\n")
	write(t, root, "README.md", "# example\n")
	write(t, root, "LICENSE", "MIT\n")
	write(t, root, "CONTRIBUTING.md", "# contributing\n")
	write(t, root, "docs/pipeline.md", "# pipeline\n")
	return root
}

// bareProject builds a project failing nearly every check, including the
// secret prohibition.
func bareProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, root, "notes.txt", "nothing here\n")
	write(t, root, "deploy.yaml", "password: \"hunter2hunter2\"\n")
	return root
}

func TestValidate_CompliantProjectPasses(t *testing.T) {
	root := compliantProject(t)

	out, err := runCommand(t, "validate", root)

	require.NoError(t, err, "output:\n%s", out)
	assert.Contains(t, out, "100 / 100")
	assert.Contains(t, out, "PASS")

	assert.FileExists(t, filepath.Join(root, ".pipegate", "results.json"))
	assert.FileExists(t, filepath.Join(root, ".pipegate", "report.md"))
	assert.FileExists(t, filepath.Join(root, ".pipegate", "pipegate.log"))
	assert.FileExists(t, filepath.Join(root, ".pipegate", "history", "validations.json"))
}

func TestValidate_BareProjectFails(t *testing.T) {
	t.Setenv(domain.EnvMinScore, "")
	root := bareProject(t)

	out, err := runCommand(t, "validate", root)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "below threshold 80")
	assert.Contains(t, out, "FAIL")
	assert.FileExists(t, filepath.Join(root, ".pipegate", "results.json"),
		"a failing session still persists its document")
}

// partialProject passes the documentation checks and the secret prohibition,
// nothing else, landing the composite well below the default threshold.
func partialProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, root, "README.md", "# example\n")
	write(t, root, "LICENSE", "MIT\n")
	write(t, root, "CONTRIBUTING.md", "# contributing\n")
	write(t, root, "docs/pipeline.md", "# pipeline\n")
	return root
}

func TestValidate_MinFlagOverridesThreshold(t *testing.T) {
	root := partialProject(t)

	_, err := runCommand(t, "validate", root)
	require.Error(t, err, "the default threshold of 80 rejects a documentation-only project")

	_, err = runCommand(t, "validate", root, "--min", "20")
	assert.NoError(t, err, "a lowered floor lets the same project through")
}

func TestValidate_JSONOutput(t *testing.T) {
	root := compliantProject(t)

	out, err := runCommand(t, "validate", root, "--json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc), "with --json stdout is the document, nothing else")

	summary, ok := doc["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 100.0, summary["compliance_score"])
	assert.Equal(t, "A", summary["compliance_grade"])

	session, ok := doc["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "excellent", session["status"])
}

func TestValidate_OutputFlag(t *testing.T) {
	root := compliantProject(t)

	_, err := runCommand(t, "validate", root, "--output", ".compliance")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, ".compliance", "results.json"))
	assert.NoFileExists(t, filepath.Join(root, ".pipegate", "results.json"))
}

func TestValidate_CIOutput(t *testing.T) {
	root := compliantProject(t)

	out, err := runCommand(t, "validate", root, "--ci")

	require.NoError(t, err)
	assert.Contains(t, out, "PASS 100/100 grade A (threshold 80)")
}

func TestValidate_ReportFlag(t *testing.T) {
	root := compliantProject(t)
	reportPath := filepath.Join(t.TempDir(), "compliance.md")

	_, err := runCommand(t, "validate", root, "--report", reportPath)

	require.NoError(t, err)
	assert.FileExists(t, reportPath)
	assert.NoFileExists(t, filepath.Join(root, ".pipegate", "report.md"))
}

func TestValidate_EnvThresholdOverride(t *testing.T) {
	root := partialProject(t)
	t.Setenv(domain.EnvMinScore, "20")

	_, err := runCommand(t, "validate", root)
	assert.NoError(t, err)
}

func TestValidate_ConfigSkipAndReweight(t *testing.T) {
	root := compliantProject(t)
	write(t, root, ".pipegate.yaml", `
skip:
  dimensions: [documentation]
weights:
  toolchain: 35
  security: 35
  workflow: 30
`)

	out, err := runCommand(t, "validate", root)

	require.NoError(t, err, "output:\n%s", out)
	assert.NotContains(t, out, "documentation")
}

func TestValidate_InvalidWeightsRejected(t *testing.T) {
	root := compliantProject(t)
	write(t, root, ".pipegate.yaml", "weights:\n  toolchain: 50\n")

	_, err := runCommand(t, "validate", root)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "want exactly 100")
}

func TestReport_RendersPreviousSession(t *testing.T) {
	root := compliantProject(t)
	_, err := runCommand(t, "validate", root)
	require.NoError(t, err)

	out, err := runCommand(t, "report", root)

	require.NoError(t, err)
	assert.Contains(t, out, "# Pipeline Compliance Report")
	assert.Contains(t, out, "100 / 100")
	assert.Contains(t, out, "| toolchain | 100% |")
}

func TestReport_InputFlag(t *testing.T) {
	root := compliantProject(t)
	_, err := runCommand(t, "validate", root)
	require.NoError(t, err)

	out, err := runCommand(t, "report", "--input", filepath.Join(root, ".pipegate", "results.json"))

	require.NoError(t, err)
	assert.Contains(t, out, "# Pipeline Compliance Report")
}

func TestReport_NoResults(t *testing.T) {
	_, err := runCommand(t, "report", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading results")
}

func TestVersion(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pipegate")
}

func TestRootHelp_ListsCommands(t *testing.T) {
	out, err := runCommand(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"validate", "report", "watch", "mcp", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCommand(t, "destroy")
	assert.Error(t, err)
}
