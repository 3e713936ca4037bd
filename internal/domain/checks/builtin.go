package checks

import "github.com/pipegate/pipegate/internal/domain"

// Workflow file glob shared by the CI-related checks.
const workflowGlob = ".github/workflows/*.{yml,yaml}"

// secretExpr flags obvious credential literals in config-like artifacts. This
// is presence detection, not a secret scanner.
const secretExpr = `(?i)(AKIA[0-9A-Z]{16}|(api[_-]?key|secret|password|token)\s*[:=]\s*["'][A-Za-z0-9/+=_-]{8,}["'])`

// DefaultDimensions returns the built-in dimension set. Default weights sum
// to exactly 100; each dimension carries its own rubric breakpoints.
func DefaultDimensions() []DimensionSpec {
	return []DimensionSpec{
		{
			Name:   "toolchain",
			Weight: 30,
			Rubric: domain.Rubric{
				{MinPercent: 100, Label: "optimized"},
				{MinPercent: 80, Label: "adequate"},
				{MinPercent: 0, Label: "insufficient"},
			},
			Checks: []Definition{
				{
					Name:   "lockfile_present",
					Points: 5,
					Predicate: FileExists(
						"go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml",
						"Cargo.lock", "poetry.lock", "uv.lock", "Gemfile.lock",
					),
				},
				{
					Name:      "build_file_present",
					Points:    5,
					Predicate: FileExists("Makefile", "Taskfile.yml", "Taskfile.yaml", "justfile"),
				},
				{
					Name:      "ci_workflow_present",
					Points:    10,
					Predicate: FileExists(workflowGlob),
				},
				{
					Name:      "pinned_action_versions",
					Points:    5,
					Predicate: pinnedActions(),
				},
				{
					Name:   "linter_config_present",
					Points: 5,
					Predicate: FileExists(
						".golangci.yml", ".golangci.yaml", ".eslintrc*",
						"ruff.toml", ".ruff.toml", ".flake8",
					),
				},
			},
		},
		{
			Name:   "security",
			Weight: 30,
			Rubric: domain.Rubric{
				{MinPercent: 100, Label: "optimized"},
				{MinPercent: 90, Label: "adequate"},
				{MinPercent: 0, Label: "insufficient"},
			},
			Checks: []Definition{
				{
					Name:      "no_hardcoded_secrets",
					Points:    10,
					Predicate: NoFileContains("**/*.{yml,yaml,env,tf,json}", secretExpr),
				},
				{
					Name:      "security_scanning_workflow",
					Points:    8,
					Predicate: FileContains(workflowGlob, `(?i)(codeql|trivy|gosec|snyk|grype|semgrep)`),
				},
				{
					Name:      "dependency_update_automation",
					Points:    6,
					Predicate: FileExists(".github/dependabot.yml", ".github/dependabot.yaml", "renovate.json", ".github/renovate.json"),
				},
				{
					Name:      "explicit_workflow_permissions",
					Points:    6,
					Predicate: EveryFileContains(workflowGlob, `(?m)^permissions:`),
				},
			},
		},
		{
			Name:   "workflow",
			Weight: 25,
			Rubric: domain.Rubric{
				{MinPercent: 80, Label: "optimized"},
				{MinPercent: 60, Label: "adequate"},
				{MinPercent: 0, Label: "insufficient"},
			},
			Checks: []Definition{
				{
					Name:      "job_timeouts_set",
					Points:    7,
					Predicate: FileContains(workflowGlob, `timeout-minutes:`),
				},
				{
					Name:      "dependency_caching",
					Points:    6,
					Predicate: FileContains(workflowGlob, `(actions/cache|cache:\s*(true|"true"))`),
				},
				{
					Name:      "concurrency_groups",
					Points:    6,
					Predicate: FileContains(workflowGlob, `(?m)^concurrency:`),
				},
				{
					Name:      "job_naming_convention",
					Points:    6,
					Predicate: WorkflowJobNaming(),
				},
			},
		},
		{
			Name:   "documentation",
			Weight: 15,
			Rubric: domain.Rubric{
				{MinPercent: 75, Label: "optimized"},
				{MinPercent: 50, Label: "adequate"},
				{MinPercent: 0, Label: "insufficient"},
			},
			Checks: []Definition{
				{
					Name:      "readme_present",
					Points:    5,
					Predicate: FileExists("README.md", "README", "README.rst"),
				},
				{
					Name:      "license_present",
					Points:    4,
					Predicate: FileExists("LICENSE", "LICENSE.md", "LICENSE.txt", "COPYING"),
				},
				{
					Name:      "contributing_guide",
					Points:    3,
					Predicate: FileExists("CONTRIBUTING.md", ".github/CONTRIBUTING.md", "docs/CONTRIBUTING.md"),
				},
				{
					Name:      "pipeline_docs",
					Points:    3,
					Predicate: FileExists("docs/**/*.md", ".github/workflows/README.md"),
				},
			},
		},
	}
}

// pinnedActions fails when any workflow declares an action without an @ref.
func pinnedActions() Predicate {
	unpinned := NoFileContains(workflowGlob, `(?m)^\s*(-\s*)?uses:\s*[^@\s]+\s*$`)
	return func(tree *domain.ArtifactTree) Result {
		if len(tree.WorkflowFiles) == 0 {
			return Result{Evidence: "no workflow files found"}
		}
		return unpinned(tree)
	}
}
