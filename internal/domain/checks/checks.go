// Package checks provides the compliance check predicate library and the
// built-in dimension definitions. Predicates are presence/pattern detection
// over project artifacts, not static analysis: they read file contents and
// match shapes, never parse code.
package checks

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/camelcase"
	"gopkg.in/yaml.v3"

	"github.com/pipegate/pipegate/internal/domain"
)

// Result is the outcome of one predicate evaluation.
type Result struct {
	Passed   bool
	Evidence string
}

// Predicate is a read-only compliance test over the artifact tree. Predicates
// are idempotent: the same tree always yields the same result.
type Predicate func(tree *domain.ArtifactTree) Result

// Definition declares one check within a dimension. Exactly one of Predicate
// or Command is set.
type Definition struct {
	Name      string
	Points    int
	Predicate Predicate
	Command   *domain.CommandCheck
}

// DimensionSpec declares a full dimension: its checks, default weight, and
// its own rubric breakpoint table.
type DimensionSpec struct {
	Name   string
	Weight int
	Rubric domain.Rubric
	Checks []Definition
}

// FileExists passes when any file in the tree matches one of the glob
// patterns.
func FileExists(patterns ...string) Predicate {
	return func(tree *domain.ArtifactTree) Result {
		if f := firstMatch(tree.Files, patterns); f != "" {
			return Result{Passed: true, Evidence: "found " + f}
		}
		return Result{Evidence: "no file matches " + strings.Join(patterns, ", ")}
	}
}

// FileContains passes when at least one file matching the pattern contains
// the regular expression.
func FileContains(pattern, expr string) Predicate {
	re := regexp.MustCompile(expr)
	return func(tree *domain.ArtifactTree) Result {
		matches := allMatches(tree.Files, []string{pattern})
		if len(matches) == 0 {
			return Result{Evidence: "no file matches " + pattern}
		}
		for _, f := range matches {
			data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(f)))
			if err != nil {
				return Result{Evidence: fmt.Sprintf("reading %s: %v", f, err)}
			}
			if re.Match(data) {
				return Result{Passed: true, Evidence: fmt.Sprintf("%s matches %q", f, expr)}
			}
		}
		return Result{Evidence: fmt.Sprintf("no match for %q in %d file(s)", expr, len(matches))}
	}
}

// EveryFileContains passes when every file matching the pattern contains the
// regular expression. Fails when no files match at all.
func EveryFileContains(pattern, expr string) Predicate {
	re := regexp.MustCompile(expr)
	return func(tree *domain.ArtifactTree) Result {
		matches := allMatches(tree.Files, []string{pattern})
		if len(matches) == 0 {
			return Result{Evidence: "no file matches " + pattern}
		}
		for _, f := range matches {
			data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(f)))
			if err != nil {
				return Result{Evidence: fmt.Sprintf("reading %s: %v", f, err)}
			}
			if !re.Match(data) {
				return Result{Evidence: fmt.Sprintf("%s lacks %q", f, expr)}
			}
		}
		return Result{Passed: true, Evidence: fmt.Sprintf("all %d file(s) match %q", len(matches), expr)}
	}
}

// NoFileContains passes when no file matching the pattern contains the
// regular expression. An empty match set passes.
func NoFileContains(pattern, expr string) Predicate {
	re := regexp.MustCompile(expr)
	return func(tree *domain.ArtifactTree) Result {
		for _, f := range allMatches(tree.Files, []string{pattern}) {
			data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(f)))
			if err != nil {
				return Result{Evidence: fmt.Sprintf("reading %s: %v", f, err)}
			}
			if loc := re.FindIndex(data); loc != nil {
				line := 1 + strings.Count(string(data[:loc[0]]), "\n")
				return Result{Evidence: fmt.Sprintf("%s:%d matches %q", f, line, expr)}
			}
		}
		return Result{Passed: true, Evidence: "no file matches " + expr}
	}
}

// WorkflowJobNaming passes when every job identifier in the CI workflow files
// uses kebab-case or snake_case rather than camelCase.
func WorkflowJobNaming() Predicate {
	return func(tree *domain.ArtifactTree) Result {
		if len(tree.WorkflowFiles) == 0 {
			return Result{Evidence: "no workflow files found"}
		}
		for _, f := range tree.WorkflowFiles {
			data, err := os.ReadFile(filepath.Join(tree.Root, filepath.FromSlash(f)))
			if err != nil {
				return Result{Evidence: fmt.Sprintf("reading %s: %v", f, err)}
			}
			var wf struct {
				Jobs map[string]yaml.Node `yaml:"jobs"`
			}
			if err := yaml.Unmarshal(data, &wf); err != nil {
				return Result{Evidence: fmt.Sprintf("parsing %s: %v", f, err)}
			}
			for id := range wf.Jobs {
				if isCamelCase(id) {
					return Result{Evidence: fmt.Sprintf("%s: job %q uses camelCase, want kebab-case or snake_case", f, id)}
				}
			}
		}
		return Result{Passed: true, Evidence: "all workflow job identifiers follow naming convention"}
	}
}

// isCamelCase reports whether an identifier mixes case words with no explicit
// separator.
func isCamelCase(id string) bool {
	if strings.ContainsAny(id, "-_") {
		return false
	}
	return len(camelcase.Split(id)) > 1
}

func firstMatch(files, patterns []string) string {
	for _, p := range patterns {
		for _, f := range files {
			if ok, err := doublestar.Match(p, f); err == nil && ok {
				return f
			}
		}
	}
	return ""
}

func allMatches(files, patterns []string) []string {
	var out []string
	for _, f := range files {
		for _, p := range patterns {
			if ok, err := doublestar.Match(p, f); err == nil && ok {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
