package application

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pipegate/pipegate/internal/domain"
)

// resultsView is the typed projection of the results document used for
// rendering. The report is generated purely from the structured record, never
// from in-process state, so `pipegate report` can re-render old sessions.
type resultsView struct {
	Session    domain.SessionMeta          `json:"session"`
	Targets    domain.Targets              `json:"targets"`
	Stages     map[string]domain.Stage     `json:"stages"`
	Dimensions map[string]domain.Dimension `json:"dimensions"`
	Composite  *domain.CompositeScore      `json:"composite"`
	Summary    *domain.Summary             `json:"summary"`
}

// RenderReport produces the human-readable markdown report from a results
// document.
func RenderReport(doc domain.Document) (string, error) {
	view, err := viewOf(doc)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# Pipeline Compliance Report\n\n")
	fmt.Fprintf(&b, "- **Session**: `%s`\n", view.Session.ID)
	fmt.Fprintf(&b, "- **Started**: %s\n", view.Session.StartTime.Format("2006-01-02 15:04:05 MST"))
	if view.Session.CommitHash != "" {
		fmt.Fprintf(&b, "- **Commit**: `%s`\n", view.Session.CommitHash)
	}
	fmt.Fprintf(&b, "- **Status**: %s\n\n", view.Session.Status)

	if view.Composite != nil {
		c := view.Composite
		verdict := "FAIL"
		if c.Passed {
			verdict = "PASS"
		}
		fmt.Fprintf(&b, "## Composite Score\n\n")
		fmt.Fprintf(&b, "**%d / 100 (grade %s): %s** (threshold %d)\n\n", c.Total, c.Grade, verdict, c.PassThreshold)
	}

	if len(view.Dimensions) > 0 {
		fmt.Fprintf(&b, "## Dimensions\n\n")
		fmt.Fprintf(&b, "| Dimension | Score | Status | Points |\n")
		fmt.Fprintf(&b, "|-----------|------:|--------|-------:|\n")
		for _, name := range sortedKeys(view.Dimensions) {
			d := view.Dimensions[name]
			points := ""
			if view.Composite != nil {
				points = fmt.Sprintf("%d", view.Composite.WeightedPoints[name])
			}
			fmt.Fprintf(&b, "| %s | %d%% | %s | %s |\n", name, d.ScorePercent, d.Status, points)
		}
		b.WriteString("\n")

		for _, name := range sortedKeys(view.Dimensions) {
			d := view.Dimensions[name]
			if len(d.Checks) == 0 {
				continue
			}
			fmt.Fprintf(&b, "### %s (%d/%d points)\n\n", name, d.EarnedPoints, d.MaxPoints)
			for _, c := range d.Checks {
				mark := "✗"
				if c.Passed {
					mark = "✓"
				}
				fmt.Fprintf(&b, "- %s **%s** (%d/%d): %s\n", mark, c.Name, c.Earned, c.Points, c.Evidence)
			}
			b.WriteString("\n")
		}
	}

	if len(view.Stages) > 0 {
		fmt.Fprintf(&b, "## Stages\n\n")
		fmt.Fprintf(&b, "| Stage | Status | Duration | CPU | Memory |\n")
		fmt.Fprintf(&b, "|-------|--------|---------:|----:|-------:|\n")
		for _, name := range sortedKeys(view.Stages) {
			st := view.Stages[name]
			cpu, mem := "-", "-"
			if st.SystemMetrics != nil {
				cpu = fmt.Sprintf("%.1f%%", st.SystemMetrics.CPUPercent)
				mem = fmt.Sprintf("%.1f%%", st.SystemMetrics.MemoryPercent)
			}
			fmt.Fprintf(&b, "| %s | %s | %.2fs | %s | %s |\n", name, st.Status, st.DurationSeconds, cpu, mem)
		}
		b.WriteString("\n")
	}

	if view.Summary != nil {
		s := view.Summary
		fmt.Fprintf(&b, "## Summary\n\n")
		fmt.Fprintf(&b, "- Validations: %d total, %d passed, %d failed\n", s.TotalValidations, s.PassedValidations, s.FailedValidations)
		fmt.Fprintf(&b, "- Compliance: %d (%s)\n", s.ComplianceScore, s.ComplianceGrade)
		fmt.Fprintf(&b, "- Result: **%s**\n", s.Status)
	}

	return b.String(), nil
}

// WriteReport renders the report and writes it to path.
func WriteReport(doc domain.Document, path string) error {
	report, err := RenderReport(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnwritable, err)
	}
	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnwritable, err)
	}
	return nil
}

func viewOf(doc domain.Document) (*resultsView, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding results document: %w", err)
	}
	var view resultsView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreCorrupt, err)
	}
	return &view, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
