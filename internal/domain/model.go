package domain

import "time"

// Check is a single recorded compliance predicate outcome. Immutable once
// appended to a Dimension.
type Check struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Points   int    `json:"points"`
	Earned   int    `json:"earned"`
	Evidence string `json:"evidence,omitempty"`
}

// Dimension is a named group of related compliance checks with a derived
// percentage score and rubric status label.
type Dimension struct {
	Name         string  `json:"name"`
	Checks       []Check `json:"checks"`
	EarnedPoints int     `json:"earned_points"`
	MaxPoints    int     `json:"max_points"`
	ScorePercent int     `json:"score_percent"`
	Status       string  `json:"status"`
	Validated    bool    `json:"validated"`
}

// Append records a check and recomputes the derived score, so ScorePercent is
// never stale relative to the check list.
func (d *Dimension) Append(c Check) {
	if c.Passed {
		c.Earned = c.Points
	} else {
		c.Earned = 0
	}
	d.Checks = append(d.Checks, c)
	d.EarnedPoints += c.Earned
	d.MaxPoints += c.Points
	d.ScorePercent = percentOf(d.EarnedPoints, d.MaxPoints)
}

func percentOf(earned, max int) int {
	if max <= 0 {
		return 0
	}
	return earned * 100 / max
}

// CompositeScore is the weighted aggregation of all dimension scores.
type CompositeScore struct {
	WeightedPoints map[string]int `json:"weighted_points"`
	Total          int            `json:"total"`
	Grade          string         `json:"grade"`
	PassThreshold  int            `json:"pass_threshold"`
	Passed         bool           `json:"passed"`
}

// GradeFor maps a composite total to a letter grade.
func GradeFor(total int) string {
	switch {
	case total >= 90:
		return "A"
	case total >= 80:
		return "B"
	case total >= 70:
		return "C"
	case total >= 60:
		return "D"
	default:
		return "F"
	}
}

// StatusForGrade maps a letter grade to the session's terminal status label.
func StatusForGrade(grade string) string {
	switch grade {
	case "A":
		return "excellent"
	case "B":
		return "good"
	case "C":
		return "acceptable"
	case "D":
		return "poor"
	default:
		return "failing"
	}
}

// Stage statuses.
const (
	StageRunning = "running"
	StageSuccess = "success"
	StageFailed  = "failed"
	StageTimeout = "timeout"
)

// Stage is a timed unit of work within a validation session.
type Stage struct {
	Name            string         `json:"name"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         *time.Time     `json:"end_time,omitempty"`
	DurationSeconds float64        `json:"duration_seconds,omitempty"`
	Status          string         `json:"status"`
	SystemMetrics   *SystemMetrics `json:"system_metrics,omitempty"`
}

// SystemMetrics is a host resource snapshot attached to a finished stage.
type SystemMetrics struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	DiskPercent   float64 `json:"disk_percent"`
	LoadAverage   float64 `json:"load_average"`
}

// SessionMeta identifies one validation session in the results document.
type SessionMeta struct {
	ID         string    `json:"id"`
	StartTime  time.Time `json:"start_time"`
	Status     string    `json:"status"`
	CommitHash string    `json:"commit_hash,omitempty"`
}

// SessionStatusInProgress is the non-terminal session status; terminal states
// are grade-derived (see StatusForGrade).
const SessionStatusInProgress = "in_progress"

// Summary is the roll-up object written at the end of a session.
type Summary struct {
	TotalValidations  int    `json:"total_validations"`
	PassedValidations int    `json:"passed_validations"`
	FailedValidations int    `json:"failed_validations"`
	ComplianceScore   int    `json:"compliance_score"`
	ComplianceGrade   string `json:"compliance_grade"`
	Status            string `json:"status"`
}

// ArtifactTree is the scanned file inventory of the project under validation.
// Paths are relative to Root with forward slashes.
type ArtifactTree struct {
	Root          string   `json:"root"`
	Files         []string `json:"files"`
	WorkflowFiles []string `json:"workflow_files"`
}
