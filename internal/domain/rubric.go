package domain

import "fmt"

// RubricBand maps a minimum score percentage to a qualitative status label.
type RubricBand struct {
	MinPercent int    `yaml:"min_percent" json:"min_percent"`
	Label      string `yaml:"label"       json:"label"`
}

// Rubric is an ordered breakpoint table (highest MinPercent first) that turns
// a dimension's score percentage into a status label. Each dimension declares
// its own table; there is no shared global rubric.
type Rubric []RubricBand

// Label returns the label of the first band whose MinPercent the score meets.
func (r Rubric) Label(scorePercent int) string {
	for _, band := range r {
		if scorePercent >= band.MinPercent {
			return band.Label
		}
	}
	return "insufficient"
}

// Validate checks that the rubric is non-empty, strictly descending, and ends
// with a catch-all band at 0.
func (r Rubric) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("rubric has no bands")
	}
	prev := 101
	for i, band := range r {
		if band.MinPercent >= prev {
			return fmt.Errorf("rubric band %d (%s) is not in descending order", i, band.Label)
		}
		if band.MinPercent < 0 || band.MinPercent > 100 {
			return fmt.Errorf("rubric band %d (%s) has min_percent %d outside [0,100]", i, band.Label, band.MinPercent)
		}
		if band.Label == "" {
			return fmt.Errorf("rubric band %d has an empty label", i)
		}
		prev = band.MinPercent
	}
	if r[len(r)-1].MinPercent != 0 {
		return fmt.Errorf("rubric has no catch-all band at 0")
	}
	return nil
}
