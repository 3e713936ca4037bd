package domain

// ScoreComposite combines per-dimension scores into the final composite.
// Each dimension contributes floor(scorePercent * weight / 100) points; points
// are summed without renormalization, so the weights must total 100 for the
// result to land in [0,100]. That invariant is enforced by config validation
// before a session starts, never silently repaired here.
//
// The function is pure: identical inputs always yield the identical result,
// and persisting it is the caller's job.
func ScoreComposite(dimensions []Dimension, weights map[string]int, passThreshold int) CompositeScore {
	cs := CompositeScore{
		WeightedPoints: make(map[string]int, len(dimensions)),
		PassThreshold:  passThreshold,
	}

	for _, d := range dimensions {
		points := d.ScorePercent * weights[d.Name] / 100
		cs.WeightedPoints[d.Name] = points
		cs.Total += points
	}

	cs.Grade = GradeFor(cs.Total)
	cs.Passed = cs.Total >= passThreshold
	return cs
}
