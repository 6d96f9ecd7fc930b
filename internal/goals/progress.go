package goals

import "math"

// Progress is how far a measured value is towards its goal.
type Progress struct {
	Current  int64   `json:"current"`
	Goal     int64   `json:"goal"`
	Fraction float64 `json:"fraction"`
	Percent  int     `json:"percent"`
}

// NewProgress computes the progress of current towards goal. The fraction is
// clamped to [0, 1] and is 0 for a non-positive goal.
func NewProgress(current, goal int64) Progress {
	p := Progress{Current: current, Goal: goal}
	if goal <= 0 {
		return p
	}
	p.Fraction = math.Min(math.Max(float64(current)/float64(goal), 0), 1)
	p.Percent = int(math.Round(p.Fraction * 100))
	return p
}
