package entities

import "fmt"

// TimeWindow is one bounded slice of the recording, analyzed independently.
// Windows are produced in strictly increasing start order and never mutated.
type TimeWindow struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the window length in seconds
func (w TimeWindow) Duration() float64 {
	return w.End - w.Start
}

// Range renders the window bounds in minutes for segment headings,
// e.g. "0.0-15.0 min"
func (w TimeWindow) Range() string {
	return fmt.Sprintf("%.1f-%.1f min", w.Start/60, w.End/60)
}
