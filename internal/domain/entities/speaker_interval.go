package entities

// SpeakerInterval is one contiguous span where a single speaker was detected,
// in global (whole-recording) time, seconds.
type SpeakerInterval struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Duration returns the span length in seconds
func (s SpeakerInterval) Duration() float64 {
	return s.End - s.Start
}

// IsValid reports whether the interval is well-formed
func (s SpeakerInterval) IsValid() bool {
	return s.End > s.Start
}

// ApplyRenaming rewrites speaker labels uniformly according to mapping.
// Entries with an empty new name leave the original label untouched.
func ApplyRenaming(intervals []SpeakerInterval, mapping map[string]string) []SpeakerInterval {
	if len(mapping) == 0 {
		return intervals
	}
	renamed := make([]SpeakerInterval, len(intervals))
	for i, interval := range intervals {
		if name, ok := mapping[interval.Speaker]; ok && name != "" {
			interval.Speaker = name
		}
		renamed[i] = interval
	}
	return renamed
}
