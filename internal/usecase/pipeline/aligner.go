package pipeline

import "github.com/meetingnotes-team/meeting-notes/internal/domain/entities"

// DefaultMinIntervalDuration drops clipped slivers shorter than this many
// seconds, typically produced by overlap-boundary clipping
const DefaultMinIntervalDuration = 0.1

// AlignIntervals intersects global speaker intervals with a window and
// re-zeroes them to window-local time. Non-overlapping intervals and clipped
// results shorter than minDuration are dropped. Malformed intervals
// (end <= start) are skipped. Output order matches input order.
func AlignIntervals(intervals []entities.SpeakerInterval, w entities.TimeWindow, minDuration float64) []entities.SpeakerInterval {
	if len(intervals) == 0 {
		return nil
	}
	aligned := make([]entities.SpeakerInterval, 0, len(intervals))
	for _, interval := range intervals {
		if !interval.IsValid() {
			continue
		}
		if interval.End <= w.Start || interval.Start >= w.End {
			continue
		}
		start := interval.Start
		if start < w.Start {
			start = w.Start
		}
		end := interval.End
		if end > w.End {
			end = w.End
		}
		if end-start < minDuration {
			continue
		}
		aligned = append(aligned, entities.SpeakerInterval{
			Speaker: interval.Speaker,
			Start:   start - w.Start,
			End:     end - w.Start,
		})
	}
	return aligned
}
