package pipeline

import (
	"fmt"

	"github.com/meetingnotes-team/meeting-notes/errors"
	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

const (
	// DefaultWindowLength is the target window length in seconds (15 min)
	DefaultWindowLength = 900.0
	// DefaultOverlap is the shared region between adjacent windows in seconds,
	// so a phrase split at a cut boundary appears fully in at least one window
	DefaultOverlap = 10.0
	// MaxWindows caps windowing iteration against pathological inputs where
	// the cursor fails to advance
	MaxWindows = 50
)

// ComputeWindows splits totalDuration into bounded, overlapping time windows
// of at most windowLength seconds. A duration that fits a single window is
// returned as exactly one window covering it.
func ComputeWindows(totalDuration, windowLength, overlap float64) ([]entities.TimeWindow, error) {
	if totalDuration <= 0 {
		return nil, errors.ErrInvalidConfiguration("total duration must be positive")
	}
	if windowLength <= 0 {
		return nil, errors.ErrInvalidConfiguration("window length must be positive")
	}
	if overlap < 0 || overlap >= windowLength {
		return nil, errors.ErrInvalidConfiguration(
			fmt.Sprintf("overlap must be in [0, window length), got %.1f", overlap))
	}

	if totalDuration <= windowLength {
		return []entities.TimeWindow{{Index: 0, Start: 0, End: totalDuration}}, nil
	}

	windows := make([]entities.TimeWindow, 0, int(totalDuration/windowLength)+1)
	cursor := 0.0
	for len(windows) < MaxWindows {
		end := cursor + windowLength
		if end > totalDuration {
			end = totalDuration
		}
		windows = append(windows, entities.TimeWindow{
			Index: len(windows),
			Start: cursor,
			End:   end,
		})
		if end >= totalDuration {
			break
		}
		cursor = end - overlap
	}
	return windows, nil
}
