package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/meetingnotes-team/meeting-notes/errors"
)

func TestComputeWindows_SingleWindowPassthrough(t *testing.T) {
	windows, err := ComputeWindows(600, 900, 10)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	require.Equal(t, 0.0, windows[0].Start)
	require.Equal(t, 600.0, windows[0].End)
	require.Equal(t, 0, windows[0].Index)
}

func TestComputeWindows_ThirtyMinuteRecording(t *testing.T) {
	// The greedy cursor leaves a short tail window so no window ever exceeds
	// the configured length
	windows, err := ComputeWindows(1800, 900, 10)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	require.Equal(t, 0.0, windows[0].Start)
	require.Equal(t, 900.0, windows[0].End)
	require.Equal(t, 890.0, windows[1].Start)
	require.Equal(t, 1790.0, windows[1].End)
	require.Equal(t, 1780.0, windows[2].Start)
	require.Equal(t, 1800.0, windows[2].End)
}

func TestComputeWindows_CoverageAndOverlap(t *testing.T) {
	total := 3700.0
	windows, err := ComputeWindows(total, 900, 10)
	require.NoError(t, err)
	require.True(t, len(windows) > 1)

	require.Equal(t, 0.0, windows[0].Start)
	require.Equal(t, total, windows[len(windows)-1].End)
	for i, w := range windows {
		require.Equal(t, i, w.Index)
		require.LessOrEqual(t, w.End-w.Start, 900.0)
		if i > 0 {
			prev := windows[i-1]
			require.Less(t, prev.Start, w.Start)
			// No gaps, fixed overlap except at the tail
			if prev.End < total {
				require.Equal(t, 10.0, prev.End-w.Start)
			}
		}
	}
}

func TestComputeWindows_ZeroOverlapIsContiguous(t *testing.T) {
	windows, err := ComputeWindows(2700, 900, 0)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	for i := 1; i < len(windows); i++ {
		require.Equal(t, windows[i-1].End, windows[i].Start)
	}
	require.Equal(t, 2700.0, windows[2].End)
}

func TestComputeWindows_CappedIterations(t *testing.T) {
	// Long duration against a tiny window would run far past the cap
	windows, err := ComputeWindows(1e6, 20, 10)
	require.NoError(t, err)
	require.Len(t, windows, MaxWindows)
}

func TestComputeWindows_InvalidConfiguration(t *testing.T) {
	cases := []struct {
		name                         string
		total, windowLength, overlap float64
	}{
		{"zero duration", 0, 900, 10},
		{"negative duration", -5, 900, 10},
		{"zero window length", 1800, 0, 10},
		{"overlap equals window length", 1800, 900, 900},
		{"negative overlap", 1800, 900, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeWindows(tc.total, tc.windowLength, tc.overlap)
			require.Error(t, err)
			appErr, ok := err.(apperrors.AppError)
			require.True(t, ok)
			require.Equal(t, apperrors.ErrorCode_PIPELINE_INVALID_CONFIGURATION, appErr.Code)
		})
	}
}
