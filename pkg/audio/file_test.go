package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDuration_ParsesProbeOutput(t *testing.T) {
	f := NewFile("/recordings/meeting.mp3", t.TempDir())
	var gotArgs []string
	f.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		require.Equal(t, "ffprobe", name)
		gotArgs = args
		return []byte("1800.042000\n"), nil
	}

	duration, err := f.Duration(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 1800.042, duration, 1e-6)
	require.Contains(t, gotArgs, "/recordings/meeting.mp3")
}

func TestDuration_UnparseableOutput(t *testing.T) {
	f := NewFile("/recordings/meeting.mp3", t.TempDir())
	f.run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("N/A"), nil
	}

	_, err := f.Duration(context.Background())
	require.Error(t, err)
}

func TestExtractRange_BuildsFfmpegCommand(t *testing.T) {
	tmp := t.TempDir()
	f := NewFile("/recordings/meeting.wav", tmp)
	var gotName string
	var gotArgs []string
	f.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return nil, nil
	}

	clip, err := f.ExtractRange(context.Background(), 890, 1800)
	require.NoError(t, err)
	require.Equal(t, "ffmpeg", gotName)
	require.Contains(t, gotArgs, "890.000")
	require.Contains(t, gotArgs, "910.000") // -t takes the slice length
	require.Contains(t, gotArgs, "16000")
	require.Equal(t, tmp, filepath.Dir(clip.Path()))
}

func TestExtractRange_RejectsInvertedRange(t *testing.T) {
	f := NewFile("/recordings/meeting.wav", t.TempDir())
	f.run = func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("ffmpeg must not run for an invalid range")
		return nil, nil
	}

	_, err := f.ExtractRange(context.Background(), 100, 100)
	require.Error(t, err)
}

func TestExtractRange_PropagatesFfmpegFailure(t *testing.T) {
	f := NewFile("/recordings/meeting.wav", t.TempDir())
	f.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("ffmpeg: invalid data found")
	}

	_, err := f.ExtractRange(context.Background(), 0, 900)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid data")
}

func TestClipRelease_RemovesFileAndToleratesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "window.wav")
	require.NoError(t, os.WriteFile(path, []byte("wav"), 0o644))

	clip := &Clip{path: path}
	require.NoError(t, clip.Release())
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))

	// double release is not an error
	require.NoError(t, clip.Release())
}
