package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/meetingnotes-team/meeting-notes/internal/usecase/pipeline"
)

// Compile-time interface implementation check.
var _ pipeline.AudioSource = (*File)(nil)

// commandRunner executes an external command and returns combined stdout.
// Injectable for tests.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// File is an ffmpeg/ffprobe-backed recording on local disk. Extracted slices
// are mono 16 kHz WAV files in tmpDir, each released independently.
type File struct {
	path   string
	tmpDir string
	run    commandRunner
}

// NewFile wraps a local audio file. tmpDir is where extracted window slices
// are written; empty means the system temp directory.
func NewFile(path, tmpDir string) *File {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &File{path: path, tmpDir: tmpDir, run: defaultRunner}
}

// Duration probes the recording length in seconds via ffprobe
func (f *File) Duration(ctx context.Context) (float64, error) {
	out, err := f.run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		f.path)
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// ExtractRange cuts [start, end) into a new mono 16 kHz WAV temp file
func (f *File) ExtractRange(ctx context.Context, start, end float64) (pipeline.AudioClip, error) {
	if end <= start {
		return nil, fmt.Errorf("invalid range %.2f-%.2f", start, end)
	}
	outPath := filepath.Join(f.tmpDir, fmt.Sprintf("window-%s.wav", uuid.NewString()))

	_, err := f.run(ctx, "ffmpeg",
		"-y",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(end-start),
		"-i", f.path,
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outPath)
	if err != nil {
		return nil, fmt.Errorf("extract range %.2f-%.2f: %w", start, end, err)
	}
	return &Clip{path: outPath}, nil
}

// ConvertToWAV normalizes any input container/codec to mono 16 kHz WAV,
// writing next to dest. Used before diarization and analysis.
func (f *File) ConvertToWAV(ctx context.Context, dest string) (*File, error) {
	_, err := f.run(ctx, "ffmpeg",
		"-y",
		"-i", f.path,
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest)
	if err != nil {
		return nil, fmt.Errorf("convert to wav: %w", err)
	}
	converted := NewFile(dest, f.tmpDir)
	converted.run = f.run
	return converted, nil
}

// Path returns the location of the underlying file
func (f *File) Path() string {
	return f.path
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

// Clip is one extracted window slice, removed on Release
type Clip struct {
	path string
}

// Path returns the temp file location
func (c *Clip) Path() string {
	return c.path
}

// Release deletes the temp file
func (c *Clip) Release() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
