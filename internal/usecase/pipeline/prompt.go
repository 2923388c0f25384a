package pipeline

import (
	"fmt"
	"strings"

	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
)

// languageContract is the instruction that keeps model output in the language
// actually spoken in the recording. Every prompt built here carries it.
const languageContract = "CRITICAL: detect the language spoken or written in the content and respond ONLY in that language. Never switch to another language, even partially."

// ChunkPromptInput carries everything needed to build one per-window prompt
type ChunkPromptInput struct {
	Sections    []entities.AnalysisSection
	Speakers    []entities.SpeakerInterval // window-local time
	WindowIndex int
	WindowCount int
	Window      entities.TimeWindow
}

// BuildChunkPrompt renders the analysis instruction for one audio window.
// The segment position line is omitted for single-window runs so the model
// does not treat a complete recording as a fragment.
func BuildChunkPrompt(in ChunkPromptInput) string {
	var b strings.Builder

	b.WriteString("You are an assistant that analyzes meeting recordings. Listen to the audio and produce a structured analysis.\n\n")

	if in.WindowCount > 1 {
		fmt.Fprintf(&b, "SEGMENT %d/%d (%s) of a longer recording. Analyze only what you hear in this segment.\n\n",
			in.WindowIndex+1, in.WindowCount, in.Window.Range())
	}

	if len(in.Speakers) > 0 {
		b.WriteString("Detected speakers in this segment (times relative to segment start):\n")
		for _, s := range in.Speakers {
			fmt.Fprintf(&b, "- %s: %.1fs-%.1fs\n", s.Speaker, s.Start, s.End)
		}
		b.WriteString("Attribute statements to these speakers when possible.\n\n")
	}

	b.WriteString("Structure the analysis with the following sections, in this order:\n")
	for _, s := range in.Sections {
		fmt.Fprintf(&b, "## %s\n%s\n\n", s.Title, s.Description)
	}

	b.WriteString(languageContract)
	return b.String()
}

// BuildSynthesisPrompt renders the merge instruction for the second phase:
// one call that folds all per-segment analyses into a single report.
func BuildSynthesisPrompt(sections []entities.AnalysisSection, combined string) string {
	var b strings.Builder

	b.WriteString("Below are analyses of consecutive segments of one meeting recording. Adjacent segments overlap slightly, so some content appears twice.\n\n")
	b.WriteString("Merge them into ONE unified meeting report:\n")
	b.WriteString("- Eliminate redundancy from overlapping or duplicated content\n")
	b.WriteString("- Preserve the temporal and logical order of the meeting\n")
	b.WriteString("- Organize the report with the following sections, in this order:\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "  ## %s: %s\n", s.Title, s.Description)
	}
	b.WriteString("\n")
	b.WriteString("Detect the dominant language across the segment analyses and respond ONLY in that language.\n\n")
	b.WriteString("Segment analyses:\n\n")
	b.WriteString(combined)
	return b.String()
}
