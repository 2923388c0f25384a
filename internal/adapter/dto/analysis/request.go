package analysis

// SubmitAnalysisRequest is the payload for submitting a recording for analysis.
type SubmitAnalysisRequest struct {
	RecordingURL     string            `json:"recording_url" validate:"required"`
	Sections         []string          `json:"sections,omitempty"`
	MeetingType      string            `json:"meeting_type,omitempty" validate:"omitempty,oneof=action information"`
	Diarization      bool              `json:"diarization"`
	ExpectedSpeakers int               `json:"expected_speakers,omitempty" validate:"omitempty,min=0,max=20"`
	SpeakerNames     map[string]string `json:"speaker_names,omitempty"`
}
