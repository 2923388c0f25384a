package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInternalError = errors.New("internal server error")
)

// Analysis job errors
var (
	ErrJobNotFound     = errors.New("analysis job not found")
	ErrNoClaimableJob  = errors.New("no claimable job")
	ErrJobNotCompleted = errors.New("analysis job not completed yet")
	ErrJobCancelled    = errors.New("analysis job cancelled")
)

// Report errors
var (
	ErrReportNotFound = errors.New("meeting report not found")
)

// Request errors
var (
	ErrUnknownSection    = errors.New("unknown report section key")
	ErrDuplicateSection  = errors.New("duplicate report section key")
	ErrMissingRecording  = errors.New("recording url is required")
	ErrUnsupportedAudio  = errors.New("unsupported audio format")
	ErrRecordingTooLarge = errors.New("recording exceeds the size limit")
	ErrRecordingNotFound = errors.New("recording not found")
)
