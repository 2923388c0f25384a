package errors

// ErrorCode identifies an application error category
type ErrorCode int

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_PERMISSION_DENIED
	ErrorCode_UNAUTHENTICATED

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED

	// Pipeline
	ErrorCode_PIPELINE_INVALID_CONFIGURATION
	ErrorCode_PIPELINE_CHUNK_ANALYSIS_FAILED
	ErrorCode_PIPELINE_SYNTHESIS_FAILED
	ErrorCode_PIPELINE_CLEANUP_FAILED

	// Analysis jobs
	ErrorCode_ANALYSIS_JOB_NOT_FOUND
	ErrorCode_ANALYSIS_FAILED
	ErrorCode_DIARIZATION_FAILED
	ErrorCode_REPORT_NOT_FOUND

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED

	// Database
	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED

	// HTTP helpers
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_MISSING_RECORDING_URL
	ErrorCode_HTTP_OK
)

var codeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                         "UNKNOWN",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:                  "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:               "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:                 "UNAUTHENTICATED",
	ErrorCode_AUTH_INVALID_TOKEN:              "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:              "AUTH_TOKEN_EXPIRED",
	ErrorCode_PIPELINE_INVALID_CONFIGURATION:  "PIPELINE_INVALID_CONFIGURATION",
	ErrorCode_PIPELINE_CHUNK_ANALYSIS_FAILED:  "PIPELINE_CHUNK_ANALYSIS_FAILED",
	ErrorCode_PIPELINE_SYNTHESIS_FAILED:       "PIPELINE_SYNTHESIS_FAILED",
	ErrorCode_PIPELINE_CLEANUP_FAILED:         "PIPELINE_CLEANUP_FAILED",
	ErrorCode_ANALYSIS_JOB_NOT_FOUND:          "ANALYSIS_JOB_NOT_FOUND",
	ErrorCode_ANALYSIS_FAILED:                 "ANALYSIS_FAILED",
	ErrorCode_DIARIZATION_FAILED:              "DIARIZATION_FAILED",
	ErrorCode_REPORT_NOT_FOUND:                "REPORT_NOT_FOUND",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:            "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_MISSING_RECORDING_URL:           "MISSING_RECORDING_URL",
	ErrorCode_HTTP_OK:                         "OK",
}

// String returns the symbolic name of the error code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
