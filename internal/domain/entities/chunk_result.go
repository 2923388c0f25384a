package entities

// ChunkResult is the outcome of analyzing one window. OK=false means the
// analysis call failed or returned unusable output; Text then holds a
// human-readable placeholder so synthesis always has something to merge.
type ChunkResult struct {
	Window TimeWindow `json:"window"`
	Text   string     `json:"text"`
	OK     bool       `json:"ok"`
}
