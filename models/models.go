package models

import "time"

// Status is the lifecycle state of a video asset. Processing is the only
// non-terminal state; Completed and Failed are immutable once reached.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Progress stages
const (
	StageThumbnails = "thumbnails"
	StageConversion = "conversion"
)

// Video is the catalog record for one uploaded asset.
type Video struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	OriginalName string            `json:"originalName"`
	UploadDate   time.Time         `json:"uploadDate"`
	Status       Status            `json:"status"`
	Thumbnails   []string          `json:"thumbnails"`
	Resolutions  map[string]string `json:"resolutions"`
	Metadata     *Metadata         `json:"metadata"`
	Error        string            `json:"error,omitempty"`
}

// Metadata is the probe summary attached to a completed asset.
type Metadata struct {
	Duration float64 `json:"duration"`
	Size     int64   `json:"size"`
	Format   string  `json:"format"`
}

// ProcessingProgress is one ephemeral progress snapshot. In the conversion
// stage Resolution, Current and Total identify the active ladder entry.
type ProcessingProgress struct {
	Stage      string  `json:"stage"`
	Resolution string  `json:"resolution,omitempty"`
	Current    int     `json:"current,omitempty"`
	Total      int     `json:"total,omitempty"`
	Percent    float64 `json:"percent"`
}

// ProcessResult is the successful output of one pipeline run. Paths are
// relative to the output base directory.
type ProcessResult struct {
	AssetID     string            `json:"assetId"`
	Thumbnails  []string          `json:"thumbnails"`
	Resolutions map[string]string `json:"resolutions"`
	Metadata    Metadata          `json:"metadata"`
}

// AssetStatusUpdate is the event published to the status queue on every
// asset state transition.
type AssetStatusUpdate struct {
	AssetID         string            `json:"asset_id"`
	Status          Status            `json:"status"`
	Thumbnails      []string          `json:"thumbnails,omitempty"`
	Resolutions     map[string]string `json:"resolutions,omitempty"`
	Metadata        *Metadata         `json:"metadata,omitempty"`
	FailDescription string            `json:"fail_description,omitempty"`
	ErrorCode       string            `json:"error_code,omitempty"`
}
