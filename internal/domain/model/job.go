package model

import "time"

// Stage is a step of the per-job pipeline state machine. Transitions are
// linear; StageFailed is reachable from every other stage.
type Stage string

const (
	StageStart     Stage = "start"
	StageFetching  Stage = "fetching"
	StageBaseBuild Stage = "base_build"
	StageFinalMux  Stage = "final_mux"
	StageCleanup   Stage = "cleanup"
	StagePublished Stage = "published"
	StageFailed    Stage = "failed"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// JobRequest is the client supplied description of a stitch job.
// Width and Height are optional; zero means "use the configured default".
type JobRequest struct {
	NarrationURL string   `json:"narration_url"`
	VideoURLs    []string `json:"video_urls"`
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
}

// Job exists only while its pipeline runs. It is never persisted.
type Job struct {
	ID        string
	Request   JobRequest
	Stage     Stage
	CreatedAt time.Time
}

// JobRecord is the externally visible status of a submitted job.
type JobRecord struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Stage     Stage     `json:"stage"`
	Error     string    `json:"error,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
