package adapter

import "context"

// BaseSpec describes the normalized, audio-less concatenation of the input
// clips.
type BaseSpec struct {
	Inputs     []string // clips in playback order
	ListPath   string   // where the concat list for Inputs is written
	OutputPath string
	Width      int
	Height     int
	FPS        int
}

// FinalSpec describes looping the base clip under the narration track.
type FinalSpec struct {
	BasePath      string
	NarrationPath string
	OutputPath    string
}

// Transcoder runs the two transcode stages of a job.
type Transcoder interface {
	BuildBase(ctx context.Context, spec BaseSpec) error
	Mux(ctx context.Context, spec FinalSpec) error
}
