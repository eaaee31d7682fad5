package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPublicMessage(t *testing.T) {
	const secret = "/tmp/secret/path: 403 Forbidden"
	exit := &ExitError{Program: "ffmpeg", Code: 1, Stderr: secret, Stdout: secret}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &ValidationError{Field: "video_urls", Reason: "exactly 3 video URLs are required"},
			"invalid request: video_urls: exactly 3 video URLs are required"},
		{"fetch status", &FetchError{URL: "https://x/a.mp4", StatusCode: 404, Reason: "unexpected status"},
			"fetch https://x/a.mp4: unexpected status (status 404)"},
		{"fetch wrapping tool failure", &FetchError{URL: "https://x/a.mp4", Reason: "download failed", Err: exit},
			"fetch https://x/a.mp4: download failed"},
		{"spawn", &SpawnError{Program: "ffmpeg", Code: "ENOENT", Err: errors.New("no such file")},
			"could not start ffmpeg: ENOENT"},
		{"terminated", &TerminatedError{Program: "ffmpeg", Signal: "SIGKILL", Stderr: secret},
			"ffmpeg terminated by signal SIGKILL"},
		{"exit wrapped by step", fmt.Errorf("base_build: %w", exit), "ffmpeg exited with code 1"},
		{"queue full", ErrQueueFull, "job queue is full"},
		{"canceled", fmt.Errorf("allocate scratch: %w", context.Canceled), "job canceled"},
		{"other", errors.New("disk on fire"), "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PublicMessage(tt.err)
			if got != tt.want {
				t.Fatalf("PublicMessage = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "secret") {
				t.Fatalf("tool output leaked: %q", got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]error{
		"ok":         nil,
		"validation": &ValidationError{Reason: "x"},
		"fetch":      &FetchError{URL: "u", Reason: "r", Err: &ExitError{Program: "ffmpeg", Code: 1}},
		"spawn":      fmt.Errorf("base_build: %w", &SpawnError{Program: "ffmpeg", Code: "ENOENT"}),
		"terminated": &TerminatedError{Program: "ffmpeg", Signal: "SIGKILL"},
		"exit":       &ExitError{Program: "ffmpeg", Code: 2},
		"internal":   errors.New("boom"),
	}
	for want, err := range tests {
		if got := Classify(err); got != want {
			t.Errorf("Classify(%v) = %q, want %q", err, got, want)
		}
	}
}
