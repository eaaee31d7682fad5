package usecase

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"reelstitch/internal/domain/model"
	"reelstitch/internal/domain/ports/adapter"
	"reelstitch/internal/infra/resultstore"
	"reelstitch/internal/infra/scratch"

	"github.com/rs/zerolog"
)

// fakeFetcher writes a small payload for every URL, or fails with the error
// registered for it.
type fakeFetcher struct {
	mu    sync.Mutex
	fail  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL, dest string) (int64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	err := f.fail[rawURL]
	f.mu.Unlock()
	if err != nil {
		// leave a partial file behind like a real failed download would
		_ = os.WriteFile(dest, []byte("part"), 0o644)
		return 4, err
	}
	payload := []byte("data:" + rawURL)
	if err := os.WriteFile(dest, payload, 0o644); err != nil {
		return 0, err
	}
	return int64(len(payload)), nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeTranscoder writes its outputs like ffmpeg would and records the specs.
type fakeTranscoder struct {
	mu       sync.Mutex
	baseErr  error
	muxErr   error
	bases    []adapter.BaseSpec
	finals   []adapter.FinalSpec
	block    chan struct{}
	started  chan struct{}
	startOne sync.Once
}

func (f *fakeTranscoder) BuildBase(ctx context.Context, spec adapter.BaseSpec) error {
	f.mu.Lock()
	f.bases = append(f.bases, spec)
	f.mu.Unlock()
	if f.started != nil {
		f.startOne.Do(func() { close(f.started) })
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := os.WriteFile(spec.ListPath, []byte("list"), 0o644); err != nil {
		return err
	}
	if f.baseErr != nil {
		return f.baseErr
	}
	return os.WriteFile(spec.OutputPath, []byte("base"), 0o644)
}

func (f *fakeTranscoder) Mux(_ context.Context, spec adapter.FinalSpec) error {
	f.mu.Lock()
	f.finals = append(f.finals, spec)
	f.mu.Unlock()
	if f.muxErr != nil {
		return f.muxErr
	}
	return os.WriteFile(spec.OutputPath, []byte("final:"+spec.NarrationPath), 0o644)
}

func (f *fakeTranscoder) BaseCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bases)
}

type harness struct {
	fetcher    *fakeFetcher
	transcoder *fakeTranscoder
	scratch    *scratch.Manager
	results    *resultstore.MemoryStore
	uc         StitchUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zerolog.Nop()
	mgr := scratch.NewManager(t.TempDir(), &log)
	if err := mgr.Init(); err != nil {
		t.Fatal(err)
	}
	h := &harness{
		fetcher:    &fakeFetcher{fail: map[string]error{}},
		transcoder: &fakeTranscoder{},
		scratch:    mgr,
		results:    resultstore.NewMemoryStore(&log),
	}
	h.uc = NewStitchUseCase(
		StitchConfig{Width: 1080, Height: 1920, FPS: 30, ResultTTL: 30 * time.Minute},
		h.fetcher, h.transcoder, mgr, h.results, &log,
	)
	return h
}

// jobDirs lists what is left under the scratch jobs directory.
func (h *harness) jobDirs(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.scratch.Root() + "/jobs")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func validRequest() model.JobRequest {
	return model.JobRequest{
		NarrationURL: "https://cdn.example.com/voice.mp3",
		VideoURLs: []string{
			"https://cdn.example.com/a.mp4",
			"https://cdn.example.com/b.mp4",
			"https://cdn.example.com/c.mov",
		},
	}
}
