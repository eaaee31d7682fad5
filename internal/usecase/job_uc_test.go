package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/model"
	"reelstitch/internal/infra/jobstate"
	"reelstitch/internal/infra/worker"

	"github.com/rs/zerolog"
)

type jobHarness struct {
	*harness
	pool   *worker.Pool
	states *jobstate.MemoryRepo
	uc     JobUseCase
}

func newJobHarness(t *testing.T, workers, queue int) *jobHarness {
	t.Helper()
	h := newHarness(t)
	log := zerolog.Nop()
	pool := worker.NewPool(workers, queue, &log)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})
	states := jobstate.NewMemoryRepo(30 * time.Minute)
	return &jobHarness{
		harness: h,
		pool:    pool,
		states:  states,
		uc:      NewJobUseCase(h.uc, pool, states, 30*time.Minute, &log),
	}
}

func TestJob_SubmitAndWait(t *testing.T) {
	h := newJobHarness(t, 2, 4)
	ctx := context.Background()

	ticket, err := h.uc.Submit(ctx, validRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	entry, err := h.uc.Wait(ctx, ticket, 0)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if entry.ID != ticket.Job.ID {
		t.Fatalf("entry id = %q, want %q", entry.ID, ticket.Job.ID)
	}

	rec, err := h.uc.Status(ctx, ticket.Job.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if rec.Status != model.JobStatusSucceeded || rec.Stage != model.StagePublished {
		t.Fatalf("record = %+v", rec)
	}
	if !rec.ExpiresAt.Equal(entry.ExpiresAt) {
		t.Fatalf("expires_at = %s, want %s", rec.ExpiresAt, entry.ExpiresAt)
	}
}

func TestJob_FailureIsRecorded(t *testing.T) {
	h := newJobHarness(t, 1, 4)
	req := validRequest()
	h.fetcher.fail[req.NarrationURL] = &domain.FetchError{URL: req.NarrationURL, StatusCode: 404, Reason: "unexpected status"}

	ticket, err := h.uc.Submit(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.uc.Wait(context.Background(), ticket, 0); domain.Classify(err) != "fetch" {
		t.Fatalf("Wait err = %v", err)
	}
	rec, err := h.uc.Status(context.Background(), ticket.Job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != model.JobStatusFailed || rec.Stage != model.StageFailed || rec.Error == "" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestJob_FailureRecordHidesToolOutput(t *testing.T) {
	h := newJobHarness(t, 1, 4)
	h.transcoder.baseErr = &domain.ExitError{Program: "ffmpeg", Code: 1, Stderr: "/tmp/secret/path: Invalid data"}

	ticket, err := h.uc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.uc.Wait(context.Background(), ticket, 0); domain.Classify(err) != "exit" {
		t.Fatalf("Wait err = %v", err)
	}
	rec, err := h.uc.Status(context.Background(), ticket.Job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Error != "ffmpeg exited with code 1" {
		t.Fatalf("record error = %q", rec.Error)
	}
	if strings.Contains(rec.Error, "secret") {
		t.Fatalf("stderr leaked into job record: %q", rec.Error)
	}
}

func TestJob_ValidationRejectedUpFront(t *testing.T) {
	h := newJobHarness(t, 1, 1)
	req := validRequest()
	req.NarrationURL = ""

	_, err := h.uc.Submit(context.Background(), req)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(h.fetcher.Calls()) != 0 {
		t.Fatal("no work may start for an invalid request")
	}
}

func TestJob_WaitTimesOutAndJobContinues(t *testing.T) {
	h := newJobHarness(t, 1, 1)
	h.transcoder.block = make(chan struct{})
	h.transcoder.started = make(chan struct{})

	ticket, err := h.uc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	<-h.transcoder.started

	if _, err := h.uc.Wait(context.Background(), ticket, 10*time.Millisecond); !errors.Is(err, domain.ErrStillRunning) {
		t.Fatalf("expected ErrStillRunning, got %v", err)
	}
	rec, _ := h.uc.Status(context.Background(), ticket.Job.ID)
	if rec.Status != model.JobStatusRunning || rec.Stage != model.StageBaseBuild {
		t.Fatalf("record while running = %+v", rec)
	}

	// a caller giving up does not cancel the job
	close(h.transcoder.block)
	if _, err := h.uc.Wait(context.Background(), ticket, 0); err != nil {
		t.Fatalf("job should still finish: %v", err)
	}
}

func TestJob_QueueFull(t *testing.T) {
	h := newJobHarness(t, 1, 1)
	h.transcoder.block = make(chan struct{})
	h.transcoder.started = make(chan struct{})
	defer close(h.transcoder.block)

	if _, err := h.uc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatal(err)
	}
	<-h.transcoder.started // the only worker is busy
	if _, err := h.uc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("second job should queue: %v", err)
	}
	_, err := h.uc.Submit(context.Background(), validRequest())
	if !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestJob_StatusUnknown(t *testing.T) {
	h := newJobHarness(t, 1, 1)
	if _, err := h.uc.Status(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJob_WaitHonorsCallerContext(t *testing.T) {
	h := newJobHarness(t, 1, 1)
	h.transcoder.block = make(chan struct{})
	defer close(h.transcoder.block)

	ticket, err := h.uc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := h.uc.Wait(ctx, ticket, 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}
