package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrQueueFull       = errors.New("job queue is full")
	ErrStillRunning    = errors.New("job still running")
)

// ValidationError reports a malformed job request. It is raised before any
// scratch storage, network or subprocess activity happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// FetchError reports a remote resource that could not be retrieved in full.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no HTTP response was received
	Reason     string
	Err        error
}

func (e *FetchError) Error() string {
	msg := "fetch " + e.URL + ": " + e.Reason
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// SpawnError means the external program could not be started at all.
type SpawnError struct {
	Program string
	Code    string // OS error name such as ENOENT or EACCES
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %s: %v", e.Program, e.Code, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// TerminatedError means the external program was killed by a signal.
type TerminatedError struct {
	Program string
	Signal  string
	Stderr  string
}

func (e *TerminatedError) Error() string {
	return fmt.Sprintf("%s terminated by signal %s", e.Program, e.Signal)
}

// ExitError means the external program ran to completion and reported failure.
type ExitError struct {
	Program string
	Code    int
	Stderr  string
	Stdout  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Program, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	} else if e.Stdout != "" {
		msg += ": " + e.Stdout
	}
	return msg
}

// Classify returns a short, stable label for err used by logs and metrics.
func Classify(err error) string {
	var (
		ve *ValidationError
		fe *FetchError
		se *SpawnError
		te *TerminatedError
		ee *ExitError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &fe):
		return "fetch"
	case errors.As(err, &se):
		return "spawn"
	case errors.As(err, &te):
		return "terminated"
	case errors.As(err, &ee):
		return "exit"
	default:
		return "internal"
	}
}

// PublicMessage renders err for API clients. Captured tool output and
// wrapped causes stay out of it; they belong in the logs.
func PublicMessage(err error) string {
	var (
		ve *ValidationError
		fe *FetchError
		se *SpawnError
		te *TerminatedError
		ee *ExitError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &fe):
		msg := "fetch " + fe.URL + ": " + fe.Reason
		if fe.StatusCode != 0 {
			msg = fmt.Sprintf("%s (status %d)", msg, fe.StatusCode)
		}
		return msg
	case errors.As(err, &se):
		return fmt.Sprintf("could not start %s: %s", se.Program, se.Code)
	case errors.As(err, &te):
		return te.Error()
	case errors.As(err, &ee):
		return fmt.Sprintf("%s exited with code %d", ee.Program, ee.Code)
	case errors.Is(err, ErrQueueFull):
		return ErrQueueFull.Error()
	case errors.Is(err, context.Canceled):
		return "job canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "job timed out"
	default:
		return "internal error"
	}
}
