// Package procexec runs external programs to completion and classifies how
// they ended: could not start, killed by a signal, or exited non-zero.
package procexec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/ports/adapter"
	"reelstitch/internal/infra/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// DefaultLimit caps captured stdout and stderr, per stream.
const DefaultLimit = 64 << 10

var _ adapter.CommandRunner = (*Runner)(nil)

// Runner implements adapter.CommandRunner on top of os/exec.
type Runner struct {
	limit   int
	timeout time.Duration
	log     *zerolog.Logger
}

// NewRunner builds a Runner. limit bounds each captured stream (<= 0 uses
// DefaultLimit). timeout bounds each invocation; zero means none.
func NewRunner(limit int, timeout time.Duration, logger *zerolog.Logger) *Runner {
	if limit <= 0 {
		limit = DefaultLimit
	}
	l := logger.With().Str("component", "procexec").Logger()
	return &Runner{limit: limit, timeout: timeout, log: &l}
}

// Run starts name with args, stdin closed, and waits for it to exit.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*adapter.ProcessResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	stdout := newTailBuffer(r.limit)
	stderr := newTailBuffer(r.limit)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil // reads from the null device
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.log.Debug().Str("program", name).Strs("args", args).Msg("starting process")
	start := time.Now()

	if err := cmd.Start(); err != nil {
		metrics.IncSubprocessFailure("spawn")
		return nil, &domain.SpawnError{Program: name, Code: errnoName(err), Err: err}
	}

	err := cmd.Wait()
	res := &adapter.ProcessResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if stdout.Truncated() || stderr.Truncated() {
		r.log.Debug().Str("program", name).Msg("process output truncated")
	}
	if err == nil {
		r.log.Debug().Str("program", name).Dur("duration", time.Since(start)).Msg("process finished")
		return res, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("wait %s: %w", name, err)
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		metrics.IncSubprocessFailure("terminated")
		te := &domain.TerminatedError{
			Program: name,
			Signal:  signalName(ws.Signal()),
			Stderr:  strings.TrimSpace(res.Stderr),
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w (%v)", te, ctxErr)
		}
		return nil, te
	}
	metrics.IncSubprocessFailure("exit")
	return nil, &domain.ExitError{
		Program: name,
		Code:    exitErr.ExitCode(),
		Stderr:  strings.TrimSpace(res.Stderr),
		Stdout:  strings.TrimSpace(res.Stdout),
	}
}

func errnoName(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if name := unix.ErrnoName(errno); name != "" {
			return name
		}
		return fmt.Sprintf("errno %d", int(errno))
	}
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return "ENOENT"
	case errors.Is(err, fs.ErrPermission):
		return "EACCES"
	}
	return "UNKNOWN"
}

func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return sig.String()
}
