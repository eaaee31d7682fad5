package scratch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"reelstitch/internal/domain/model"

	"github.com/rs/zerolog"
)

// Workspace is the scratch namespace of a single job. File names are
// derived from the role, so two jobs never collide and a job never writes
// outside its own directory.
type Workspace struct {
	id         string
	dir        string
	resultPath string
	log        *zerolog.Logger

	mu      sync.Mutex
	tracked []string
	closed  bool
}

func (w *Workspace) Dir() string { return w.dir }

// Path returns the file for role and records it for cleanup. The same role
// always maps to the same file.
func (w *Workspace) Path(role model.Role, ext string) string {
	p := filepath.Join(w.dir, string(role)+ext)
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.tracked {
		if t == p {
			return p
		}
	}
	w.tracked = append(w.tracked, p)
	return p
}

// Tracked returns the files handed out so far.
func (w *Workspace) Tracked() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.tracked...)
}

// Discard deletes the given workspace files. Missing files are fine; other
// failures are logged and counted, never returned.
func (w *Workspace) Discard(paths ...string) int {
	failed := 0
	for _, p := range paths {
		if err := removeFile(p); err != nil {
			failed++
			w.log.Warn().Err(err).Str("path", p).Msg("failed to remove scratch file")
		}
		w.untrack(p)
	}
	return failed
}

// Promote moves src into the results directory and returns the new path.
func (w *Workspace) Promote(src string) (string, error) {
	if err := os.Rename(src, w.resultPath); err != nil {
		return "", fmt.Errorf("promote %s: %w", filepath.Base(src), err)
	}
	w.untrack(src)
	return w.resultPath, nil
}

// Cleanup deletes every tracked file and the job directory. It is safe to
// call more than once and returns the number of failed removals.
func (w *Workspace) Cleanup() int {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return 0
	}
	w.closed = true
	paths := w.tracked
	w.tracked = nil
	w.mu.Unlock()

	failed := 0
	for _, p := range paths {
		if err := removeFile(p); err != nil {
			failed++
			w.log.Warn().Err(err).Str("path", p).Msg("failed to remove scratch file")
		}
	}
	if err := os.RemoveAll(w.dir); err != nil {
		failed++
		w.log.Warn().Err(err).Str("path", w.dir).Msg("failed to remove job directory")
	}
	if failed == 0 {
		w.log.Debug().Int("files", len(paths)).Msg("workspace cleaned")
	}
	return failed
}

func (w *Workspace) untrack(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, t := range w.tracked {
		if t == p {
			w.tracked = append(w.tracked[:i], w.tracked[i+1:]...)
			return
		}
	}
}

func removeFile(p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
