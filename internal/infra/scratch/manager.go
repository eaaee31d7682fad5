// Package scratch owns the on-disk working area of the service: one private
// directory per running job plus a results directory for published
// artifacts.
package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"reelstitch/internal/domain/ports/adapter"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// ErrLocked is returned by Acquire when another process owns the root.
var ErrLocked = errors.New("scratch root is locked by another process")

const (
	jobsDir    = "jobs"
	resultsDir = "results"
	lockFile   = ".lock"
)

var _ adapter.WorkspaceProvider = (*Manager)(nil)

type Manager struct {
	root string
	lock *flock.Flock
	log  *zerolog.Logger
}

// NewManager roots the scratch area at root. A relative root is resolved
// against the working directory: ffmpeg reads concat list entries relative
// to the list file, so every path handed out must be absolute.
func NewManager(root string, logger *zerolog.Logger) *Manager {
	l := logger.With().Str("component", "scratch").Logger()
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	} else {
		l.Warn().Err(err).Str("root", root).Msg("could not resolve scratch root")
	}
	return &Manager{
		root: root,
		lock: flock.New(filepath.Join(root, lockFile)),
		log:  &l,
	}
}

func (m *Manager) Root() string { return m.root }

// Init creates the directory layout under the root.
func (m *Manager) Init() error {
	for _, dir := range []string{m.root, m.jobsPath(), m.resultsPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Acquire initializes the root and takes an exclusive lock on it.
func (m *Manager) Acquire() error {
	if err := m.Init(); err != nil {
		return err
	}
	ok, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	m.log.Debug().Str("root", m.root).Msg("scratch root acquired")
	return nil
}

func (m *Manager) Release() error {
	if err := m.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// PurgeOrphans removes job directories and artifacts left behind by an
// earlier process. Nothing in the current process can reference them, so it
// must only run right after Acquire.
func (m *Manager) PurgeOrphans() (int, error) {
	removed := 0
	var errs []error
	for _, dir := range []string{m.jobsPath(), m.resultsPath()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, err)
			}
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				m.log.Warn().Err(err).Str("path", path).Msg("failed to remove orphaned scratch entry")
				errs = append(errs, err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		m.log.Info().Int("removed", removed).Msg("purged orphaned scratch entries")
	}
	return removed, errors.Join(errs...)
}

// NewWorkspace creates the private directory of job id.
func (m *Manager) NewWorkspace(id string) (*Workspace, error) {
	if id == "" || filepath.Base(id) != id || id == "." || id == ".." {
		return nil, fmt.Errorf("invalid job id %q", id)
	}
	dir := filepath.Join(m.jobsPath(), id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	l := m.log.With().Str("job_id", id).Logger()
	return &Workspace{
		id:         id,
		dir:        dir,
		resultPath: m.ResultPath(id),
		log:        &l,
	}, nil
}

// ResultPath is where the artifact of job id is published.
func (m *Manager) ResultPath(id string) string {
	return filepath.Join(m.resultsPath(), id+".mp4")
}

func (m *Manager) jobsPath() string    { return filepath.Join(m.root, jobsDir) }
func (m *Manager) resultsPath() string { return filepath.Join(m.root, resultsDir) }

// Open implements adapter.WorkspaceProvider.
func (m *Manager) Open(id string) (adapter.Workspace, error) {
	ws, err := m.NewWorkspace(id)
	if err != nil {
		return nil, err
	}
	return ws, nil
}
