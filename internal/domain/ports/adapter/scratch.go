package adapter

import "reelstitch/internal/domain/model"

// Workspace is the private scratch namespace of one job.
type Workspace interface {
	Dir() string
	// Path returns the deterministic file for role and tracks it for cleanup.
	Path(role model.Role, ext string) string
	// Discard removes files best-effort and returns the failure count.
	Discard(paths ...string) int
	// Promote moves a finished artifact out of the workspace.
	Promote(src string) (string, error)
	// Cleanup removes everything still tracked; safe to repeat.
	Cleanup() int
}

// WorkspaceProvider allocates job workspaces.
type WorkspaceProvider interface {
	Open(jobID string) (Workspace, error)
}
