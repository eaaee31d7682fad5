package adapter

import "context"

// ProcessResult is the record of one successful subprocess invocation.
type ProcessResult struct {
	Stdout string
	Stderr string
}

// CommandRunner runs an external program to completion. Any outcome other
// than exit code zero is returned as an error (SpawnError, TerminatedError
// or ExitError from the domain package).
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (*ProcessResult, error)
}
