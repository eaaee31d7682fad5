package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/ports/adapter"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("Missing() = %#v", missing)
	}
}

type stubRunner struct {
	out string
	err error
}

func (s stubRunner) Run(context.Context, string, ...string) (*adapter.ProcessResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &adapter.ProcessResult{Stdout: s.out}, nil
}

func TestProbeVersion(t *testing.T) {
	v, err := ProbeVersion(context.Background(), stubRunner{out: "ffmpeg version 7.1 Copyright (c)\nbuilt with gcc\n"}, "ffmpeg")
	if err != nil || v != "ffmpeg version 7.1 Copyright (c)" {
		t.Fatalf("ProbeVersion = %q, %v", v, err)
	}

	spawn := &domain.SpawnError{Program: "ffmpeg", Code: "ENOENT", Err: os.ErrNotExist}
	if _, err := ProbeVersion(context.Background(), stubRunner{err: spawn}, "ffmpeg"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected spawn error, got %v", err)
	}
}
