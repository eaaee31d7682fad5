package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Check", "Status"}, [][]string{{"FFmpeg", "ok"}, {"Scratch"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"CHECK", "STATUS", "FFmpeg", "Scratch", "╭"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<nil>") {
		t.Fatalf("short row should render empty cells:\n%s", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("no headers should render nothing")
	}
}

func TestScratchCheck(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scratch")
	c := scratchCheck(root)
	if !c.ok {
		t.Fatalf("expected writable scratch, got %+v", c)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("scratch root not created: %v", err)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if c := scratchCheck(filepath.Join(file, "sub")); c.ok {
		t.Fatalf("expected failure under a regular file, got %+v", c)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "final.mp4")
	if err := os.WriteFile(src, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "out.mp4")
	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil || string(b) != "video" {
		t.Fatalf("dst = %q, %v", b, err)
	}
}

func TestRootCommand_RenderRequiresOut(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"render", "--narration", "https://example.com/a.mp3"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--out") {
		t.Fatalf("expected --out error, got %v", err)
	}
}

func TestRootCommand_BadConfigPath(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"doctor", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected config error, got %v", err)
	}
}
