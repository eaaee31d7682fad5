package scratch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"reelstitch/internal/domain/model"

	"github.com/rs/zerolog"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	l := zerolog.Nop()
	m := NewManager(t.TempDir(), &l)
	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestWorkspace_PathsAreIsolated(t *testing.T) {
	m := newTestManager(t)
	a, err := m.NewWorkspace("job-a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.NewWorkspace("job-b")
	if err != nil {
		t.Fatal(err)
	}

	pa := a.Path(model.RoleVideo1, ".mp4")
	pb := b.Path(model.RoleVideo1, ".mp4")
	if pa == pb {
		t.Fatalf("two jobs share %s", pa)
	}
	if filepath.Dir(pa) != a.Dir() {
		t.Fatalf("%s outside workspace %s", pa, a.Dir())
	}
	if again := a.Path(model.RoleVideo1, ".mp4"); again != pa {
		t.Fatalf("path not deterministic: %s vs %s", again, pa)
	}
	if n := len(a.Tracked()); n != 1 {
		t.Fatalf("tracked = %d, want 1", n)
	}
}

func TestWorkspace_NewRejectsBadIDs(t *testing.T) {
	m := newTestManager(t)
	for _, id := range []string{"", ".", "..", "../x", "a/b"} {
		if _, err := m.NewWorkspace(id); err == nil {
			t.Errorf("NewWorkspace(%q) should fail", id)
		}
	}
}

func TestWorkspace_CleanupIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	ws, _ := m.NewWorkspace("job")
	narration := ws.Path(model.RoleNarration, ".mp3")
	v1 := ws.Path(model.RoleVideo1, ".mp4")
	_ = ws.Path(model.RoleVideo2, ".mp4") // never written
	touch(t, narration)
	touch(t, v1)

	if failed := ws.Cleanup(); failed != 0 {
		t.Fatalf("Cleanup failed = %d", failed)
	}
	if exists(narration) || exists(v1) || exists(ws.Dir()) {
		t.Fatal("workspace not removed")
	}
	if failed := ws.Cleanup(); failed != 0 {
		t.Fatalf("second Cleanup failed = %d", failed)
	}
}

func TestWorkspace_DiscardAndPromote(t *testing.T) {
	m := newTestManager(t)
	ws, _ := m.NewWorkspace("job")
	base := ws.Path(model.RoleBase, ".mp4")
	final := ws.Path(model.RoleFinal, ".mp4")
	touch(t, base)
	touch(t, final)

	if failed := ws.Discard(base, filepath.Join(ws.Dir(), "missing")); failed != 0 {
		t.Fatalf("Discard failed = %d", failed)
	}
	if exists(base) {
		t.Fatal("base not discarded")
	}

	published, err := ws.Promote(final)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if published != m.ResultPath("job") || !exists(published) {
		t.Fatalf("published at %s", published)
	}
	ws.Cleanup()
	if !exists(published) {
		t.Fatal("cleanup removed the published artifact")
	}
	if exists(ws.Dir()) {
		t.Fatal("job directory left behind")
	}
}

func TestWorkspace_PromoteMissing(t *testing.T) {
	m := newTestManager(t)
	ws, _ := m.NewWorkspace("job")
	if _, err := ws.Promote(ws.Path(model.RoleFinal, ".mp4")); err == nil {
		t.Fatal("expected error promoting a missing file")
	}
}

func TestManager_PurgeOrphans(t *testing.T) {
	m := newTestManager(t)
	ws, _ := m.NewWorkspace("stale")
	touch(t, ws.Path(model.RoleBase, ".mp4"))
	touch(t, m.ResultPath("old"))

	removed, err := m.PurgeOrphans()
	if err != nil {
		t.Fatalf("PurgeOrphans: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if exists(ws.Dir()) || exists(m.ResultPath("old")) {
		t.Fatal("orphans survived")
	}
}

func TestManager_AcquireIsExclusive(t *testing.T) {
	root := t.TempDir()
	l := zerolog.Nop()
	first := NewManager(root, &l)
	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer first.Release()

	second := NewManager(root, &l)
	if err := second.Acquire(); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire = %v, want ErrLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatal(err)
	}
	if err := second.Acquire(); err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	second.Release()
}

func TestManager_RelativeRootIsResolved(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	l := zerolog.Nop()
	m := NewManager("scratch", &l)
	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !filepath.IsAbs(m.Root()) {
		t.Fatalf("root %q is not absolute", m.Root())
	}
	ws, err := m.NewWorkspace("job1")
	if err != nil {
		t.Fatal(err)
	}
	p := ws.Path(model.RoleVideo1, ".mp4")
	if !filepath.IsAbs(p) {
		t.Fatalf("workspace path %q is not absolute", p)
	}
	if want := filepath.Join(m.Root(), "jobs", "job1", "v1.mp4"); p != want {
		t.Fatalf("path = %q, want %q", p, want)
	}
	if !exists(filepath.Join(dir, "scratch", "jobs", "job1")) {
		t.Fatal("workspace not created under the working directory")
	}
	if rp := m.ResultPath("job1"); !filepath.IsAbs(rp) {
		t.Fatalf("result path %q is not absolute", rp)
	}
}
