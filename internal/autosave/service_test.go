package autosave

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/docwright/docwright/internal/document"
)

type fakeSaver struct {
	mu    sync.Mutex
	dirty bool
	saves int
	err   error
}

func (f *fakeSaver) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

func (f *fakeSaver) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves++
	f.dirty = false
	return nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func TestNewService_RejectsBadSpec(t *testing.T) {
	if _, err := NewService(&fakeSaver{}, "every so often"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveNow_SkipsCleanDocument(t *testing.T) {
	f := &fakeSaver{}
	s, err := NewService(f, "@every 1h")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveNow(); err != nil {
		t.Fatal(err)
	}
	if f.count() != 0 {
		t.Errorf("clean document should not be saved")
	}
}

func TestSaveNow_RecordsFailure(t *testing.T) {
	f := &fakeSaver{dirty: true, err: errors.New("disk full")}
	s, _ := NewService(f, "@every 1h")
	if err := s.SaveNow(); err == nil {
		t.Fatal("expected error")
	}
	if got := s.Stats().LastError; got != "disk full" {
		t.Errorf("LastError = %q", got)
	}
}

func TestStart_SavesOnScheduleAndAtShutdown(t *testing.T) {
	f := &fakeSaver{dirty: true}
	s, err := NewService(f, "@every 1s")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for f.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if f.count() != 1 {
		t.Fatalf("expected a scheduled save, got %d", f.count())
	}

	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start returned %v", err)
	}
	if f.count() != 2 {
		t.Errorf("expected final save at shutdown, got %d saves", f.count())
	}
}

func TestSaveNow_Document(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	doc, err := document.Load(path, "tester")
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.Insert("Hello.", ""); err != nil {
		t.Fatal(err)
	}

	s, _ := NewService(doc, "@every 1h")
	if err := s.SaveNow(); err != nil {
		t.Fatal(err)
	}
	if doc.Dirty() {
		t.Error("document should be clean after save")
	}
	if s.Stats().Saves != 1 {
		t.Errorf("Saves = %d", s.Stats().Saves)
	}
}
