package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/tree"
)

func sampleDoc() *tree.Document {
	d := tree.InsertChild(tree.New(), "", domain.Node{ID: "component-1", Name: "Hero", Kind: domain.KindSection})
	return tree.InsertChild(d, "component-1", domain.Node{ID: "component-2", Name: "Title", Kind: domain.KindText})
}

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(State{}, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Page Builder Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") || !strings.Contains(s, "(no document)") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportListsLayers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	doc := sampleDoc()
	path, err := writeReport(State{Dir: dir, Document: func() *tree.Document { return doc }}, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected crash report under %s, got %s", dir, path)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "Hero [section] component-1\n  Title [text] component-2\n") {
		t.Fatalf("layers missing: %s", b)
	}
}

func TestLayersSurvivesPanickingSource(t *testing.T) {
	got := layers(State{Document: func() *tree.Document { panic("gone") }})
	if !strings.Contains(got, "document unreadable: gone") {
		t.Fatalf("unexpected layers: %q", got)
	}
}

// TestRecover_Panicking ensures Recover handles a panic, writes a report,
// and does not terminate the test process due to injected exitFn.
func TestRecover_Panicking(t *testing.T) {
	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r) // drain pipe
	}()

	// Override exitFn to avoid os.Exit during test and to assert it was called
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	func() {
		defer Recover(State{Dir: dir, Document: sampleDoc})
		panic("boom")
	}()

	var found string
	files, _ := os.ReadDir(dir)
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			found = filepath.Join(dir, f.Name())
			break
		}
	}
	if found == "" {
		t.Fatalf("expected crash report file under %s", dir)
	}
	b, err := os.ReadFile(found)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}

	// Ensure exit was attempted with code 2 (but intercepted)
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}
