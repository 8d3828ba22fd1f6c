package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteIfChangedTracked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	changed, err := WriteIfChangedTracked(path, []byte("a"))
	if err != nil || !changed {
		t.Fatalf("expected first write to change file, changed=%v err=%v", changed, err)
	}

	changed, err = WriteIfChangedTracked(path, []byte("a"))
	if err != nil || changed {
		t.Fatalf("expected identical write to be skipped, changed=%v err=%v", changed, err)
	}

	if err := WriteIfChanged(path, []byte("b")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "b" {
		t.Fatalf("expected updated content, got %q", data)
	}
}

func TestWriteIfMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	created, err := WriteIfMissing(path, []byte("first"), 0644)
	if err != nil || !created {
		t.Fatalf("expected file to be created, created=%v err=%v", created, err)
	}
	created, err = WriteIfMissing(path, []byte("second"), 0644)
	if err != nil || created {
		t.Fatalf("expected existing file to be kept, created=%v err=%v", created, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "first" {
		t.Fatalf("expected original content, got %q", data)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]int{"files": 2}); err != nil {
		t.Fatalf("PrintJSON failed: %v", err)
	}
	if buf.String() != "{\n  \"files\": 2\n}\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
