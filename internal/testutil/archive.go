package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"
)

// WriteZip writes a zip archive at path holding the given entries.
func WriteZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create archive dir: %v", err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", name, err)
		}
		if _, err := w.Write(content); err != nil {
			t.Fatalf("failed to write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to finish archive: %v", err)
	}
}

// XZ compresses content with xz.
func XZ(t *testing.T, content []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("failed to create xz writer: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("failed to write xz content: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close xz writer: %v", err)
	}
	return buf.Bytes()
}
