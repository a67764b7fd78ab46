package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "params.json")

	if err := fs.WriteFile(path, []byte(`{"fps":60}`)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"fps":60}` {
		t.Errorf("unexpected content %q", data)
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "debug", "frames", "frame_0000.png")

	if err := fs.WriteFile(path, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}

func TestFileSystem_Create(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "out", "clip.ts")

	w, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := w.Write([]byte{0x47}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Create truncates existing content
	w, err = fs.Create(path)
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	w.Write([]byte{0x01})
	w.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 1 || data[0] != 0x01 {
		t.Errorf("expected truncated file with 1 byte, got %x", data)
	}
}

func TestFileSystem_CreateFailsOnDirectory(t *testing.T) {
	fs := New()
	if _, err := fs.Create(t.TempDir()); err == nil {
		t.Error("expected error creating a file over a directory")
	}
}

func TestFileSystem_ExistsAndRemove(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "x.ts")

	exists, err := fs.Exists(path)
	if err != nil || exists {
		t.Fatalf("expected missing file, got exists=%v err=%v", exists, err)
	}

	if err := fs.WriteFile(path, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if exists, _ := fs.Exists(path); !exists {
		t.Error("expected file to exist after write")
	}

	if err := fs.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if exists, _ := fs.Exists(path); exists {
		t.Error("expected file to be gone after Remove")
	}
}

func TestFileSystem_MkdirAll(t *testing.T) {
	fs := New()
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	if err := fs.MkdirAll(dir); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory, got %v %v", info, err)
	}
}
