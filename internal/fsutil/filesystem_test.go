package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	var fsys FileSystem = OSFileSystem{}

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	name := filepath.Join(dir, "a.txt")
	w, err := fsys.Create(name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := fsys.ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("ReadFile = %q, want hello", got)
	}
	if !fsys.Exists(name) || fsys.Exists(filepath.Join(dir, "missing")) {
		t.Error("Exists reported wrong state")
	}
}

func TestMemoryFileSystem_CreateNeedsParent(t *testing.T) {
	m := NewMemoryFileSystem()

	if _, err := m.Create("plots/a.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Create without parent: err = %v, want ErrNotExist", err)
	}
	if err := m.WriteFile("plots/a.json", nil, 0o644); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("WriteFile without parent: err = %v, want ErrNotExist", err)
	}

	if err := m.MkdirAll("plots/run", 0o755); err != nil {
		t.Fatal(err)
	}
	if !m.Exists("plots") || !m.Exists("plots/run") {
		t.Fatal("MkdirAll did not record parents")
	}
	if _, err := m.Create("plots/run/a.png"); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestMemoryFileSystem_DataVisibleOnClose(t *testing.T) {
	m := NewMemoryFileSystem()
	w, err := m.Create("a.bin")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte{1, 2, 3})

	if got, _ := m.ReadFile("a.bin"); len(got) != 0 {
		t.Fatalf("data visible before Close: %v", got)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if got, _ := m.ReadFile("a.bin"); len(got) != 3 {
		t.Fatalf("ReadFile after Close = %v", got)
	}
	if _, err := w.Write([]byte{4}); !errors.Is(err, fs.ErrClosed) {
		t.Fatalf("Write after Close: err = %v", err)
	}
	if err := w.Close(); !errors.Is(err, fs.ErrClosed) {
		t.Fatalf("double Close: err = %v", err)
	}
}

func TestMemoryFileSystem_DataIsolation(t *testing.T) {
	m := NewMemoryFileSystem()
	data := []byte("abc")
	if err := m.WriteFile("x", data, 0o644); err != nil {
		t.Fatal(err)
	}
	data[0] = 'z'

	got, _ := m.ReadFile("x")
	if string(got) != "abc" {
		t.Fatalf("stored data aliased caller slice: %q", got)
	}
	got[1] = 'z'
	again, _ := m.ReadFile("x")
	if string(again) != "abc" {
		t.Fatalf("ReadFile result aliased storage: %q", again)
	}
}

func TestMemoryFileSystem_Files(t *testing.T) {
	m := NewMemoryFileSystem()
	_ = m.MkdirAll("out/sub", 0o755)
	_ = m.MkdirAll("other", 0o755)
	_ = m.WriteFile("out/b.png", nil, 0o644)
	_ = m.WriteFile("out/a.png", nil, 0o644)
	_ = m.WriteFile("out/sub/c.png", nil, 0o644)
	_ = m.WriteFile("other/d.png", nil, 0o644)

	got := m.Files("out")
	want := []string{"out/a.png", "out/b.png", "out/sub/c.png"}
	if len(got) != len(want) {
		t.Fatalf("Files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Files = %v, want %v", got, want)
		}
	}
}

func TestMemoryFileSystem_ReadMissing(t *testing.T) {
	m := NewMemoryFileSystem()
	if _, err := m.ReadFile("nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}
