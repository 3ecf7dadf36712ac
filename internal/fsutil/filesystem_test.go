package fsutil

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fsys := OSFileSystem{}

	if !fsys.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fsys.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestOSFileSystem_RoundTrip(t *testing.T) {
	fsys := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "reports", "run1")

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	path := filepath.Join(dir, "trace.png")
	w, err := fsys.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("png")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	info, err := fsys.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 3 {
		t.Errorf("expected size 3, got %d", info.Size())
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	testData := []byte("hello, world")
	if err := mfs.WriteFile("/test.txt", testData, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	// Mutating the caller's slice must not change the stored file.
	testData[0] = 'j'

	data, err := mfs.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello, world" {
		t.Errorf("expected %q, got %q", "hello, world", data)
	}
}

func TestMemoryFileSystem_CreateCommitsOnClose(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("/out/report.html")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("<html>")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := mfs.ReadFile("/out/report.html")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty file before Close, got %q", data)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	data, _ = mfs.ReadFile("/out/report.html")
	if string(data) != "<html>" {
		t.Errorf("expected '<html>', got %q", data)
	}
}

func TestMemoryFileSystem_OpenStreams(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("frames.jsonl", []byte("{\"a\":1}\n{\"a\":2}\n"), 0644)

	f, err := mfs.Open("frames.jsonl")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
	}
	if lines != 2 {
		t.Errorf("expected 2 lines, got %d", lines)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "frames.jsonl" {
		t.Errorf("expected name frames.jsonl, got %s", info.Name())
	}

	rest, _ := io.ReadAll(f)
	if len(rest) != 0 {
		t.Errorf("expected reader to be drained, got %q", rest)
	}
}

func TestMemoryFileSystem_Missing(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if _, err := mfs.ReadFile("nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile: expected ErrNotExist, got %v", err)
	}
	if _, err := mfs.Open("nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open: expected ErrNotExist, got %v", err)
	}
	if _, err := mfs.Stat("nope"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Stat: expected ErrNotExist, got %v", err)
	}
	if mfs.Exists("nope") {
		t.Error("expected nope to not exist")
	}
}

func TestMemoryFileSystem_Directories(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		info, err := mfs.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%s) failed: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", dir)
		}
	}

	// Parents of files count as directories.
	_ = mfs.WriteFile("/x/y/file.txt", []byte("1"), 0644)
	if !mfs.Exists("/x/y") {
		t.Error("expected implied directory /x/y")
	}
	if mfs.Exists("/x/yy") {
		t.Error("expected /x/yy to not exist")
	}
}

func TestMemoryFileSystem_Files(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("b.txt", nil, 0644)
	_ = mfs.WriteFile("./a.txt", nil, 0644)

	got := mfs.Files()
	if len(got) != 2 || got[0] != "a.txt" || got[1] != "b.txt" {
		t.Errorf("unexpected files %v", got)
	}
}

func TestFileSystemInterface(t *testing.T) {
	var _ FileSystem = OSFileSystem{}
	var _ FileSystem = NewMemoryFileSystem()
}
