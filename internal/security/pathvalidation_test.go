package security

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	// Create directories for symlink tests
	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	if err := os.MkdirAll(safeDir, 0755); err != nil {
		t.Fatalf("Failed to create safe directory: %v", err)
	}
	if err := os.MkdirAll(unsafeDir, 0755); err != nil {
		t.Fatalf("Failed to create unsafe directory: %v", err)
	}

	// Create a symlink inside safe directory pointing to unsafe directory
	symlinkPath := filepath.Join(safeDir, "evil-symlink")
	if err := os.Symlink(unsafeDir, symlinkPath); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		dir       string
		wantError bool
	}{
		{"report in directory", filepath.Join(tmpDir, "trace.png"), tmpDir, false},
		{"report in new subdirectory", filepath.Join(tmpDir, "runs", "a", "trace.png"), tmpDir, false},
		{"dot-dot escape", filepath.Join(tmpDir, "..", "trace.png"), tmpDir, true},
		{"relative escape", "../../../etc/passwd", tmpDir, true},
		{"absolute outside", "/etc/passwd", tmpDir, true},
		{"new file under symlinked dir", filepath.Join(symlinkPath, "report.html"), safeDir, true},
		{"symlink itself", symlinkPath, safeDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WithinDirectory(tt.filePath, tt.dir)
			if (err != nil) != tt.wantError {
				t.Errorf("WithinDirectory() error = %v, wantError %v", err, tt.wantError)
			}
			if err != nil && !errors.Is(err, ErrOutsideAllowedDirs) {
				t.Errorf("expected ErrOutsideAllowedDirs, got %v", err)
			}
		})
	}
}

func TestWithinAny(t *testing.T) {
	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()

	if err := WithinAny(filepath.Join(tmpDir2, "x.png"), []string{tmpDir1, tmpDir2}); err != nil {
		t.Errorf("expected path in second dir to pass, got %v", err)
	}
	if err := WithinAny("/etc/passwd", []string{tmpDir1, tmpDir2}); err == nil {
		t.Error("expected /etc/passwd to be rejected")
	}
	if err := WithinAny(filepath.Join(tmpDir1, "x.png"), nil); err == nil {
		t.Error("expected error with no allowed directories")
	}
}

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		exts    []string
		wantErr error
	}{
		{"png in temp", filepath.Join(os.TempDir(), "trace.png"), []string{".png"}, nil},
		{"extension case-insensitive", filepath.Join(os.TempDir(), "trace.PNG"), []string{".png"}, nil},
		{"html relative to cwd", "report.html", []string{".html", ".htm"}, nil},
		{"any extension", filepath.Join(os.TempDir(), "journal.db"), nil, nil},
		{"wrong extension", filepath.Join(os.TempDir(), "trace.exe"), []string{".png"}, ErrBadExtension},
		{"outside", "/etc/trace.png", []string{".png"}, ErrOutsideAllowedDirs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.path, tt.exts...)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateOutputPath() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateOutputPath() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"guard.jsonl", "guard.jsonl"},
		{"replay:/tmp/run 1.jsonl", "replay_tmp_run_1.jsonl"},
		{"  spaced  ", "spaced"},
		{"___", "unknown"},
		{"", "unknown"},
		{"a//b", "a_b"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := SanitizeFilename(strings.Repeat("x", 500))
	if len(long) != 128 {
		t.Errorf("expected 128-byte cap, got %d", len(long))
	}
}
