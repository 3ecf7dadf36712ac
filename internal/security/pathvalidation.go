// Package security validates where the tools are allowed to write reports.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideAllowedDirs is returned when a path escapes every allowed root.
var ErrOutsideAllowedDirs = errors.New("path outside allowed directories")

// ErrBadExtension is returned when an output path has the wrong extension.
var ErrBadExtension = errors.New("unexpected file extension")

// canonical resolves symlinks in the longest existing prefix of path, so a
// not-yet-created file under a symlinked directory is judged by where the
// directory really points.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	existing, rest := abs, ""
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}
}

// WithinDirectory reports an error when path, after resolving symlinks,
// is not dir or a descendant of it.
func WithinDirectory(path, dir string) error {
	p, err := canonical(path)
	if err != nil {
		return err
	}
	d, err := canonical(dir)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(d, p)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutsideAllowedDirs, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s escapes %s", ErrOutsideAllowedDirs, path, dir)
	}
	return nil
}

// WithinAny accepts path when it lies inside at least one of dirs.
func WithinAny(path string, dirs []string) error {
	if len(dirs) == 0 {
		return fmt.Errorf("no allowed directories specified")
	}
	for _, dir := range dirs {
		if WithinDirectory(path, dir) == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not within %v", ErrOutsideAllowedDirs, path, dirs)
}

// ValidateOutputPath checks a report path: it must sit under the working
// directory or the temp directory, and, when exts is non-empty, end in one
// of exts (compared case-insensitively, with the leading dot).
func ValidateOutputPath(path string, exts ...string) error {
	if len(exts) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		ok := false
		for _, e := range exts {
			if ext == strings.ToLower(e) {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: %q, want one of %v", ErrBadExtension, filepath.Ext(path), exts)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	return WithinAny(path, []string{os.TempDir(), cwd})
}

// SanitizeFilename turns an arbitrary label (a session source, a recording
// name) into a safe file name stem. Runs of other characters become a single
// underscore; the result is trimmed and capped at 128 bytes.
func SanitizeFilename(s string) string {
	const maxLen = 128
	var b strings.Builder
	pendingUnderscore := false
	for _, r := range s {
		safe := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-'
		if !safe {
			pendingUnderscore = true
			continue
		}
		if pendingUnderscore && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingUnderscore = false
		if b.Len() >= maxLen {
			break
		}
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "._")
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	if out == "" {
		return "unknown"
	}
	return out
}
