// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath  = errors.New("output path cannot be empty")
	ErrPathIsDir  = errors.New("output path is a directory")
	ErrNullInPath = errors.New("output path contains null byte")
)

// urlSchemes are the prefixes a page location may start with.
var urlSchemes = []string{"http://", "https://", "file://", "data:", "about:"}

// ValidateOutputPath checks that path can name an output file.
func ValidateOutputPath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, 0) {
		return ErrNullInPath
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPathIsDir, path)
	}
	return nil
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory, then renames it into place. Missing parent directories are
// created. A failed write leaves any existing file untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := ValidateOutputPath(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsURL returns true if the string looks like a page location the browser
// can navigate to (http, https, file, data or about).
//
// Examples:
//   - "https://example.com" -> true
//   - "file:///tmp/page.html" -> true
//   - "data:text/html,<h1>hi</h1>" -> true
//   - "example.com" -> false (no scheme)
//   - "./page.html" -> false (path)
func IsURL(s string) bool {
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}
