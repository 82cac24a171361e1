package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rohmanhakim/searchcrawl/pkg/failure"
)

// GetFileExtension extracts the file extension from a path, or empty string if none
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	// Remove the leading dot
	return strings.TrimPrefix(ext, ".")
}

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	assetsDir := filepath.Join(targetPath...)
	if err := os.MkdirAll(assetsDir, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// WriteFileAtomic writes data to path by first writing to a temp file in
// the same directory, then renaming it into place. This guarantees a
// reader never observes a partially written file. Returns a retryable
// FileError on disk-full (ENOSPC).
func WriteFileAtomic(path string, data []byte, perm os.FileMode) failure.ClassifiedError {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		retryable := errors.Is(err, syscall.ENOSPC)
		cause := ErrCauseWriteFailure
		if retryable {
			cause = ErrCauseDiskFull
		}
		return &FileError{Message: err.Error(), Retryable: retryable, Cause: cause}
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &FileError{Message: err.Error(), Retryable: false, Cause: ErrCausePathError}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &FileError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &FileError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure}
	}

	return nil
}
