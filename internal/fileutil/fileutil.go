package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to path through a temp file in the same directory,
// so readers see either the old content or the new content.
func WriteAtomic(path string, data []byte, mode os.FileMode) error {
	return replace(path, mode, func(w io.Writer) (int64, error) {
		n, err := w.Write(data)
		return int64(n), err
	})
}

// CopyAtomic streams src into dst with the same temp-then-rename guarantee and
// returns the number of bytes copied. A short copy is an error and leaves dst
// untouched.
func CopyAtomic(src, dst string, mode os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	var written int64
	err = replace(dst, mode, func(w io.Writer) (int64, error) {
		n, err := io.Copy(w, in)
		if err != nil {
			return n, err
		}
		if n != info.Size() {
			return n, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), n)
		}
		written = n
		return n, nil
	})
	return written, err
}

func replace(path string, mode os.FileMode, fill func(io.Writer) (int64, error)) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	fail := func(step string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%s: %w", step, err)
	}

	if _, err := fill(tmp); err != nil {
		return fail("write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
