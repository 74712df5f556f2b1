// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeAtomic copies r into dest using a temporary file in dest's directory.
// On any failure the temporary file is removed and dest is left untouched.
func writeAtomic(dest string, r io.Reader) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".download-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.CopyBuffer(tmpFile, r, make([]byte, chunkSize))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return n, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

// copyFile replicates src into dest, creating dest's directory.
func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = writeAtomic(dest, in)
	return err
}

// replicate copies src into every target that does not exist yet. Targets
// equal to src are ignored.
func replicate(src string, targets []string) []error {
	var errs []error
	for _, dest := range targets {
		if dest == src || exists(dest) {
			continue
		}
		if err := copyFile(src, dest); err != nil {
			errs = append(errs, &CopyError{Dest: dest, Err: err})
		}
	}
	return errs
}
