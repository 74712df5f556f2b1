// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package console renders human-readable output: progress bars, pass/fail
// lines, and an encoding-safe stdout.
package console

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when no console encoding is configured.
const DefaultEncoding = "utf-8"

// Writer encodes text for the console, replacing characters the console
// cannot represent instead of failing. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	tw *transform.Writer
}

// NewWriter wraps w for the named encoding (any WHATWG label such as
// "utf-8", "windows-1252", "gbk", "shift_jis").
func NewWriter(w io.Writer, name string) (*Writer, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown console encoding %q: %w", name, err)
	}
	return &Writer{tw: transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))}, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tw.Write(p)
}

// Close flushes any buffered partial character.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tw.Close()
}
