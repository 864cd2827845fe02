// Package fs commits entry batches to JSON-lines files on local disk.
package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bft-labs/entryship/internal/domain"
)

const fileExt = ".jsonl"

// EntryFileWriter implements ports.EntryWriter by appending each entry as
// one JSON line to <dir>/<destination>.jsonl. Batches from concurrent
// callers are appended one at a time.
type EntryFileWriter struct {
	dir string
	mu  sync.Mutex
}

// NewEntryFileWriter creates a writer for the given directory.
func NewEntryFileWriter(dir string) *EntryFileWriter {
	return &EntryFileWriter{dir: dir}
}

// WriteEntries appends the batch and syncs the file before returning.
// A batch is encoded completely before anything is written, so an entry that
// cannot be encoded leaves the file untouched.
func (w *EntryFileWriter) WriteEntries(ctx context.Context, batch domain.Batch) error {
	if batch.Empty() {
		return nil
	}
	path, err := w.Path(batch.Destination)
	if err != nil {
		return err
	}

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	for i, e := range batch.Entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode entry %d of batch %d: %w", i, batch.Seq, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Ensure directory exists
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if _, err := bw.WriteString(buf.String()); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Path returns the file a destination is written to.
func (w *EntryFileWriter) Path(destination string) (string, error) {
	if destination == "" || destination == "." || destination == ".." ||
		strings.ContainsAny(destination, `/\`) {
		return "", fmt.Errorf("invalid destination %q for file backend", destination)
	}
	return filepath.Join(w.dir, destination+fileExt), nil
}
