package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bft-labs/entryship/internal/domain"
)

// JSONLReader reads one JSON object per line. Blank lines are skipped.
type JSONLReader struct {
	r       *bufio.Reader
	closer  io.Closer
	tail    bool
	partial []byte
	line    int
}

// NewJSONLReader creates a reader over r. With tail set, a last line that is
// not yet terminated by a newline is held back until the rest of it arrives,
// so the reader can be resumed after io.EOF on a growing file. Without tail,
// an unterminated last line is parsed as-is.
func NewJSONLReader(r io.Reader, tail bool) *JSONLReader {
	closer, _ := r.(io.Closer)
	return &JSONLReader{
		r:      bufio.NewReader(r),
		closer: closer,
		tail:   tail,
	}
}

// Next returns the next entry, or io.EOF when no complete line is available.
func (j *JSONLReader) Next(ctx context.Context) (domain.Entry, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk, err := j.r.ReadBytes('\n')
		if len(chunk) > 0 {
			j.partial = append(j.partial, chunk...)
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read line %d: %w", j.line+1, err)
		}

		complete := len(j.partial) > 0 && j.partial[len(j.partial)-1] == '\n'
		if err != nil && !complete && (j.tail || len(j.partial) == 0) {
			return nil, io.EOF
		}

		raw := j.partial
		j.partial = nil
		j.line++

		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}

		var entry domain.Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("line %d: %w", j.line, err)
		}
		if entry == nil {
			return nil, fmt.Errorf("line %d: not a JSON object", j.line)
		}
		return entry, nil
	}
}

// Close closes the underlying reader if it is an io.Closer.
func (j *JSONLReader) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}
