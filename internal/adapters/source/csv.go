package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/bft-labs/entryship/internal/domain"
)

// CSVReader turns rows into entries keyed by the header row.
type CSVReader struct {
	r      *csv.Reader
	closer io.Closer
	header []string
}

// NewCSVReader creates a reader over r. A zero delimiter means ','.
func NewCSVReader(r io.Reader, delimiter rune) *CSVReader {
	closer, _ := r.(io.Closer)
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.TrimLeadingSpace = true
	return &CSVReader{r: cr, closer: closer}
}

// Header returns the field names, or nil before the first row was read.
func (c *CSVReader) Header() []string {
	return c.header
}

// Next returns the next row as an entry, or io.EOF at the end of input.
func (c *CSVReader) Next(ctx context.Context) (domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.header == nil {
		header, err := c.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read header: %w", err)
		}
		seen := make(map[string]bool, len(header))
		for _, name := range header {
			if name == "" {
				return nil, errors.New("read header: empty field name")
			}
			if seen[name] {
				return nil, fmt.Errorf("read header: duplicate field %q", name)
			}
			seen[name] = true
		}
		c.header = header
	}

	record, err := c.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read row: %w", err)
	}

	entry := make(domain.Entry, len(c.header))
	for i, name := range c.header {
		entry[name] = record[i]
	}
	return entry, nil
}

// Close closes the underlying reader if it is an io.Closer.
func (c *CSVReader) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
