package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/internal/ports"
)

// Format names an input file format.
type Format string

const (
	FormatAuto  Format = ""
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ParseFormat validates a configured format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatAuto, FormatJSONL, FormatCSV:
		return f, nil
	case "auto":
		return FormatAuto, nil
	default:
		return FormatAuto, fmt.Errorf("unknown input format %q: %w", s, domain.ErrInvalidConfig)
	}
}

// DetectFormat picks a format from the file extension. Anything that is not
// .csv or .tsv is read as JSON lines.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return FormatCSV
	default:
		return FormatJSONL
	}
}

// Options controls how Open reads a file.
type Options struct {
	Format Format
	// Delimiter is the CSV field separator. Empty means ',' (or tab for
	// .tsv files).
	Delimiter string
	// Tail prepares the reader to be resumed after io.EOF.
	Tail bool
}

// Open opens path and returns a reader for its format.
func Open(path string, opts Options) (ports.EntryReader, error) {
	format := opts.Format
	if format == FormatAuto {
		format = DetectFormat(path)
	}

	var delim rune
	switch {
	case opts.Delimiter != "":
		r, size := utf8.DecodeRuneInString(opts.Delimiter)
		if size != len(opts.Delimiter) || r == utf8.RuneError {
			return nil, fmt.Errorf("csv delimiter %q must be a single character: %w", opts.Delimiter, domain.ErrInvalidConfig)
		}
		delim = r
	case strings.EqualFold(filepath.Ext(path), ".tsv"):
		delim = '\t'
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	switch format {
	case FormatCSV:
		return NewCSVReader(f, delim), nil
	default:
		return NewJSONLReader(f, opts.Tail), nil
	}
}

// Destination derives a destination name from an input path: the base name
// without its extension.
func Destination(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
