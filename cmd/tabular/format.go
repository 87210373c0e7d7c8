package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format type constants
const (
	FormatCSV     = "csv"
	FormatJSONL   = "jsonl"
	FormatParquet = "parquet"
)

// ErrUnsupportedFormat is returned when an unsupported format is requested
var ErrUnsupportedFormat = errors.New("unsupported format")

// Reader defines the interface for tabular input handlers. Every cell is kept
// as its raw string rendition; type interpretation happens downstream.
type Reader interface {
	// ReadAll reads the entire input into a Dataset
	ReadAll() (*Dataset, error)

	// Close closes the underlying reader if it's closable
	Close() error
}

// NewReader returns the appropriate reader for the format string.
func NewReader(format string, r io.ReadCloser) (Reader, error) {
	switch format {
	case FormatCSV:
		return NewCSVReaderWithCloser(r), nil
	case FormatJSONL:
		return NewJSONLReaderWithCloser(r), nil
	case FormatParquet:
		return NewParquetReaderWithCloser(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Writer defines the interface for tabular output handlers
type Writer interface {
	// Format renders a dataset in the target format
	Format(ds *Dataset) ([]byte, error)

	// Extension returns the file extension for this format (e.g., ".csv")
	Extension() string

	// MIMEType returns the MIME type for this format
	MIMEType() string
}

// NewWriter returns the appropriate writer for the format string.
func NewWriter(format string) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(), nil
	case FormatJSONL:
		return NewJSONLWriter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// DetectFormat determines the tabular format and compression extension from a
// filename, e.g. "orders.csv.zst" -> ("csv", "zstd"). An unrecognized trailing
// extension is treated as uncompressed.
func DetectFormat(filename string) (format string, compression string, err error) {
	name := filepath.Base(filename)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst":
		compression = "zstd"
		name = strings.TrimSuffix(name, filepath.Ext(name))
	case ".lz4":
		compression = "lz4"
		name = strings.TrimSuffix(name, filepath.Ext(name))
	case ".gz":
		compression = "gzip"
		name = strings.TrimSuffix(name, filepath.Ext(name))
	default:
		compression = "none"
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, compression, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, compression, nil
	case ".parquet":
		return FormatParquet, compression, nil
	default:
		return "", "", fmt.Errorf("%w: cannot detect format of %s", ErrUnsupportedFormat, filename)
	}
}
