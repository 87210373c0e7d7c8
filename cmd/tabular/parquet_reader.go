package tabular

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// ParquetReader reads Parquet input into a Dataset. Every value is rendered to
// its string form so the comparison layer sees a uniform cell type.
type ParquetReader struct {
	file   *parquet.File
	closer io.ReadCloser
}

// NewParquetReader creates a new Parquet reader
// Note: Parquet requires io.ReaderAt, so we read the entire file into memory
func NewParquetReader(r io.Reader) (*ParquetReader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}

	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &ParquetReader{
		file:   file,
		closer: nil,
	}, nil
}

// NewParquetReaderWithCloser creates a new Parquet reader with a closable reader
func NewParquetReaderWithCloser(r io.ReadCloser) (*ParquetReader, error) {
	reader, err := NewParquetReader(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	reader.closer = r
	return reader, nil
}

// ReadAll reads all rows from the parquet file by iterating its row groups.
func (r *ParquetReader) ReadAll() (*Dataset, error) {
	schema := r.file.Schema()
	columnPaths := schema.Columns()

	// Flatten nested paths; the last component is the column name
	columnNames := make([]string, len(columnPaths))
	for i, path := range columnPaths {
		if len(path) > 0 {
			columnNames[i] = path[len(path)-1]
		}
	}

	ds := NewDataset(columnNames)

	for _, rowGroup := range r.file.RowGroups() {
		rowReader := rowGroup.Rows()

		for {
			batch := make([]parquet.Row, 1000)
			n, err := rowReader.ReadRows(batch)
			if n > 0 {
				for rowIdx := 0; rowIdx < n; rowIdx++ {
					row := make(Record, len(columnNames))
					for i, val := range batch[rowIdx] {
						if i >= len(columnNames) {
							break
						}
						row[columnNames[i]] = renderParquetValue(val)
					}
					ds.Append(row)
				}
			}
			if err == io.EOF || n == 0 {
				break
			}
			if err != nil {
				rowReader.Close()
				return nil, fmt.Errorf("failed to read parquet rows: %w", err)
			}
		}

		if err := rowReader.Close(); err != nil {
			return nil, fmt.Errorf("failed to close parquet row reader: %w", err)
		}
	}

	return ds, nil
}

// renderParquetValue converts a parquet.Value to its cell string rendition.
func renderParquetValue(val parquet.Value) string {
	if val.IsNull() {
		return ""
	}

	switch val.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(val.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(val.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(val.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(val.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(val.Double(), 'g', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(val.ByteArray())
	default:
		return string(val.ByteArray())
	}
}

// Close closes the underlying reader
func (r *ParquetReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
