package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVReader reads CSV input into a Dataset. All cells are kept as strings and
// blank fields stay empty strings rather than becoming a null marker.
type CSVReader struct {
	reader   *csv.Reader
	closer   io.ReadCloser
	headers  []string
	readOnce bool
}

// NewCSVReader creates a new CSV reader
func NewCSVReader(r io.Reader) *CSVReader {
	cr := csv.NewReader(r)
	// Uploaded files routinely have ragged rows; short rows are blank-padded
	// and long rows truncated instead of erroring out.
	cr.FieldsPerRecord = -1
	return &CSVReader{
		reader:   cr,
		closer:   nil,
		headers:  nil,
		readOnce: false,
	}
}

// NewCSVReaderWithCloser creates a new CSV reader with a closable reader
func NewCSVReaderWithCloser(r io.ReadCloser) *CSVReader {
	reader := NewCSVReader(r)
	reader.closer = r
	return reader
}

// readHeaders reads the header row if not already read
func (r *CSVReader) readHeaders() error {
	if r.readOnce {
		return nil
	}

	headers, err := r.reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	r.headers = headers
	r.readOnce = true
	return nil
}

// ReadAll reads all remaining rows from the CSV stream into a Dataset.
func (r *CSVReader) ReadAll() (*Dataset, error) {
	if err := r.readHeaders(); err != nil {
		return nil, err
	}

	ds := NewDataset(r.headers)

	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := make(Record, len(r.headers))
		for i, col := range r.headers {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}

		ds.Append(row)
	}

	return ds, nil
}

// Close closes the underlying reader if it's closable
func (r *CSVReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
