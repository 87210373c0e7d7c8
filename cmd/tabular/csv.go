package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVWriter renders a Dataset as CSV, columns in dataset order.
type CSVWriter struct{}

// NewCSVWriter creates a new CSV writer
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// Format renders the dataset as CSV with a header row.
func (f *CSVWriter) Format(ds *Dataset) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	if err := writer.Write(ds.Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range ds.Records {
		if err := writer.Write(ds.Values(rec)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buffer.Bytes(), nil
}

// Extension returns the file extension for CSV files
func (f *CSVWriter) Extension() string {
	return ".csv"
}

// MIMEType returns the MIME type for CSV
func (f *CSVWriter) MIMEType() string {
	return "text/csv"
}
