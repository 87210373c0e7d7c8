package tabular

import (
	"bytes"
	"encoding/json"
)

// JSONLWriter renders a Dataset as JSONL (one JSON object per line).
type JSONLWriter struct{}

// NewJSONLWriter creates a new JSONL writer
func NewJSONLWriter() *JSONLWriter {
	return &JSONLWriter{}
}

// Format renders the dataset as JSONL.
func (f *JSONLWriter) Format(ds *Dataset) ([]byte, error) {
	var buffer bytes.Buffer

	for _, rec := range ds.Records {
		jsonData, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}

		buffer.Write(jsonData)
		buffer.WriteByte('\n')
	}

	return buffer.Bytes(), nil
}

// Extension returns the file extension for JSONL files
func (f *JSONLWriter) Extension() string {
	return ".jsonl"
}

// MIMEType returns the MIME type for JSONL
func (f *JSONLWriter) MIMEType() string {
	return "application/x-ndjson"
}
