package tabular

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// JSONLReader reads JSONL input (one JSON object per line) into a Dataset.
// Scalar values are rendered to strings; JSON null becomes the empty string.
// The column order is the first-seen key order across all records.
type JSONLReader struct {
	scanner *bufio.Scanner
	reader  io.ReadCloser
}

// NewJSONLReader creates a new JSONL reader
func NewJSONLReader(r io.Reader) *JSONLReader {
	return &JSONLReader{
		scanner: bufio.NewScanner(r),
		reader:  nil,
	}
}

// NewJSONLReaderWithCloser creates a new JSONL reader with a closable reader
func NewJSONLReaderWithCloser(r io.ReadCloser) *JSONLReader {
	return &JSONLReader{
		scanner: bufio.NewScanner(r),
		reader:  r,
	}
}

// ReadAll reads all rows from the JSONL stream into a Dataset.
func (r *JSONLReader) ReadAll() (*Dataset, error) {
	var columns []string
	seen := make(map[string]bool)
	var records []Record

	for r.scanner.Scan() {
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON line: %w", err)
		}

		// Preserve the on-disk key order for the header
		keys, err := jsonKeyOrder(line)
		if err != nil {
			return nil, err
		}

		row := make(Record, len(raw))
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
			value, err := renderJSONValue(raw[key])
			if err != nil {
				return nil, err
			}
			row[key] = value
		}

		records = append(records, row)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	ds := NewDataset(columns)
	ds.Records = append(ds.Records, records...)
	return ds, nil
}

// Close closes the underlying reader if one was provided.
func (r *JSONLReader) Close() error {
	if r.reader != nil {
		return r.reader.Close()
	}
	return nil
}

// jsonKeyOrder extracts the top-level key order of a JSON object line.
func jsonKeyOrder(line []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(line))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON line: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("JSONL line is not an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON line: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected JSON token: %v", tok)
		}
		keys = append(keys, key)

		// Skip over the value
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("failed to parse JSON line: %w", err)
		}
	}

	return keys, nil
}

// renderJSONValue converts a raw JSON value to its cell string rendition.
func renderJSONValue(raw json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("failed to parse JSON value: %w", err)
	}

	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		// Keep the literal as written (avoids 1 turning into "1e+00")
		return string(raw), nil
	default:
		// Nested objects/arrays keep their compact JSON text
		return string(raw), nil
	}
}
