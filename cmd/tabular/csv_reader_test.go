package tabular

import (
	"strings"
	"testing"
)

func TestCSVReaderReadAll(t *testing.T) {
	t.Run("BasicFile", func(t *testing.T) {
		input := "id,name,amount\n1,alice,10.50\n2,bob,\n"
		reader := NewCSVReader(strings.NewReader(input))

		ds, err := reader.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}

		if len(ds.Columns) != 3 {
			t.Fatalf("expected 3 columns, got %d", len(ds.Columns))
		}
		if ds.Columns[0] != "id" || ds.Columns[1] != "name" || ds.Columns[2] != "amount" {
			t.Fatalf("unexpected header order: %v", ds.Columns)
		}
		if ds.RowCount() != 2 {
			t.Fatalf("expected 2 records, got %d", ds.RowCount())
		}
		if ds.Records[0]["name"] != "alice" {
			t.Errorf("expected alice, got %q", ds.Records[0]["name"])
		}
		if ds.Records[1]["amount"] != "" {
			t.Errorf("blank field should stay empty string, got %q", ds.Records[1]["amount"])
		}
	})

	t.Run("RaggedRows", func(t *testing.T) {
		input := "a,b,c\n1,2\n1,2,3,4\n"
		reader := NewCSVReader(strings.NewReader(input))

		ds, err := reader.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}

		if ds.Records[0]["c"] != "" {
			t.Errorf("short row should blank-pad, got %q", ds.Records[0]["c"])
		}
		if _, exists := ds.Records[1]["d"]; exists {
			t.Error("extra columns beyond header should be dropped")
		}
	})

	t.Run("ValuesPreservedVerbatim", func(t *testing.T) {
		input := "v\n5.00\n"
		reader := NewCSVReader(strings.NewReader(input))

		ds, err := reader.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}

		if ds.Records[0]["v"] != "5.00" {
			t.Errorf("reader must not interpret values, got %q", ds.Records[0]["v"])
		}
	})

	t.Run("EmptyBody", func(t *testing.T) {
		reader := NewCSVReader(strings.NewReader("x,y\n"))

		ds, err := reader.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		if ds.RowCount() != 0 {
			t.Fatalf("expected no records, got %d", ds.RowCount())
		}
	})

	t.Run("MissingHeader", func(t *testing.T) {
		reader := NewCSVReader(strings.NewReader(""))

		if _, err := reader.ReadAll(); err == nil {
			t.Fatal("expected error for empty input")
		}
	})
}

func TestDropTrailingBlankRows(t *testing.T) {
	ds := NewDataset([]string{"a", "b"})
	ds.Append(Record{"a": "1", "b": "2"})
	ds.Append(Record{"a": "", "b": " "})
	ds.Append(Record{"a": "", "b": ""})

	ds.DropTrailingBlankRows()

	if ds.RowCount() != 1 {
		t.Fatalf("expected 1 record after trim, got %d", ds.RowCount())
	}

	// Interior blank rows are kept; only the trailing run is dropped
	ds2 := NewDataset([]string{"a"})
	ds2.Append(Record{"a": ""})
	ds2.Append(Record{"a": "x"})
	ds2.DropTrailingBlankRows()
	if ds2.RowCount() != 2 {
		t.Fatalf("interior blank row must survive, got %d records", ds2.RowCount())
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename    string
		format      string
		compression string
		expectErr   bool
	}{
		{"orders.csv", "csv", "none", false},
		{"orders.csv.gz", "csv", "gzip", false},
		{"orders.CSV.ZST", "csv", "zstd", false},
		{"events.jsonl.lz4", "jsonl", "lz4", false},
		{"events.ndjson", "jsonl", "none", false},
		{"snapshot.parquet", "parquet", "none", false},
		{"notes.txt", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			format, compression, err := DetectFormat(tt.filename)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tt.format || compression != tt.compression {
				t.Errorf("got (%s, %s), want (%s, %s)", format, compression, tt.format, tt.compression)
			}
		})
	}
}
