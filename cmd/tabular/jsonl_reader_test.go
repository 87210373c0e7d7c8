package tabular

import (
	"strings"
	"testing"
)

func TestJSONLReaderReadAll(t *testing.T) {
	t.Run("ScalarRendering", func(t *testing.T) {
		input := `{"id":1,"name":"alice","active":true,"score":3.50,"note":null}` + "\n"
		reader := NewJSONLReader(strings.NewReader(input))

		ds, err := reader.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}

		want := []string{"id", "name", "active", "score", "note"}
		if len(ds.Columns) != len(want) {
			t.Fatalf("expected %d columns, got %v", len(want), ds.Columns)
		}
		for i, col := range want {
			if ds.Columns[i] != col {
				t.Fatalf("column order mismatch at %d: got %v", i, ds.Columns)
			}
		}

		rec := ds.Records[0]
		if rec["id"] != "1" {
			t.Errorf("id: got %q", rec["id"])
		}
		if rec["score"] != "3.50" {
			t.Errorf("number literal should be kept verbatim, got %q", rec["score"])
		}
		if rec["active"] != "true" {
			t.Errorf("active: got %q", rec["active"])
		}
		if rec["note"] != "" {
			t.Errorf("null should map to empty string, got %q", rec["note"])
		}
	})

	t.Run("UnionOfKeys", func(t *testing.T) {
		input := `{"a":"1"}` + "\n" + `{"b":"2","a":"3"}` + "\n"
		reader := NewJSONLReader(strings.NewReader(input))

		ds, err := reader.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}

		if len(ds.Columns) != 2 || ds.Columns[0] != "a" || ds.Columns[1] != "b" {
			t.Fatalf("expected first-seen order [a b], got %v", ds.Columns)
		}
		if ds.Records[0]["b"] != "" {
			t.Errorf("missing key should read as empty string, got %q", ds.Records[0]["b"])
		}
	})

	t.Run("SkipsEmptyLines", func(t *testing.T) {
		input := `{"a":"1"}` + "\n\n" + `{"a":"2"}` + "\n"
		reader := NewJSONLReader(strings.NewReader(input))

		ds, err := reader.ReadAll()
		if err != nil {
			t.Fatalf("ReadAll failed: %v", err)
		}
		if ds.RowCount() != 2 {
			t.Fatalf("expected 2 records, got %d", ds.RowCount())
		}
	})

	t.Run("MalformedLine", func(t *testing.T) {
		reader := NewJSONLReader(strings.NewReader("{not json}\n"))
		if _, err := reader.ReadAll(); err == nil {
			t.Fatal("expected error for malformed JSON")
		}
	})
}
