package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eurekatools/integrity-reporter/cmd/diff"
)

func TestWriteTextReport(t *testing.T) {
	var buf bytes.Buffer
	writeTextReport(&buf, sampleReport(true), 20)
	out := buf.String()

	for _, want := range []string{
		"COMPARISON RESULTS",
		"Left rows:            2",
		"key columns (id)",
		"New columns in right",
		"email",
		"Rows only in left (1)",
		`key=2 column=v: "b" → "B"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextReportSampling(t *testing.T) {
	report := sampleReport(false)
	for i := 0; i < 10; i++ {
		report.OnlyInLeft.Append(map[string]string{"id": "x", "v": "y"})
	}
	report.OnlyLeftCount = report.OnlyInLeft.RowCount()

	var buf bytes.Buffer
	writeTextReport(&buf, report, 3)

	if !strings.Contains(buf.String(), "… 8 more") {
		t.Errorf("expected truncation marker, got:\n%s", buf.String())
	}
}

func TestWriteTextReportIdentical(t *testing.T) {
	report := sampleReport(false)
	report.NewColumnsInRight = []string{}
	report.OnlyLeftCount = 0
	report.OnlyInLeft.Records = report.OnlyInLeft.Records[:0]

	var buf bytes.Buffer
	writeTextReport(&buf, report, 20)

	if !strings.Contains(buf.String(), "No differences found") {
		t.Errorf("expected identical marker, got:\n%s", buf.String())
	}
}

func TestRenderJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	if err := renderJSON(sampleReport(true), path); err != nil {
		t.Fatalf("renderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var report diff.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.CellDiffCount != 1 || report.CellDiffs[0].Key != "2" {
		t.Errorf("round-tripped report lost data: %+v", report)
	}
}
