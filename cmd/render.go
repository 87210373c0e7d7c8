package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eurekatools/integrity-reporter/cmd/diff"
	"github.com/eurekatools/integrity-reporter/cmd/tabular"
)

// renderJSON writes the full report as indented JSON to the given file, or
// stdout when the path is empty.
func renderJSON(report *diff.Report, outputFile string) error {
	var output io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		output = file
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func renderText(report *diff.Report, sampleRows int) {
	writeTextReport(os.Stdout, report, sampleRows)
}

// writeTextReport outputs results in human-readable text format
func writeTextReport(w io.Writer, report *diff.Report, sampleRows int) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "COMPARISON RESULTS\n")
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "SUMMARY\n")
	fmt.Fprintf(w, "─────────────────────────────────\n")
	fmt.Fprintf(w, "  Left rows:            %d\n", report.LeftRows)
	fmt.Fprintf(w, "  Right rows:           %d\n", report.RightRows)
	if report.HashKeyed {
		fmt.Fprintf(w, "  Row alignment:        full-row content hash\n")
	} else {
		fmt.Fprintf(w, "  Row alignment:        key columns (%s)\n", strings.Join(report.KeyColumns, ", "))
	}
	fmt.Fprintf(w, "  Rows only in left:    %d\n", report.OnlyLeftCount)
	fmt.Fprintf(w, "  Rows only in right:   %d\n", report.OnlyRightCount)
	if !report.HashKeyed {
		fmt.Fprintf(w, "  Cell differences:     %d\n", report.CellDiffCount)
	}
	if report.DuplicateKeysLeft > 0 || report.DuplicateKeysRight > 0 {
		fmt.Fprintf(w, "  Duplicate keys:       %d left, %d right\n", report.DuplicateKeysLeft, report.DuplicateKeysRight)
	}

	if len(report.MissingColumnsInRight) > 0 {
		fmt.Fprintf(w, "\n⚠️  Columns missing in right:\n")
		for _, col := range report.MissingColumnsInRight {
			fmt.Fprintf(w, "  • %s\n", col)
		}
	}

	if len(report.NewColumnsInRight) > 0 {
		fmt.Fprintf(w, "\n⚠️  New columns in right:\n")
		for _, col := range report.NewColumnsInRight {
			fmt.Fprintf(w, "  • %s\n", col)
		}
	}

	if report.OnlyLeftCount > 0 {
		fmt.Fprintf(w, "\n⚠️  Rows only in left (%d):\n", report.OnlyLeftCount)
		writeSampleTable(w, report.OnlyInLeft, sampleRows)
	}

	if report.OnlyRightCount > 0 {
		fmt.Fprintf(w, "\n⚠️  Rows only in right (%d):\n", report.OnlyRightCount)
		writeSampleTable(w, report.OnlyInRight, sampleRows)
	}

	if report.CellDiffCount > 0 {
		fmt.Fprintf(w, "\n⚠️  Cell differences (%d):\n", report.CellDiffCount)
		shown := report.CellDiffs
		if sampleRows > 0 && len(shown) > sampleRows {
			shown = shown[:sampleRows]
		}
		for _, d := range shown {
			fmt.Fprintf(w, "  • key=%s column=%s: %q → %q\n", d.Key, d.Column, d.Left, d.Right)
		}
		if sampleRows > 0 && report.CellDiffCount > sampleRows {
			fmt.Fprintf(w, "  … %d more\n", report.CellDiffCount-sampleRows)
		}
	}

	if report.Identical() {
		fmt.Fprintf(w, "\n✅ No differences found\n")
	}
	fmt.Fprintf(w, "\n")
}

// writeSampleTable prints up to sampleRows records (0 = all), one per line,
// with cells in the dataset's column order.
func writeSampleTable(w io.Writer, ds *tabular.Dataset, sampleRows int) {
	fmt.Fprintf(w, "  %s\n", strings.Join(ds.Columns, " | "))

	shown := ds.Records
	if sampleRows > 0 && len(shown) > sampleRows {
		shown = shown[:sampleRows]
	}
	for _, rec := range shown {
		fmt.Fprintf(w, "  %s\n", strings.Join(ds.Values(rec), " | "))
	}
	if sampleRows > 0 && ds.RowCount() > sampleRows {
		fmt.Fprintf(w, "  … %d more\n", ds.RowCount()-sampleRows)
	}
}
