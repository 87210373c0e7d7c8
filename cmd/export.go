package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eurekatools/integrity-reporter/cmd/compressors"
	"github.com/eurekatools/integrity-reporter/cmd/diff"
	"github.com/eurekatools/integrity-reporter/cmd/tabular"
)

// Sheet names in the spreadsheet report
const (
	sheetSummary        = "Summary"
	sheetMissingColumns = "MissingColumnsInRight"
	sheetNewColumns     = "NewColumnsInRight"
	sheetOnlyInLeft     = "OnlyInLeft"
	sheetOnlyInRight    = "OnlyInRight"
	sheetCellDiffs      = "CellDiffs"
)

// exportXLSX writes the report as a multi-sheet spreadsheet. The CellDiffs
// sheet only appears when cell-level diffs exist; the other sheets are always
// present so an empty sheet confirms the check ran.
func exportXLSX(report *diff.Report, path string) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet: %w", err)
	}
	return nil
}

// buildWorkbook assembles the spreadsheet in memory.
func buildWorkbook(report *diff.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, report); err != nil {
		return nil, err
	}

	if err := writeColumnSheet(f, sheetMissingColumns, report.MissingColumnsInRight); err != nil {
		return nil, err
	}
	if err := writeColumnSheet(f, sheetNewColumns, report.NewColumnsInRight); err != nil {
		return nil, err
	}

	if err := writeDatasetSheet(f, sheetOnlyInLeft, report.OnlyInLeft); err != nil {
		return nil, err
	}
	if err := writeDatasetSheet(f, sheetOnlyInRight, report.OnlyInRight); err != nil {
		return nil, err
	}

	if report.CellDiffCount > 0 {
		if err := writeCellDiffSheet(f, report.CellDiffs); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func writeSummarySheet(f *excelize.File, report *diff.Report) error {
	alignment := "full-row content hash"
	if !report.HashKeyed {
		alignment = "key columns: " + strings.Join(report.KeyColumns, ", ")
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Left rows", report.LeftRows},
		{"Right rows", report.RightRows},
		{"Left columns", len(report.LeftColumns)},
		{"Right columns", len(report.RightColumns)},
		{"Row alignment", alignment},
		{"Columns missing in right", len(report.MissingColumnsInRight)},
		{"New columns in right", len(report.NewColumnsInRight)},
		{"Rows only in left", report.OnlyLeftCount},
		{"Rows only in right", report.OnlyRightCount},
		{"Cell differences", report.CellDiffCount},
		{"Duplicate keys left", report.DuplicateKeysLeft},
		{"Duplicate keys right", report.DuplicateKeysRight},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func writeColumnSheet(f *excelize.File, sheet string, columns []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []interface{}{"Column"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{col}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write to sheet %s: %w", sheet, err)
		}
	}
	return nil
}

func writeDatasetSheet(f *excelize.File, sheet string, ds *tabular.Dataset) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := make([]interface{}, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, rec := range ds.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := ds.Values(rec)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write to sheet %s: %w", sheet, err)
		}
	}
	return nil
}

func writeCellDiffSheet(f *excelize.File, diffs []diff.CellDiff) error {
	if _, err := f.NewSheet(sheetCellDiffs); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheetCellDiffs, err)
	}

	header := []interface{}{"RowKey", "Column", "Left", "Right"}
	if err := f.SetSheetRow(sheetCellDiffs, "A1", &header); err != nil {
		return err
	}
	for i, d := range diffs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{d.Key, d.Column, d.Left, d.Right}
		if err := f.SetSheetRow(sheetCellDiffs, cell, &row); err != nil {
			return fmt.Errorf("failed to write cell diff row: %w", err)
		}
	}
	return nil
}

// exportTableDumps writes the only-left and only-right tables into the export
// directory, in the configured format with optional compression.
func exportTableDumps(report *diff.Report, output *OutputConfig) error {
	if err := os.MkdirAll(output.ExportTables, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := writeTableDump(report.OnlyInLeft, "only_in_left", output); err != nil {
		return err
	}
	return writeTableDump(report.OnlyInRight, "only_in_right", output)
}

func writeTableDump(ds *tabular.Dataset, name string, output *OutputConfig) error {
	writer, err := tabular.NewWriter(output.ExportFormat)
	if err != nil {
		return err
	}

	data, err := writer.Format(ds)
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", name, err)
	}

	compressor, err := compressors.GetCompressor(output.Compression)
	if err != nil {
		return err
	}

	filename := name + writer.Extension() + compressor.Extension()
	path := filepath.Join(output.ExportTables, filename)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	level := output.CompressionLevel
	if level == 0 {
		level = compressor.DefaultLevel()
	}
	compressed, err := compressor.NewWriter(file, level)
	if err != nil {
		return fmt.Errorf("failed to create compression writer: %w", err)
	}

	if _, err := compressed.Write(data); err != nil {
		compressed.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return compressed.Close()
}
