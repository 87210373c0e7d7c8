package tabular

import "strings"

// Record maps a column name to a raw cell value. Blank and missing cells are
// both represented as the empty string.
type Record map[string]string

// Dataset is an ordered sequence of records plus the column header order in
// which they were read. Two datasets being compared need not share columns.
type Dataset struct {
	Columns []string
	Records []Record
}

// NewDataset creates an empty dataset with the given column header.
func NewDataset(columns []string) *Dataset {
	return &Dataset{
		Columns: columns,
		Records: []Record{},
	}
}

// Append adds a record to the dataset.
func (d *Dataset) Append(rec Record) {
	d.Records = append(d.Records, rec)
}

// RowCount returns the number of records in the dataset.
func (d *Dataset) RowCount() int {
	return len(d.Records)
}

// Values returns the record's cells in the dataset's column order.
func (d *Dataset) Values(rec Record) []string {
	values := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		values[i] = rec[col]
	}
	return values
}

// ColumnSet returns the dataset's columns as a membership set.
func (d *Dataset) ColumnSet() map[string]bool {
	set := make(map[string]bool, len(d.Columns))
	for _, col := range d.Columns {
		set[col] = true
	}
	return set
}

// DropTrailingBlankRows removes records from the end of the dataset whose
// cells are all blank after trimming, and reports how many were dropped.
// Exported files frequently carry a tail of empty delimiter-only lines that
// would otherwise show up as row diffs.
func (d *Dataset) DropTrailingBlankRows() int {
	last := len(d.Records)
	for last > 0 && isBlankRecord(d.Records[last-1]) {
		last--
	}
	dropped := len(d.Records) - last
	d.Records = d.Records[:last]
	return dropped
}

func isBlankRecord(rec Record) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
