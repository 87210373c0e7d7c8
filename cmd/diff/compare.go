package diff

import "github.com/eurekatools/integrity-reporter/cmd/tabular"

// Compare aligns two datasets and reports column, row-presence and cell-level
// differences. Rows align by the requested key columns when they resolve on
// both sides, otherwise by a full-row content hash. The same derivation and
// normalization run on both sides, so the comparison is symmetric. Compare
// performs no I/O and is total over well-formed in-memory datasets.
func Compare(left, right *tabular.Dataset, requestedKeys string, opts Options) *Report {
	report := &Report{
		LeftRows:              left.RowCount(),
		RightRows:             right.RowCount(),
		LeftColumns:           left.Columns,
		RightColumns:          right.Columns,
		MissingColumnsInRight: columnsMissingFrom(left.Columns, right.ColumnSet()),
		NewColumnsInRight:     columnsMissingFrom(right.Columns, left.ColumnSet()),
	}

	normLeft := NormalizeDataset(left, opts)
	normRight := NormalizeDataset(right, opts)

	keys := ResolveKeys(left.Columns, right.Columns, requestedKeys)
	report.KeyColumns = keys
	report.HashKeyed = keys == nil

	leftKeys := deriveKeys(normLeft, keys)
	rightKeys := deriveKeys(normRight, keys)

	leftKeySet := keySet(leftKeys)
	rightKeySet := keySet(rightKeys)

	// Presence is keyed (duplicate keys collapse), display is per-record.
	report.OnlyInLeft = selectRecords(normLeft, leftKeys, func(k string) bool { return !rightKeySet[k] })
	report.OnlyInRight = selectRecords(normRight, rightKeys, func(k string) bool { return !leftKeySet[k] })
	report.OnlyLeftCount = report.OnlyInLeft.RowCount()
	report.OnlyRightCount = report.OnlyInRight.RowCount()

	if keys != nil {
		report.CellDiffs = cellDiffs(normLeft, normRight, leftKeys, rightKeys, report)
		report.CellDiffCount = len(report.CellDiffs)
	}

	return report
}

// columnsMissingFrom returns the columns absent from the other side's set, in
// the owning side's original header order.
func columnsMissingFrom(columns []string, other map[string]bool) []string {
	missing := []string{}
	for _, col := range columns {
		if !other[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// deriveKeys computes the row key for every record, parallel to the record
// sequence.
func deriveKeys(ds *tabular.Dataset, keys []string) []string {
	out := make([]string, len(ds.Records))
	for i, rec := range ds.Records {
		if keys != nil {
			out[i] = recordKey(rec, keys)
		} else {
			out[i] = hashRecordKey(rec, ds.Columns)
		}
	}
	return out
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// selectRecords returns the records whose row key satisfies the predicate, in
// original order.
func selectRecords(ds *tabular.Dataset, rowKeys []string, match func(string) bool) *tabular.Dataset {
	out := tabular.NewDataset(ds.Columns)
	for i, rec := range ds.Records {
		if match(rowKeys[i]) {
			out.Append(rec)
		}
	}
	return out
}

// indexByKey maps each row key to its first record. First match wins: later
// records under the same key are counted as duplicates and do not take part
// in cell-level diffing.
func indexByKey(ds *tabular.Dataset, rowKeys []string) (map[string]tabular.Record, int) {
	index := make(map[string]tabular.Record, len(ds.Records))
	duplicates := 0
	for i, rec := range ds.Records {
		if _, exists := index[rowKeys[i]]; exists {
			duplicates++
			continue
		}
		index[rowKeys[i]] = rec
	}
	return index, duplicates
}

// cellDiffs compares, for every key present on both sides, the values of
// every column present in both headers, and emits a diff per unequal cell.
// Keys are visited in the left side's record order for stable output.
func cellDiffs(normLeft, normRight *tabular.Dataset, leftKeys, rightKeys []string, report *Report) []CellDiff {
	leftIndex, dupLeft := indexByKey(normLeft, leftKeys)
	rightIndex, dupRight := indexByKey(normRight, rightKeys)
	report.DuplicateKeysLeft = dupLeft
	report.DuplicateKeysRight = dupRight

	rightColumns := normRight.ColumnSet()
	sharedColumns := []string{}
	for _, col := range normLeft.Columns {
		if rightColumns[col] {
			sharedColumns = append(sharedColumns, col)
		}
	}

	diffs := []CellDiff{}
	visited := make(map[string]bool, len(leftIndex))
	for i := range normLeft.Records {
		key := leftKeys[i]
		if visited[key] {
			continue
		}
		visited[key] = true

		rightRec, common := rightIndex[key]
		if !common {
			continue
		}
		leftRec := leftIndex[key]

		for _, col := range sharedColumns {
			if leftRec[col] != rightRec[col] {
				diffs = append(diffs, CellDiff{
					Key:    key,
					Column: col,
					Left:   leftRec[col],
					Right:  rightRec[col],
				})
			}
		}
	}

	return diffs
}
