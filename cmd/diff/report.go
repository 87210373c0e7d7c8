package diff

import "github.com/eurekatools/integrity-reporter/cmd/tabular"

// CellDiff is a single column-level discrepancy between two records sharing a
// row key. Values are the normalized renditions that were compared.
type CellDiff struct {
	Key    string `json:"row_key"`
	Column string `json:"column"`
	Left   string `json:"left"`
	Right  string `json:"right"`
}

// Report holds the outcome of comparing two datasets. All tables carry
// normalized values; records appear in their side's original order.
type Report struct {
	LeftRows     int      `json:"left_rows"`
	RightRows    int      `json:"right_rows"`
	LeftColumns  []string `json:"left_columns"`
	RightColumns []string `json:"right_columns"`

	MissingColumnsInRight []string `json:"missing_columns_in_right"`
	NewColumnsInRight     []string `json:"new_columns_in_right"`

	OnlyLeftCount  int              `json:"only_left_count"`
	OnlyRightCount int              `json:"only_right_count"`
	OnlyInLeft     *tabular.Dataset `json:"only_in_left"`
	OnlyInRight    *tabular.Dataset `json:"only_in_right"`

	// CellDiffs is populated only when explicit key columns resolved; the
	// content-hash mode cannot attribute a difference to a column.
	CellDiffCount int        `json:"cell_diff_count"`
	CellDiffs     []CellDiff `json:"cell_diffs,omitempty"`

	// KeyColumns holds the resolved key columns; empty when row alignment
	// fell back to full-row content hashing.
	KeyColumns []string `json:"key_columns,omitempty"`
	HashKeyed  bool     `json:"hash_keyed"`

	// Duplicate row keys detected per side. Only the first record for a key
	// participates in cell-level diffing; the rest are reported here.
	DuplicateKeysLeft  int `json:"duplicate_keys_left"`
	DuplicateKeysRight int `json:"duplicate_keys_right"`
}

// Identical reports whether the comparison found no differences at all.
func (r *Report) Identical() bool {
	return len(r.MissingColumnsInRight) == 0 &&
		len(r.NewColumnsInRight) == 0 &&
		r.OnlyLeftCount == 0 &&
		r.OnlyRightCount == 0 &&
		r.CellDiffCount == 0
}
