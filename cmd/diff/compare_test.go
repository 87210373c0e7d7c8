package diff

import (
	"testing"

	"github.com/eurekatools/integrity-reporter/cmd/tabular"
)

func dataset(columns []string, rows ...tabular.Record) *tabular.Dataset {
	ds := tabular.NewDataset(columns)
	for _, row := range rows {
		ds.Append(row)
	}
	return ds
}

func TestCompareColumnDiffs(t *testing.T) {
	left := dataset([]string{"id", "name"})
	right := dataset([]string{"id", "email"})

	report := Compare(left, right, "", Options{})

	if len(report.MissingColumnsInRight) != 1 || report.MissingColumnsInRight[0] != "name" {
		t.Errorf("missing_columns_in_right = %v, want [name]", report.MissingColumnsInRight)
	}
	if len(report.NewColumnsInRight) != 1 || report.NewColumnsInRight[0] != "email" {
		t.Errorf("new_columns_in_right = %v, want [email]", report.NewColumnsInRight)
	}
}

func TestCompareKeyedRowPresence(t *testing.T) {
	left := dataset([]string{"id", "v"},
		tabular.Record{"id": "1", "v": "a"},
		tabular.Record{"id": "2", "v": "b"},
	)
	right := dataset([]string{"id", "v"},
		tabular.Record{"id": "2", "v": "b"},
		tabular.Record{"id": "3", "v": "c"},
	)

	report := Compare(left, right, "id", Options{})

	if report.HashKeyed {
		t.Fatal("explicit key should not fall back to hashing")
	}
	if report.OnlyLeftCount != 1 || report.OnlyInLeft.Records[0]["id"] != "1" {
		t.Errorf("only_left = %v", report.OnlyInLeft.Records)
	}
	if report.OnlyRightCount != 1 || report.OnlyInRight.Records[0]["id"] != "3" {
		t.Errorf("only_right = %v", report.OnlyInRight.Records)
	}
	if report.CellDiffCount != 0 {
		t.Errorf("identical common rows must yield no cell diffs, got %v", report.CellDiffs)
	}
}

func TestCompareKeyedCellDiffCaseFolding(t *testing.T) {
	left := dataset([]string{"id", "v"}, tabular.Record{"id": "2", "v": "b"})
	right := dataset([]string{"id", "v"}, tabular.Record{"id": "2", "v": "B"})

	insensitive := Compare(left, right, "id", Options{CaseInsensitive: true})
	if insensitive.CellDiffCount != 0 {
		t.Errorf("case-insensitive compare should see no diff, got %v", insensitive.CellDiffs)
	}

	sensitive := Compare(left, right, "id", Options{})
	if sensitive.CellDiffCount != 1 {
		t.Fatalf("case-sensitive compare should see one diff, got %v", sensitive.CellDiffs)
	}
	d := sensitive.CellDiffs[0]
	if d.Column != "v" || d.Key != "2" || d.Left != "b" || d.Right != "B" {
		t.Errorf("unexpected cell diff: %+v", d)
	}
}

func TestCompareHashModeNeverEmitsCellDiffs(t *testing.T) {
	left := dataset([]string{"id", "v"}, tabular.Record{"id": "2", "v": "b"})
	right := dataset([]string{"id", "v"}, tabular.Record{"id": "2", "v": "x"})

	report := Compare(left, right, "", Options{})

	if !report.HashKeyed {
		t.Fatal("empty key request must hash-key")
	}
	if report.CellDiffCount != 0 || len(report.CellDiffs) != 0 {
		t.Errorf("hash mode must not emit cell diffs, got %v", report.CellDiffs)
	}
	// The differing row shows up on both presence sides instead
	if report.OnlyLeftCount != 1 || report.OnlyRightCount != 1 {
		t.Errorf("expected 1/1 presence diff, got %d/%d", report.OnlyLeftCount, report.OnlyRightCount)
	}
}

func TestCompareUnresolvableKeysFallBackToHash(t *testing.T) {
	left := dataset([]string{"id", "v"}, tabular.Record{"id": "1", "v": "a"})
	right := dataset([]string{"id", "v"}, tabular.Record{"id": "1", "v": "a"})

	// Requested key exists in neither dataset
	report := Compare(left, right, "uuid", Options{})

	if !report.HashKeyed {
		t.Fatal("unresolvable key request must fall back to content hashing")
	}
	if report.OnlyLeftCount != 0 || report.OnlyRightCount != 0 {
		t.Errorf("identical datasets should fully align, got %d/%d", report.OnlyLeftCount, report.OnlyRightCount)
	}
}

func TestCompareSymmetry(t *testing.T) {
	a := dataset([]string{"id", "name"},
		tabular.Record{"id": "1", "name": "x"},
		tabular.Record{"id": "2", "name": "y"},
	)
	b := dataset([]string{"id", "email"},
		tabular.Record{"id": "2", "email": "y@example.com"},
	)

	ab := Compare(a, b, "id", Options{})
	ba := Compare(b, a, "id", Options{})

	if ab.OnlyLeftCount != ba.OnlyRightCount || ab.OnlyRightCount != ba.OnlyLeftCount {
		t.Errorf("presence counts not symmetric: %d/%d vs %d/%d",
			ab.OnlyLeftCount, ab.OnlyRightCount, ba.OnlyLeftCount, ba.OnlyRightCount)
	}
	if len(ab.MissingColumnsInRight) != len(ba.NewColumnsInRight) {
		t.Errorf("column diffs not symmetric: %v vs %v", ab.MissingColumnsInRight, ba.NewColumnsInRight)
	}
	for i := range ab.MissingColumnsInRight {
		if ab.MissingColumnsInRight[i] != ba.NewColumnsInRight[i] {
			t.Errorf("column diffs not symmetric: %v vs %v", ab.MissingColumnsInRight, ba.NewColumnsInRight)
		}
	}
}

func TestCompareNormalizedAlignment(t *testing.T) {
	// "5.00" and "5" align under decimal canonicalization but not in strict mode
	left := dataset([]string{"amount"}, tabular.Record{"amount": "5.00"})
	right := dataset([]string{"amount"}, tabular.Record{"amount": "5"})

	loose := Compare(left, right, "", Options{})
	if loose.OnlyLeftCount != 0 || loose.OnlyRightCount != 0 {
		t.Errorf("canonicalized values should align, got %d/%d", loose.OnlyLeftCount, loose.OnlyRightCount)
	}

	strict := Compare(left, right, "", Options{StrictDecimal: true})
	if strict.OnlyLeftCount != 1 || strict.OnlyRightCount != 1 {
		t.Errorf("strict mode should keep them apart, got %d/%d", strict.OnlyLeftCount, strict.OnlyRightCount)
	}
}

func TestCompareDuplicateKeys(t *testing.T) {
	left := dataset([]string{"id", "v"},
		tabular.Record{"id": "1", "v": "first"},
		tabular.Record{"id": "1", "v": "second"},
	)
	right := dataset([]string{"id", "v"},
		tabular.Record{"id": "1", "v": "first"},
	)

	report := Compare(left, right, "id", Options{})

	if report.DuplicateKeysLeft != 1 {
		t.Errorf("expected 1 duplicate key on the left, got %d", report.DuplicateKeysLeft)
	}
	// First match wins: the first left record matches, so no cell diff
	if report.CellDiffCount != 0 {
		t.Errorf("first-match-wins should see no diff, got %v", report.CellDiffs)
	}
	// Presence is keyed: id=1 exists on both sides, so neither record is
	// "only left" even though the duplicate differs
	if report.OnlyLeftCount != 0 {
		t.Errorf("keyed presence should collapse duplicates, got %d", report.OnlyLeftCount)
	}
}

func TestCompareEmptyDatasets(t *testing.T) {
	left := dataset([]string{"id"})
	right := dataset([]string{"id"})

	report := Compare(left, right, "id", Options{})

	if !report.Identical() {
		t.Error("two empty datasets with equal headers must compare identical")
	}
	if report.LeftRows != 0 || report.RightRows != 0 {
		t.Errorf("row counts: %d/%d", report.LeftRows, report.RightRows)
	}
}

func TestCompareOrderPreservation(t *testing.T) {
	left := dataset([]string{"id"},
		tabular.Record{"id": "3"},
		tabular.Record{"id": "1"},
		tabular.Record{"id": "2"},
	)
	right := dataset([]string{"id"})

	report := Compare(left, right, "id", Options{})

	want := []string{"3", "1", "2"}
	for i, rec := range report.OnlyInLeft.Records {
		if rec["id"] != want[i] {
			t.Fatalf("only_left order not preserved: %v", report.OnlyInLeft.Records)
		}
	}
}
