package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/eurekatools/integrity-reporter/cmd/tabular"
)

// keySeparator joins key-column values into a row key. Two pipes rather than
// one so that values containing a single pipe are less likely to collide.
const keySeparator = "||"

// ResolveKeys filters a comma-separated key column request down to the names
// present in both column sets, preserving the caller's ordering. A nil result
// signals the content-hash fallback; that is a silent degradation, not an
// error.
func ResolveKeys(leftColumns, rightColumns []string, requested string) []string {
	if strings.TrimSpace(requested) == "" {
		return nil
	}

	leftSet := make(map[string]bool, len(leftColumns))
	for _, col := range leftColumns {
		leftSet[col] = true
	}
	rightSet := make(map[string]bool, len(rightColumns))
	for _, col := range rightColumns {
		rightSet[col] = true
	}

	var keys []string
	for _, name := range strings.Split(requested, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if leftSet[name] && rightSet[name] {
			keys = append(keys, name)
		}
	}

	return keys
}

// recordKey derives the row key for a normalized record: the joined values of
// the resolved key columns.
func recordKey(rec tabular.Record, keys []string) string {
	values := make([]string, len(keys))
	for i, col := range keys {
		values[i] = rec[col]
	}
	return strings.Join(values, keySeparator)
}

// hashRecordKey derives the content-hash row key for a normalized record: the
// SHA-256 hex digest of all column values joined in header order. A matching
// hash means the whole normalized row matches.
func hashRecordKey(rec tabular.Record, columns []string) string {
	values := make([]string, len(columns))
	for i, col := range columns {
		values[i] = rec[col]
	}

	sum := sha256.Sum256([]byte(strings.Join(values, keySeparator)))
	return hex.EncodeToString(sum[:])
}
