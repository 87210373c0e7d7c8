package diff

import (
	"strings"

	"github.com/eurekatools/integrity-reporter/cmd/tabular"
	"github.com/shopspring/decimal"
)

// Options controls value normalization before comparison.
type Options struct {
	// StrictDecimal disables decimal canonicalization: "5.00" and "5" stay
	// distinct and are compared on their exact trimmed text.
	StrictDecimal bool

	// CaseInsensitive lowercases values after all other steps.
	CaseInsensitive bool
}

// Normalize applies the configured value transformations to a raw cell value:
// decimal canonicalization (unless strict), CRLF to LF, whitespace trim, and
// case folding last so it never interferes with numeric parsing. Empty input
// normalizes to the empty string unconditionally. Pure and deterministic.
func Normalize(raw string, opts Options) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if !opts.StrictDecimal {
		if d, err := decimal.NewFromString(s); err == nil {
			s = canonicalDecimal(d)
		}
		// Parse failure is not an error: non-numeric values pass through
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSpace(s)

	if opts.CaseInsensitive {
		s = strings.ToLower(s)
	}

	return s
}

// canonicalDecimal renders a decimal in plain notation with trailing
// fractional zeros removed: "3.1400" -> "3.14", "5.00" -> "5", "1e2" -> "100".
func canonicalDecimal(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// NormalizeRecord normalizes every cell of a record.
func NormalizeRecord(rec tabular.Record, opts Options) tabular.Record {
	out := make(tabular.Record, len(rec))
	for col, val := range rec {
		out[col] = Normalize(val, opts)
	}
	return out
}

// NormalizeDataset produces a normalized record sequence parallel to the
// dataset's records (same index correspondence, same header).
func NormalizeDataset(ds *tabular.Dataset, opts Options) *tabular.Dataset {
	out := tabular.NewDataset(ds.Columns)
	for _, rec := range ds.Records {
		out.Append(NormalizeRecord(rec, opts))
	}
	return out
}
