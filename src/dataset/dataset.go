package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Row maps a column name to a scalar cell value. Values are strings as parsed
// from CSV, float64/bool/nil as decoded from JSON. Column casing and spacing
// are preserved exactly as they appear in the source.
type Row map[string]any

// Dataset is the uniform row/column representation produced by ingestion.
// All rows share the header set; enrichment appends derived headers at the end.
type Dataset struct {
	Headers []string
	Rows    []Row

	// Source records whether the dataset came from CSV or JSON input.
	Source Source
}

type Source string

const (
	SourceCSV  Source = "csv"
	SourceJSON Source = "json"
)

// Empty reports whether ingestion produced no usable rows.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Headers) == 0 || len(d.Rows) == 0
}

// HasHeader reports whether name is an exact member of the header set.
func (d *Dataset) HasHeader(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// normalizeColumn lower-cases a column reference and strips spaces,
// underscores and dashes so that "Favorite Count", "favorite_count" and
// "FAVORITE-COUNT" all collapse to the same key.
func normalizeColumn(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '_', '-':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ResolveColumn maps a loosely-specified column reference to an actual header
// using case/space/underscore-insensitive matching. A miss returns an error
// that enumerates the available headers so the caller can self-correct.
func ResolveColumn(headers []string, name string) (string, error) {
	want := normalizeColumn(name)
	if want == "" {
		return "", fmt.Errorf("column name is empty; available columns: %s", strings.Join(headers, ", "))
	}
	for _, h := range headers {
		if normalizeColumn(h) == want {
			return h, nil
		}
	}
	return "", fmt.Errorf("column %q not found; available columns: %s", name, strings.Join(headers, ", "))
}

// ParseNumber converts a cell value to a float64 using permissive parsing:
// numeric types pass through, strings are cleaned of thousands separators,
// currency symbols and percent signs before strconv. Anything else is not a
// number.
func ParseNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimPrefix(s, "$")
		s = strings.TrimSuffix(s, "%")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// CellString renders a cell for display. Floats that carry no fractional part
// print without a decimal point, matching the source CSV text.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// NumericValues extracts every parseable numeric value of a column in row
// order. Cells that fail to parse are excluded, not zeroed.
func NumericValues(rows []Row, header string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, row := range rows {
		if f, ok := ParseNumber(row[header]); ok {
			out = append(out, f)
		}
	}
	return out
}
