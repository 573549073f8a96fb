package dataset

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
)

// numericThreshold classifies a column as numeric when at least this share of
// its non-empty values parse as numbers.
const numericThreshold = 0.8

// ColumnKind distinguishes numeric from categorical columns in the digest.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// ClassifyColumn applies the 80%-parseable rule over non-empty cells.
func ClassifyColumn(rows []Row, header string) ColumnKind {
	nonEmpty, numeric := 0, 0
	for _, row := range rows {
		s := strings.TrimSpace(CellString(row[header]))
		if s == "" && row[header] == nil {
			continue
		}
		if s == "" {
			continue
		}
		nonEmpty++
		if _, ok := ParseNumber(row[header]); ok {
			numeric++
		}
	}
	if nonEmpty > 0 && float64(numeric) >= numericThreshold*float64(nonEmpty) {
		return KindNumeric
	}
	return KindCategorical
}

// ValueCount is one entry of a categorical frequency table.
type ValueCount struct {
	Value string
	Count int
}

// TopValues returns up to n distinct non-empty values ranked descending by
// count, ties broken by first-seen order.
func TopValues(rows []Row, header string, n int) (unique int, top []ValueCount) {
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		v := strings.TrimSpace(CellString(row[header]))
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	unique = len(order)

	top = make([]ValueCount, 0, len(order))
	for _, v := range order {
		top = append(top, ValueCount{Value: v, Count: counts[v]})
	}
	// Insertion sort keeps first-seen order stable among equal counts.
	for i := 1; i < len(top); i++ {
		for j := i; j > 0 && top[j].Count > top[j-1].Count; j-- {
			top[j], top[j-1] = top[j-1], top[j]
		}
	}
	if n > 0 && len(top) > n {
		top = top[:n]
	}
	return unique, top
}

// Summarize produces the deterministic per-column digest that grounds the
// assistant's context window. Column names appear byte-for-byte as in the
// header set; numeric columns report count/mean/min/max, categorical columns
// report unique-value count and a top-5 frequency table.
func Summarize(d *Dataset) string {
	if d.Empty() {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Dataset: %d rows, %d columns.\n", len(d.Rows), len(d.Headers))
	for _, h := range d.Headers {
		switch ClassifyColumn(d.Rows, h) {
		case KindNumeric:
			values := NumericValues(d.Rows, h)
			if len(values) == 0 {
				fmt.Fprintf(&sb, "- %s (numeric): no parseable values\n", h)
				continue
			}
			mean, _ := stats.Mean(values)
			min, _ := stats.Min(values)
			max, _ := stats.Max(values)
			fmt.Fprintf(&sb, "- %s (numeric): count=%d mean=%.2f min=%s max=%s\n",
				h, len(values), mean, trimFloat(min), trimFloat(max))
		default:
			unique, top := TopValues(d.Rows, h, 5)
			entries := make([]string, 0, len(top))
			for _, vc := range top {
				entries = append(entries, fmt.Sprintf("%s (%d)", vc.Value, vc.Count))
			}
			fmt.Fprintf(&sb, "- %s (categorical): unique=%d top: %s\n",
				h, unique, strings.Join(entries, ", "))
		}
	}
	return sb.String()
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.6f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
