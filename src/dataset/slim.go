package dataset

import "strings"

// MaxSlimChars bounds the slim projection's source text; anything beyond the
// cap is silently truncated.
const MaxSlimChars = 500000

// slimAllowList names the analytically relevant columns kept by the slim
// projection: free text, language/type tags, the common engagement metrics, a
// timestamp, and the computed engagement column. Matching is normalized
// (case/space/underscore-insensitive).
var slimAllowList = []string{
	"title", "description", "text", "tags",
	"language", "default language", "type", "category",
	"views", "view count", "likes", "like count",
	"favorites", "favorite count", "comments", "comment count",
	"published at", "publish time", "date", "timestamp", "created at",
	EngagementColumn,
}

// SlimProject renders a reduced CSV-like view containing only allow-listed
// columns, preserving header order. Cells are CSV-escaped. Returns "" when no
// header matches the allow-list.
func SlimProject(d *Dataset) string {
	if d.Empty() {
		return ""
	}

	allowed := make(map[string]struct{}, len(slimAllowList))
	for _, name := range slimAllowList {
		allowed[normalizeColumn(name)] = struct{}{}
	}

	var keep []string
	for _, h := range d.Headers {
		if _, ok := allowed[normalizeColumn(h)]; ok {
			keep = append(keep, h)
		}
	}
	if len(keep) == 0 {
		return ""
	}

	var sb strings.Builder
	writeRecord := func(cells []string) bool {
		line := strings.Join(cells, ",") + "\n"
		if sb.Len()+len(line) > MaxSlimChars {
			return false
		}
		sb.WriteString(line)
		return true
	}

	header := make([]string, len(keep))
	for i, h := range keep {
		header[i] = escapeCSV(h)
	}
	if !writeRecord(header) {
		return sb.String()
	}

	cells := make([]string, len(keep))
	for _, row := range d.Rows {
		for i, h := range keep {
			cells[i] = escapeCSV(CellString(row[h]))
		}
		if !writeRecord(cells) {
			break
		}
	}
	return sb.String()
}

// escapeCSV quotes a cell when it contains a comma, quote or newline, doubling
// embedded quotes.
func escapeCSV(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
