package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/datalens-ai/datalens/src/dataset"
)

// watchURLTemplate prefixes bare video identifiers that carry no URL scheme.
const watchURLTemplate = "https://www.youtube.com/watch?v=%s"

// PlayVideoTool resolves one target row and returns a display record with
// title, thumbnail and playable URL. Four selectors are supported, checked in
// this order: exact identifier, case-insensitive substring title search,
// maximum value of a numeric column, and 1-based ordinal position.
type PlayVideoTool struct{}

func (t *PlayVideoTool) Spec() Spec {
	return Spec{
		Name:        "play_video",
		Description: "Finds one video row for playback by id, title search, best-of metric, or 1-based position.",
		InputSchema: objectSchema(map[string]any{
			"video_id": stringProp("Exact video identifier."),
			"title":    stringProp("Case-insensitive substring of the title."),
			"metric":   stringProp("Numeric column; picks the row with the maximum value."),
			"position": integerProp("1-based row position."),
		}),
	}
}

func (t *PlayVideoTool) Invoke(_ context.Context, req Request) map[string]any {
	d := req.Dataset
	headers := headersOf(d)
	if d.Empty() {
		return errorResult("no dataset is loaded", headers)
	}

	row, msg := t.selectRow(req)
	if row == nil {
		return errorResult(msg, headers)
	}
	return displayRecord(d.Headers, row)
}

func (t *PlayVideoTool) selectRow(req Request) (dataset.Row, string) {
	d := req.Dataset

	if raw, ok := req.Args["video_id"]; ok && strings.TrimSpace(fmt.Sprint(raw)) != "" {
		want := strings.TrimSpace(fmt.Sprint(raw))
		idCol := firstResolved(d.Headers, "video id", "id")
		if idCol == "" {
			return nil, "dataset has no id column"
		}
		for _, row := range d.Rows {
			if dataset.CellString(row[idCol]) == want {
				return row, ""
			}
		}
		return nil, fmt.Sprintf("no row with id %q", want)
	}

	if raw, ok := req.Args["title"]; ok && strings.TrimSpace(fmt.Sprint(raw)) != "" {
		want := strings.ToLower(strings.TrimSpace(fmt.Sprint(raw)))
		titleCol := firstResolved(d.Headers, "title", "name")
		if titleCol == "" {
			return nil, "dataset has no title column"
		}
		for _, row := range d.Rows {
			if strings.Contains(strings.ToLower(dataset.CellString(row[titleCol])), want) {
				return row, ""
			}
		}
		return nil, fmt.Sprintf("no title containing %q", want)
	}

	if raw, ok := req.Args["metric"]; ok && strings.TrimSpace(fmt.Sprint(raw)) != "" {
		header, err := dataset.ResolveColumn(d.Headers, fmt.Sprint(raw))
		if err != nil {
			return nil, err.Error()
		}
		var best dataset.Row
		bestValue := 0.0
		for _, row := range d.Rows {
			v, ok := dataset.ParseNumber(row[header])
			if !ok {
				continue
			}
			if best == nil || v > bestValue {
				best, bestValue = row, v
			}
		}
		if best == nil {
			return nil, fmt.Sprintf("column %q has no numeric values", header)
		}
		return best, ""
	}

	if pos := intArg(req.Args, "position", 0); pos != 0 {
		if pos < 1 || pos > len(d.Rows) {
			return nil, fmt.Sprintf("position %d is out of range (dataset has %d rows)", pos, len(d.Rows))
		}
		return d.Rows[pos-1], ""
	}

	return nil, "provide one of video_id, title, metric or position"
}

func displayRecord(headers []string, row dataset.Row) map[string]any {
	record := map[string]any{}

	if titleCol := firstResolved(headers, "title", "name"); titleCol != "" {
		record["title"] = dataset.CellString(row[titleCol])
	}
	if thumbCol := firstResolved(headers, "thumbnail", "thumbnail link", "thumbnail url"); thumbCol != "" {
		record["thumbnail"] = dataset.CellString(row[thumbCol])
	}

	url := ""
	if urlCol := firstResolved(headers, "url", "video url", "video link", "link"); urlCol != "" {
		url = dataset.CellString(row[urlCol])
	}
	if url == "" {
		if idCol := firstResolved(headers, "video id", "id"); idCol != "" {
			url = dataset.CellString(row[idCol])
		}
	}
	if url != "" && !strings.Contains(url, "://") {
		url = fmt.Sprintf(watchURLTemplate, url)
	}
	record["url"] = url
	return record
}

func firstResolved(headers []string, candidates ...string) string {
	for _, c := range candidates {
		if resolved, err := dataset.ResolveColumn(headers, c); err == nil {
			return resolved
		}
	}
	return ""
}
