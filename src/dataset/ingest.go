package dataset

import (
	"strings"

	json "github.com/alpkeskin/gotoon"
)

// ParseCSV parses delimited text into a Dataset. Parsing is best-effort:
// malformed input that yields fewer than two usable lines produces an empty
// dataset rather than an error.
//
// Quoting follows RFC-4180: a double quote toggles inside-field state per
// character, so quoted fields may contain commas, doubled quotes and embedded
// newlines. Blank lines are dropped before parsing.
func ParseCSV(text string) *Dataset {
	records := scanCSV(text)
	if len(records) < 2 {
		return &Dataset{Source: SourceCSV}
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return &Dataset{Headers: headers, Rows: rows, Source: SourceCSV}
}

// scanCSV splits text into records with a character-level quote state machine.
// Logical records can span physical lines when a newline is quoted.
func scanCSV(text string) [][]string {
	text = dropBlankLines(text)
	if text == "" {
		return nil
	}

	var (
		records  [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
	)

	runes := []rune(text)
	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		records = append(records, fields)
		fields = nil
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"') // doubled quote collapses to one
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			endField()
		case c == '\n' && !inQuotes:
			endRecord()
		case c == '\r' && !inQuotes:
			// swallow; the matching \n ends the record
		default:
			field.WriteRune(c)
		}
	}
	if field.Len() > 0 || len(fields) > 0 {
		endRecord()
	}
	return records
}

func dropBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// ParseJSON parses a JSON document into a Dataset. Three shapes are accepted:
// a root array, or an object exposing a "videos" or "items" array. The header
// set comes from the keys of the first element. An empty or unresolvable
// array yields an empty dataset.
func ParseJSON(raw []byte) *Dataset {
	empty := &Dataset{Source: SourceJSON}

	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return empty
	}

	var items []any
	switch v := root.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, key := range []string{"videos", "items"} {
			if arr, ok := v[key].([]any); ok {
				items = arr
				break
			}
		}
	}
	if len(items) == 0 {
		return empty
	}

	first, ok := items[0].(map[string]any)
	if !ok {
		return empty
	}
	headers := sortedKeysInEncounterOrder(raw, first)

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := make(Row, len(headers))
		for _, h := range headers {
			row[h] = obj[h]
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return empty
	}
	return &Dataset{Headers: headers, Rows: rows, Source: SourceJSON}
}

// sortedKeysInEncounterOrder recovers the source ordering of the first
// object's keys by scanning the raw document for each quoted key; map
// iteration alone would scramble the header order.
func sortedKeysInEncounterOrder(raw []byte, first map[string]any) []string {
	type keyPos struct {
		key string
		pos int
	}
	doc := string(raw)
	positions := make([]keyPos, 0, len(first))
	for key := range first {
		idx := strings.Index(doc, `"`+key+`"`)
		if idx < 0 {
			idx = len(doc)
		}
		positions = append(positions, keyPos{key: key, pos: idx})
	}
	for i := 1; i < len(positions); i++ {
		for j := i; j > 0 && positions[j].pos < positions[j-1].pos; j-- {
			positions[j], positions[j-1] = positions[j-1], positions[j]
		}
	}
	headers := make([]string, len(positions))
	for i, kp := range positions {
		headers[i] = kp.key
	}
	return headers
}
