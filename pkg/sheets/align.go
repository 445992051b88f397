package sheets

import "carprice/pkg/columns"

// Align shapes rec to a destination header. Each header cell takes the value
// of the field columns.MatchHeader picks for it, or stays blank. Fields no
// header claimed are appended after the header width, in record order.
func Align(header []string, rec *Record) []string {
	row := make([]string, len(header), len(header)+len(rec.Fields))
	used := make(map[string]bool, len(rec.Fields))
	for i, h := range header {
		field, ok := columns.MatchHeader(h, rec.Fields)
		if !ok {
			continue
		}
		row[i] = FormatValue(rec.Values[field])
		used[field] = true
	}
	for _, f := range rec.Fields {
		if !used[f] {
			row = append(row, FormatValue(rec.Values[f]))
		}
	}
	return row
}
