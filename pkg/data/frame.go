package data

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// missingMarkers mirrors the cells pandas reads as NaN by default.
var missingMarkers = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {},
}

// IsMissing reports whether a raw cell counts as a missing value.
func IsMissing(s string) bool {
	_, ok := missingMarkers[strings.TrimSpace(s)]
	return ok
}

// ParseFloat parses a numeric cell. Missing cells yield NaN and ok=true.
func ParseFloat(s string) (float64, bool) {
	if IsMissing(s) {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Frame is a column-named table of raw string cells.
type Frame struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewFrame builds a Frame; every row must have len(columns) cells.
func NewFrame(columns []string, rows [][]string) *Frame {
	f := &Frame{Columns: columns, Rows: rows, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, dup := f.index[c]; !dup {
			f.index[c] = i
		}
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Index returns the position of a column.
func (f *Frame) Index(col string) (int, bool) {
	i, ok := f.index[col]
	return i, ok
}

// Has reports whether the column exists.
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Column returns a copy of the raw cells of col, or nil if absent.
func (f *Frame) Column(col string) []string {
	j, ok := f.index[col]
	if !ok {
		return nil
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[j]
	}
	return out
}

// Float parses col as numbers. Missing cells become NaN.
func (f *Frame) Float(col string) ([]float64, error) {
	j, ok := f.index[col]
	if !ok {
		return nil, fmt.Errorf("data: no column %q", col)
	}
	out := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		v, ok := ParseFloat(row[j])
		if !ok {
			return nil, fmt.Errorf("data: column %q row %d: %q is not numeric", col, i, row[j])
		}
		out[i] = v
	}
	return out, nil
}

// IsNumeric reports whether every non-missing cell of col parses as a number.
// A column with no values at all is numeric, the way pandas types it float64.
func (f *Frame) IsNumeric(col string) bool {
	j, ok := f.index[col]
	if !ok {
		return false
	}
	for _, row := range f.Rows {
		if _, ok := ParseFloat(row[j]); !ok {
			return false
		}
	}
	return true
}

// NumericColumns returns the numeric columns in frame order.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, c := range f.Columns {
		if f.IsNumeric(c) {
			out = append(out, c)
		}
	}
	return out
}

// CategoricalColumns returns the non-numeric columns in frame order.
func (f *Frame) CategoricalColumns() []string {
	var out []string
	for _, c := range f.Columns {
		if !f.IsNumeric(c) {
			out = append(out, c)
		}
	}
	return out
}

// Drop returns a new frame without the named columns. Unknown names are ignored.
func (f *Frame) Drop(cols ...string) *Frame {
	skip := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		skip[c] = struct{}{}
	}
	var keep []string
	for _, c := range f.Columns {
		if _, ok := skip[c]; !ok {
			keep = append(keep, c)
		}
	}
	out, _ := f.Select(keep)
	return out
}

// Select returns a new frame with only cols, in that order.
func (f *Frame) Select(cols []string) (*Frame, error) {
	idx := make([]int, len(cols))
	for k, c := range cols {
		j, ok := f.index[c]
		if !ok {
			return nil, fmt.Errorf("data: no column %q", c)
		}
		idx[k] = j
	}
	rows := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		r := make([]string, len(idx))
		for k, j := range idx {
			r[k] = row[j]
		}
		rows[i] = r
	}
	return NewFrame(append([]string(nil), cols...), rows), nil
}

// Filter returns a frame holding the rows for which keep returns true.
func (f *Frame) Filter(keep func(row []string) bool) *Frame {
	var rows [][]string
	for _, row := range f.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return NewFrame(f.Columns, rows)
}

// Take returns a frame holding rows at the given positions; positions may repeat.
func (f *Frame) Take(positions []int) *Frame {
	rows := make([][]string, len(positions))
	for i, p := range positions {
		rows[i] = append([]string(nil), f.Rows[p]...)
	}
	return NewFrame(f.Columns, rows)
}
