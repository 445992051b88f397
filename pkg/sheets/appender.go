// Package sheets appends predicted records to a spreadsheet whose first row
// names the columns.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoHeaderRow is returned when the destination has no header to align to.
var ErrNoHeaderRow = errors.New("destination sheet has no header row")

// Worksheet is the destination of an append.
type Worksheet interface {
	// Header returns the cells of the first row; empty when the sheet is blank.
	Header(ctx context.Context) ([]string, error)
	// AppendRows writes rows after the last non-empty row in one call.
	AppendRows(ctx context.Context, rows [][]string) error
}

// Appender aligns records to a worksheet header and appends them.
type Appender struct {
	log *slog.Logger
}

func NewAppender(log *slog.Logger) *Appender {
	return &Appender{log: log}
}

// Append writes records to ws and returns the number of rows written.
// The header is checked before anything is written.
func (a *Appender) Append(ctx context.Context, ws Worksheet, records []*Record) (int, error) {
	header, err := ws.Header(ctx)
	if err != nil {
		return 0, fmt.Errorf("sheets: read header: %w", err)
	}
	if blank(header) {
		return 0, ErrNoHeaderRow
	}
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]string, len(records))
	extra := 0
	for i, rec := range records {
		rows[i] = Align(header, rec)
		if n := len(rows[i]) - len(header); n > extra {
			extra = n
		}
	}
	if extra > 0 {
		a.log.Warn("record fields without a destination column appended after the header",
			"header_width", len(header), "extra_columns", extra)
	}

	if err := ws.AppendRows(ctx, rows); err != nil {
		return 0, fmt.Errorf("sheets: append: %w", err)
	}
	a.log.Info("appended rows", "rows", len(rows))
	return len(rows), nil
}

func blank(header []string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			return false
		}
	}
	return true
}
