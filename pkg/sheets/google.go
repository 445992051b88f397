package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"carprice/pkg/config"
)

// Scopes requested for the service account.
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

var keyRegexp = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the key from a spreadsheet URL. Anything else is
// taken to be a bare key.
func SpreadsheetID(target string) string {
	target = strings.TrimSpace(target)
	if m := keyRegexp.FindStringSubmatch(target); m != nil {
		return m[1]
	}
	return target
}

// GoogleWorksheet is the first worksheet of a Google spreadsheet.
type GoogleWorksheet struct {
	svc           *gsheets.Service
	spreadsheetID string
	title         string
}

// Open authenticates with a service-account key file and resolves the first
// worksheet of target (a spreadsheet URL or key).
func Open(ctx context.Context, credentialsFile, target string) (*GoogleWorksheet, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: no spreadsheet URL or key", config.ErrMissingConfiguration)
	}
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: service account file %s not found", config.ErrMissingConfiguration, credentialsFile)
		}
		return nil, fmt.Errorf("sheets: read credentials: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(raw, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse credentials: %w", err)
	}
	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets: client: %w", err)
	}

	id := SpreadsheetID(target)
	ss, err := svc.Spreadsheets.Get(id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: open %s: %w", id, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("sheets: spreadsheet %s has no worksheets", id)
	}
	return &GoogleWorksheet{svc: svc, spreadsheetID: id, title: ss.Sheets[0].Properties.Title}, nil
}

func (w *GoogleWorksheet) Header(ctx context.Context) ([]string, error) {
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, w.a1("1:1")).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	header := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		header[i] = cast.ToString(v)
	}
	return header, nil
}

func (w *GoogleWorksheet) AppendRows(ctx context.Context, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		values[i] = cells
	}
	_, err := w.svc.Spreadsheets.Values.
		Append(w.spreadsheetID, w.a1("A1"), &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// a1 qualifies a range with the quoted worksheet title.
func (w *GoogleWorksheet) a1(rng string) string {
	return "'" + strings.ReplaceAll(w.title, "'", "''") + "'!" + rng
}
