package sheets

import (
	"context"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/spec-kit/issue-tracker/internal/config"
)

const spreadsheetScope = "https://www.googleapis.com/auth/spreadsheets"

// googleValuesAPI implements ValuesAPI against the Google Sheets v4 API for
// a single spreadsheet.
type googleValuesAPI struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewGoogleValuesAPI authenticates with a service account and returns a
// ValuesAPI bound to the configured spreadsheet. Returns nil when the
// credentials are incomplete so the mirror degrades to a no-op.
func NewGoogleValuesAPI(ctx context.Context, cfg config.SheetsConfig) (ValuesAPI, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	conf := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{spreadsheetScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, err
	}
	return &googleValuesAPI{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

func (g *googleValuesAPI) Get(ctx context.Context, readRange string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			if s, ok := cell.(string); ok {
				row = append(row, s)
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *googleValuesAPI) Append(ctx context.Context, writeRange string, row []string) error {
	_, err := g.svc.Spreadsheets.Values.
		Append(g.spreadsheetID, writeRange, valueRange(row)).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *googleValuesAPI) Update(ctx context.Context, writeRange string, row []string) error {
	_, err := g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, writeRange, valueRange(row)).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *googleValuesAPI) DeleteRows(ctx context.Context, startIndex, endIndex int64) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					// The mirror tab is the spreadsheet's first sheet. Zero-valued
					// fields are dropped from the request unless forced.
					SheetId:         0,
					Dimension:       "ROWS",
					StartIndex:      startIndex,
					EndIndex:        endIndex,
					ForceSendFields: []string{"SheetId"},
				},
			},
		}},
	}
	_, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return err
}

func valueRange(row []string) *sheetsapi.ValueRange {
	cells := make([]interface{}, len(row))
	for i, cell := range row {
		cells[i] = cell
	}
	return &sheetsapi.ValueRange{Values: [][]interface{}{cells}}
}
