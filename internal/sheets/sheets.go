// Package sheets adapts Google Sheets to the keyed row-store shape the
// reconciler works against: find a row by its first-column key, append a
// row, update a single cell.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/observability"
)

// ErrRecordStore wraps every remote table failure so callers can treat the
// whole store as one recoverable boundary.
var ErrRecordStore = errors.New("record store failure")

const valueInputRaw = "RAW"

// RowStore is a keyed row table. Row and column indexes are 1-based,
// matching the spreadsheet UI; FindRow returns 0 when the key is absent.
type RowStore interface {
	Header(ctx context.Context) ([]string, error)
	FindRow(ctx context.Context, key string) (int, error)
	ReadRow(ctx context.Context, row int) ([]string, error)
	AppendRow(ctx context.Context, values []string) error
	UpdateCell(ctx context.Context, row, col int, value string) error
}

// Client holds one spreadsheet connection; individual worksheets are
// addressed through Sheet.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	logger        *zerolog.Logger
}

func NewClient(ctx context.Context, credentialsFile, spreadsheetID string, logger *zerolog.Logger) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, logger: logger}, nil
}

// EnsureSheet creates the worksheet with the given header row if it does
// not exist yet. Existing worksheets are left untouched: the scores header
// is operator-provisioned and must never be rewritten.
func (c *Client) EnsureSheet(ctx context.Context, title string, header []string) error {
	doc, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: reading spreadsheet: %w", ErrRecordStore, err)
	}

	for _, s := range doc.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return nil
		}
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}

	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: adding sheet %s: %w", ErrRecordStore, title, err)
	}

	c.logger.Info().Str("sheet", title).Msg("created missing worksheet")

	if len(header) == 0 {
		return nil
	}

	return c.Sheet(title).AppendRow(ctx, header)
}

// Sheet returns a RowStore over one worksheet.
func (c *Client) Sheet(title string) *Sheet {
	return &Sheet{client: c, title: title}
}

type Sheet struct {
	client *Client
	title  string
}

func (s *Sheet) Header(ctx context.Context) ([]string, error) {
	row, err := s.ReadRow(ctx, 1)
	if err != nil {
		return nil, err
	}

	return row, nil
}

func (s *Sheet) FindRow(ctx context.Context, key string) (int, error) {
	defer observability.ObserveRecordStoreCall("find")()

	rng := fmt.Sprintf("%s!A:A", s.title)

	resp, err := s.client.svc.Spreadsheets.Values.Get(s.client.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%w: reading key column of %s: %w", ErrRecordStore, s.title, err)
	}

	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == key {
			return i + 1, nil
		}
	}

	return 0, nil
}

func (s *Sheet) ReadRow(ctx context.Context, row int) ([]string, error) {
	defer observability.ObserveRecordStoreCall("read")()

	rng := fmt.Sprintf("%s!%d:%d", s.title, row, row)

	resp, err := s.client.svc.Spreadsheets.Values.Get(s.client.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: reading row %d of %s: %w", ErrRecordStore, row, s.title, err)
	}

	if len(resp.Values) == 0 {
		return nil, nil
	}

	values := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		values[i] = fmt.Sprint(v)
	}

	return values, nil
}

func (s *Sheet) AppendRow(ctx context.Context, values []string) error {
	defer observability.ObserveRecordStoreCall("append")()

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	vr := &sheetsapi.ValueRange{Values: [][]interface{}{row}}

	_, err := s.client.svc.Spreadsheets.Values.Append(s.client.spreadsheetID, s.title, vr).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: appending row to %s: %w", ErrRecordStore, s.title, err)
	}

	return nil
}

func (s *Sheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	defer observability.ObserveRecordStoreCall("update")()

	rng := fmt.Sprintf("%s!%s%d", s.title, columnLetters(col), row)
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{{value}}}

	_, err := s.client.svc.Spreadsheets.Values.Update(s.client.spreadsheetID, rng, vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: updating %s: %w", ErrRecordStore, rng, err)
	}

	return nil
}

// columnLetters converts a 1-based column index to A1 notation.
func columnLetters(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}

	return letters
}
