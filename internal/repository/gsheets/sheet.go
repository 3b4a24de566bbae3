package gsheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// Sheet is one tab of a Google spreadsheet
type Sheet struct {
	backend *Backend
	id      int64
	title   string
}

// Title returns the tab name
func (s *Sheet) Title() string {
	return s.title
}

// Rows returns every row of the tab
func (s *Sheet) Rows(ctx context.Context) ([][]string, error) {
	vr, err := s.backend.svc.Spreadsheets.Values.Get(s.backend.spreadsheetID, s.a1("")).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("read rows", err)
	}
	return toStrings(vr.Values), nil
}

// RowValues returns one row
func (s *Sheet) RowValues(ctx context.Context, row int) ([]string, error) {
	rng := s.a1(fmt.Sprintf("%d:%d", row, row))
	vr, err := s.backend.svc.Spreadsheets.Values.Get(s.backend.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("read row", err)
	}
	rows := toStrings(vr.Values)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpdateRows overwrites rows starting at startRow
func (s *Sheet) UpdateRows(ctx context.Context, startRow int, rows [][]string) error {
	vr := &sheets.ValueRange{Values: toValues(rows)}
	_, err := s.backend.svc.Spreadsheets.Values.
		Update(s.backend.spreadsheetID, s.a1(fmt.Sprintf("A%d", startRow)), vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return wrapErr("update rows", err)
	}
	return nil
}

// InsertRow inserts a row at row holding values. Insert and write are one
// batch request and apply together or not at all.
func (s *Sheet) InsertRow(ctx context.Context, row int, values []string) error {
	cells := make([]*sheets.CellData, len(values))
	for i, v := range values {
		v := v
		cells[i] = &sheets.CellData{UserEnteredValue: &sheets.ExtendedValue{StringValue: &v}}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				InsertDimension: &sheets.InsertDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:         s.id,
						Dimension:       "ROWS",
						StartIndex:      int64(row - 1),
						EndIndex:        int64(row),
						ForceSendFields: []string{"SheetId", "StartIndex"},
					},
				},
			},
			{
				UpdateCells: &sheets.UpdateCellsRequest{
					Start: &sheets.GridCoordinate{
						SheetId:         s.id,
						RowIndex:        int64(row - 1),
						ColumnIndex:     0,
						ForceSendFields: []string{"SheetId", "RowIndex", "ColumnIndex"},
					},
					Rows:   []*sheets.RowData{{Values: cells}},
					Fields: "userEnteredValue",
				},
			},
		},
	}
	if _, err := s.backend.svc.Spreadsheets.BatchUpdate(s.backend.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return wrapErr("insert row", err)
	}
	return nil
}

// AppendRows appends rows after the existing table
func (s *Sheet) AppendRows(ctx context.Context, rows [][]string) error {
	vr := &sheets.ValueRange{Values: toValues(rows)}
	_, err := s.backend.svc.Spreadsheets.Values.
		Append(s.backend.spreadsheetID, s.a1("A1"), vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return wrapErr("append rows", err)
	}
	return nil
}

// UpdateCell writes a single cell
func (s *Sheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	rng := s.a1(fmt.Sprintf("%s%d", ColumnLetter(col), row))
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.backend.svc.Spreadsheets.Values.
		Update(s.backend.spreadsheetID, rng, vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return wrapErr("update cell", err)
	}
	return nil
}

// Clear removes all values from the tab
func (s *Sheet) Clear(ctx context.Context) error {
	_, err := s.backend.svc.Spreadsheets.Values.
		Clear(s.backend.spreadsheetID, s.a1(""), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return wrapErr("clear sheet", err)
	}
	return nil
}

// a1 builds an A1 range on this tab; an empty ref addresses the whole tab
func (s *Sheet) a1(ref string) string {
	quoted := "'" + strings.ReplaceAll(s.title, "'", "''") + "'"
	if ref == "" {
		return quoted
	}
	return quoted + "!" + ref
}

// ColumnLetter converts a 1-based column index to its A1 letters
func ColumnLetter(col int) string {
	if col < 1 {
		return ""
	}
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		out[i] = cells
	}
	return out
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
