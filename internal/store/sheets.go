package store

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jonathan/candidate-tracker/internal/types"
)

const valueInputOption = "USER_ENTERED"

// SheetsStore keeps candidates in a Google Sheets spreadsheet with the same
// A..O layout as WorkbookStore.
type SheetsStore struct {
	service       *sheets.Service
	spreadsheetID string
	sheet         string
	sheetID       int64
	now           func() time.Time
}

// NewSheetsStore creates a store for spreadsheetID authenticated with the
// service-account credentials file. The spreadsheet must contain a sheet
// named DefaultSheet.
func NewSheetsStore(ctx context.Context, credentialsFile, spreadsheetID string, opts ...option.ClientOption) (*SheetsStore, error) {
	if credentialsFile != "" {
		opts = append(opts,
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		)
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	s := &SheetsStore{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheet:         DefaultSheet,
		now:           time.Now,
	}
	if s.sheetID, err = s.lookupSheetID(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// lookupSheetID finds the numeric ID row deletions address the sheet by.
func (s *SheetsStore) lookupSheetID(ctx context.Context) (int64, error) {
	doc, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read spreadsheet %s: %w", s.spreadsheetID, err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheet {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet %s", s.sheet, s.spreadsheetID)
}

func (s *SheetsStore) rangeOf(a1 string) string {
	return s.sheet + "!" + a1
}

// readRows reads columns A..O. Every cell is returned as a string.
func (s *SheetsStore) readRows(ctx context.Context) ([][]string, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeOf("A:O")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	return stringRows(resp.Values), nil
}

func stringRows(values [][]any) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return rows
}

// Exists scans column B for memberID.
func (s *SheetsStore) Exists(ctx context.Context, memberID string) (Existence, error) {
	rows, err := s.readRows(ctx)
	if err != nil {
		return Existence{}, wrap("check", memberID, err)
	}
	i := findRow(rows, ColMemberID, memberID)
	if i < 0 {
		return Existence{}, nil
	}
	return Existence{Exists: true, ProcessedBy: cell(rows[i], ColProcessedBy)}, nil
}

// Append adds profile after the last row of the table.
func (s *SheetsStore) Append(ctx context.Context, profile *types.CandidateProfile) error {
	values := Row(profile, s.now())
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.rangeOf("A:O"), &sheets.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return wrap("save", profile.MemberID, err)
	}
	return nil
}

// Update writes the set fields into the candidate's row in one batch.
func (s *SheetsStore) Update(ctx context.Context, memberID string, fields Fields) error {
	rows, err := s.readRows(ctx)
	if err != nil {
		return wrap("update", memberID, err)
	}
	i := findRow(rows, ColMemberID, memberID)
	if i < 0 {
		return wrap("update", memberID, ErrNotFound)
	}

	updates := cellUpdates(fields)
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(updates))
	for col := range numColumns {
		value, ok := updates[col]
		if !ok {
			continue
		}
		data = append(data, &sheets.ValueRange{
			Range:  s.rangeOf(fmt.Sprintf("%s%d", ColumnName(col), i+1)),
			Values: [][]any{{value}},
		})
	}
	_, err = s.service.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return wrap("update", memberID, err)
	}
	return nil
}

// Delete removes the candidate's row from the sheet.
func (s *SheetsStore) Delete(ctx context.Context, memberID string) (bool, error) {
	rows, err := s.readRows(ctx)
	if err != nil {
		return false, wrap("delete", memberID, err)
	}
	i := findRow(rows, ColMemberID, memberID)
	if i < 0 {
		return false, nil
	}
	_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    s.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(i),
					EndIndex:   int64(i + 1),
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return false, wrap("delete", memberID, err)
	}
	return true, nil
}

// Count returns the number of data rows.
func (s *SheetsStore) Count(ctx context.Context) (int, error) {
	rows, err := s.readRows(ctx)
	if err != nil {
		return 0, err
	}
	return max(len(rows)-1, 0), nil
}
