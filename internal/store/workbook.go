package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// DefaultSheet is the worksheet candidates are written to.
const DefaultSheet = "Sheet1"

// WorkbookStore keeps candidates in a local .xlsx file using the A..O
// column layout. The file is created with a header row on first write.
type WorkbookStore struct {
	mu    sync.Mutex
	path  string
	sheet string
	now   func() time.Time
}

// NewWorkbookStore creates a store for the workbook at path.
func NewWorkbookStore(path string) *WorkbookStore {
	return &WorkbookStore{path: path, sheet: DefaultSheet, now: time.Now}
}

// open loads the workbook, or a fresh one with a header row when the file
// does not exist yet.
func (s *WorkbookStore) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}

	f = excelize.NewFile()
	if name := f.GetSheetName(0); name != s.sheet {
		if err := f.SetSheetName(name, s.sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		_ = f.SetRowStyle(s.sheet, 1, 1, headerStyle)
	}
	return f, nil
}

func (s *WorkbookStore) rows(f *excelize.File) ([][]string, error) {
	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
	}
	return rows, nil
}

func (s *WorkbookStore) save(f *excelize.File) error {
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}
	return nil
}

// Exists scans column B for memberID.
func (s *WorkbookStore) Exists(_ context.Context, memberID string) (Existence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return Existence{}, wrap("check", memberID, err)
	}
	defer f.Close()

	rows, err := s.rows(f)
	if err != nil {
		return Existence{}, wrap("check", memberID, err)
	}
	i := findRow(rows, ColMemberID, memberID)
	if i < 0 {
		return Existence{}, nil
	}
	return Existence{Exists: true, ProcessedBy: cell(rows[i], ColProcessedBy)}, nil
}

// Append writes profile as a new row after the last used one.
func (s *WorkbookStore) Append(_ context.Context, profile *types.CandidateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return wrap("save", profile.MemberID, err)
	}
	defer f.Close()

	rows, err := s.rows(f)
	if err != nil {
		return wrap("save", profile.MemberID, err)
	}
	values := Row(profile, s.now())
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	axis, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return wrap("save", profile.MemberID, err)
	}
	if err := f.SetSheetRow(s.sheet, axis, &row); err != nil {
		return wrap("save", profile.MemberID, err)
	}
	return s.save(f)
}

// Update writes the set fields into the candidate's row.
func (s *WorkbookStore) Update(_ context.Context, memberID string, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return wrap("update", memberID, err)
	}
	defer f.Close()

	rows, err := s.rows(f)
	if err != nil {
		return wrap("update", memberID, err)
	}
	i := findRow(rows, ColMemberID, memberID)
	if i < 0 {
		return wrap("update", memberID, ErrNotFound)
	}
	for col, value := range cellUpdates(fields) {
		axis, err := excelize.CoordinatesToCellName(col+1, i+1)
		if err != nil {
			return wrap("update", memberID, err)
		}
		if err := f.SetCellStr(s.sheet, axis, value); err != nil {
			return wrap("update", memberID, err)
		}
	}
	return s.save(f)
}

// Delete removes the candidate's row, shifting later rows up.
func (s *WorkbookStore) Delete(_ context.Context, memberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return false, wrap("delete", memberID, err)
	}
	defer f.Close()

	rows, err := s.rows(f)
	if err != nil {
		return false, wrap("delete", memberID, err)
	}
	i := findRow(rows, ColMemberID, memberID)
	if i < 0 {
		return false, nil
	}
	if err := f.RemoveRow(s.sheet, i+1); err != nil {
		return false, wrap("delete", memberID, err)
	}
	return true, s.save(f)
}

// Count returns the number of data rows.
func (s *WorkbookStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := s.rows(f)
	if err != nil {
		return 0, err
	}
	return max(len(rows)-1, 0), nil
}
