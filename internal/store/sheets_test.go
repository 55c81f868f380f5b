package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// fakeSheets serves the handful of Sheets v4 endpoints SheetsStore uses.
type fakeSheets struct {
	mu      sync.Mutex
	tabs    []*sheets.Sheet
	rows    [][]any
	updates []*sheets.ValueRange
	deleted []*sheets.DimensionRange
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		_ = json.NewEncoder(w).Encode(&sheets.ValueRange{Values: f.rows})
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/spreadsheets/sheet-123"):
		_ = json.NewEncoder(w).Encode(&sheets.Spreadsheet{SpreadsheetId: "sheet-123", Sheets: f.tabs})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.rows = append(f.rows, body.Values...)
		_ = json.NewEncoder(w).Encode(&sheets.AppendValuesResponse{})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/values:batchUpdate"):
		var body sheets.BatchUpdateValuesRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.updates = append(f.updates, body.Data...)
		_ = json.NewEncoder(w).Encode(&sheets.BatchUpdateValuesResponse{})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		var body sheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, req := range body.Requests {
			if req.DeleteDimension != nil {
				f.deleted = append(f.deleted, req.DeleteDimension.Range)
			}
		}
		_ = json.NewEncoder(w).Encode(&sheets.BatchUpdateSpreadsheetResponse{})
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func tab(id int64, title string) *sheets.Sheet {
	return &sheets.Sheet{Properties: &sheets.SheetProperties{SheetId: id, Title: title}}
}

func openFakeSheets(t *testing.T, fake *fakeSheets) (*SheetsStore, error) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewSheetsStore(context.Background(), "", "sheet-123",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
}

func newTestSheets(t *testing.T) (*SheetsStore, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{
		tabs: []*sheets.Sheet{tab(0, "Overview"), tab(781, DefaultSheet)},
		rows: [][]any{{"Full Name", "LinkedIn ID"}},
	}
	s, err := openFakeSheets(t, fake)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC) }
	return s, fake
}

func TestSheetsStore(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestSheets(t)

	ex, err := s.Exists(ctx, "jane")
	require.NoError(t, err)
	assert.False(t, ex.Exists)

	require.NoError(t, s.Append(ctx, testProfile("jane")))
	require.Len(t, fake.rows, 2)
	assert.Equal(t, "jane", fake.rows[1][ColMemberID])
	assert.Equal(t, "2026-05-06", fake.rows[1][ColAdded])

	ex, err = s.Exists(ctx, "jane")
	require.NoError(t, err)
	assert.True(t, ex.Exists)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Update(ctx, "jane", Fields{Notes: strPtr("call"), ProcessedBy: strPtr("sam")}))
	require.Len(t, fake.updates, 2)
	assert.Equal(t, "Sheet1!H2", fake.updates[0].Range)
	assert.Equal(t, "Sheet1!M2", fake.updates[1].Range)

	assert.ErrorIs(t, s.Update(ctx, "nobody", Fields{Notes: strPtr("x")}), ErrNotFound)

	removed, err := s.Delete(ctx, "jane")
	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, fake.deleted, 1)
	assert.Equal(t, int64(781), fake.deleted[0].SheetId)
	assert.Equal(t, int64(1), fake.deleted[0].StartIndex)
	assert.Equal(t, int64(2), fake.deleted[0].EndIndex)

	removed, err = s.Delete(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestNewSheetsStore_MissingSheet(t *testing.T) {
	_, err := openFakeSheets(t, &fakeSheets{tabs: []*sheets.Sheet{tab(0, "Overview")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Sheet1" not found`)
}

func TestStringRows(t *testing.T) {
	got := stringRows([][]any{{"a", 2.0}, {}})
	assert.Equal(t, [][]string{{"a", "2"}, {}}, got)
}
