package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneymap/internal/core"
)

type fakeSheets struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
	header   bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	header := f.header
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, ":append"):
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Records!A2:G2"},
		})
	case r.Method == http.MethodPut:
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": "Records!A1:G1"})
	case strings.Contains(r.URL.Path, "A1:G1"):
		values := [][]any{}
		if header {
			values = [][]any{{"ID"}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": values})
	default:
		_ = json.NewEncoder(w).Encode(map[string]any{
			"values": [][]any{{"ID"}, {"r1"}, {"r2"}, {"r1"}},
		})
	}
}

func newFakeClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewWithService(svc, "sheet-id", "Records", nil)
}

func TestExportRecord(t *testing.T) {
	f := &fakeSheets{}
	c := newFakeClient(t, f)

	ref, err := c.ExportRecord(context.Background(), "a@b.c", core.Record{
		ID:      "r1",
		Time:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Kind:    core.Received,
		Item:    "Loan",
		Amount:  1000,
		Balance: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Records!A2:G2", ref)

	require.Len(t, f.requests, 1)
	assert.Contains(t, f.requests[0], "/v4/spreadsheets/sheet-id/values/")
	assert.Contains(t, f.requests[0], ":append")
	assert.Contains(t, f.bodies[0], `"r1"`)
	assert.Contains(t, f.bodies[0], `"a@b.c"`)
}

func TestListExportedIDs(t *testing.T) {
	c := newFakeClient(t, &fakeSheets{})
	ids, err := c.ListExportedIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids)
}

func TestEnsureHeader(t *testing.T) {
	f := &fakeSheets{}
	c := newFakeClient(t, f)
	require.NoError(t, c.EnsureHeader(context.Background()))
	require.Len(t, f.requests, 2)
	assert.True(t, strings.HasPrefix(f.requests[1], http.MethodPut))
	assert.Contains(t, f.bodies[1], `"Balance"`)

	f2 := &fakeSheets{header: true}
	c2 := newFakeClient(t, f2)
	require.NoError(t, c2.EnsureHeader(context.Background()))
	assert.Len(t, f2.requests, 1, "existing header is left alone")
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	assert.EqualError(t, err, "missing spreadsheet id")
}

func TestNewRejectsMissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing credentials")
}

func TestNewRejectsBadOAuthClient(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:   "x",
		OAuthClientJSON: "invalid-json",
		OAuthTokenJSON:  `{"access_token":"test"}`,
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oauth config")
}

func TestExportRecordWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetName: "Records"}
	_, err := c.ExportRecord(context.Background(), "a@b.c", core.Record{})
	assert.EqualError(t, err, "sheets service not initialized")
}
