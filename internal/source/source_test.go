package source

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samims/indexer/internal/config"
	appErr "github.com/samims/indexer/internal/errors"
)

func TestClean(t *testing.T) {
	got := Clean([]string{" https://a.test ", "", "   ", "https://b.test", "https://a.test"})
	assert.Equal(t, []string{"https://a.test", "https://b.test", "https://a.test"}, got)
}

func TestSheetURLs(t *testing.T) {
	var gotPath, gotKey, gotAlt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotKey = r.URL.Query().Get("key")
		gotAlt = r.URL.Query().Get("alt")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"range":"Sheet1!A2:A6","majorDimension":"ROWS","values":[["https://a.test"],[],["  https://b.test  ","ignored"],[""],["https://c.test"]]}`))
	}))
	defer srv.Close()

	s := NewSheet(config.SheetConfig{
		BaseURL: srv.URL + "/v4/spreadsheets/",
		ID:      "sheet-1",
		Range:   "A2:A6",
		APIKey:  "key-1",
	}, srv.Client(), slog.Default())

	urls, err := s.URLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test", "https://b.test", "https://c.test"}, urls)
	assert.Equal(t, "/v4/spreadsheets/sheet-1/values/A2:A6", gotPath)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "json", gotAlt)
}

func TestSheetUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		id      string
	}{
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
			},
			id: "sheet-1",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
			id: "sheet-1",
		},
		{
			name:    "missing sheet id",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			id:      "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			s := NewSheet(config.SheetConfig{BaseURL: srv.URL, ID: tt.id, Range: "A2:A3"}, srv.Client(), slog.Default())
			_, err := s.URLs(context.Background())
			require.Error(t, err)
			assert.True(t, appErr.IsSourceUnavailable(err))
		})
	}
}

func TestFileURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://a.test\n\n  https://b.test\r\n"), 0o600))

	urls, err := File{Path: path}.URLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, urls)

	_, err = File{Path: filepath.Join(t.TempDir(), "missing.txt")}.URLs(context.Background())
	assert.True(t, appErr.IsSourceUnavailable(err))
}
