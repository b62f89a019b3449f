// Package source provides the ordered URL list for a run.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/samims/indexer/internal/config"
	appErr "github.com/samims/indexer/internal/errors"
)

// Source returns the raw URL list. Failures wrap errors.ErrSourceUnavailable.
type Source interface {
	URLs(ctx context.Context) ([]string, error)
}

// Clean trims every entry and drops the empty ones, keeping order and duplicates.
func Clean(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, u := range raw {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// Sheet reads the first column of a spreadsheet range through the
// Sheets values API using an API key.
type Sheet struct {
	cfg    config.SheetConfig
	client *http.Client
	logger *slog.Logger
}

func NewSheet(cfg config.SheetConfig, client *http.Client, logger *slog.Logger) *Sheet {
	return &Sheet{cfg: cfg, client: client, logger: logger.With("layer", "source", "component", "sheet")}
}

type valueRange struct {
	Values [][]string `json:"values"`
}

func (s *Sheet) URLs(ctx context.Context) ([]string, error) {
	if s.cfg.ID == "" {
		return nil, appErr.NewSourceUnavailable("SHEET_ID not set")
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s",
		strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(s.cfg.ID), url.PathEscape(s.cfg.Range))
	q := url.Values{}
	q.Set("alt", "json")
	if s.cfg.APIKey != "" {
		q.Set("key", s.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, appErr.NewSourceUnavailable("build request: %v", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErr.NewSourceUnavailable("fetch sheet: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, appErr.NewSourceUnavailable("sheets api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var vr valueRange
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, appErr.NewSourceUnavailable("decode sheet: %v", err)
	}

	raw := make([]string, 0, len(vr.Values))
	for _, row := range vr.Values {
		if len(row) > 0 {
			raw = append(raw, row[0])
		}
	}
	urls := Clean(raw)
	s.logger.Info("URLs fetched from sheet", slog.String("range", s.cfg.Range), slog.Int("count", len(urls)))
	return urls, nil
}

// File reads one URL per line.
type File struct {
	Path string
}

func (f File) URLs(_ context.Context) ([]string, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, appErr.NewSourceUnavailable("open %s: %v", f.Path, err)
	}
	defer fh.Close()

	var raw []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		raw = append(raw, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, appErr.NewSourceUnavailable("read %s: %v", f.Path, err)
	}
	return Clean(raw), nil
}

// Static is a fixed URL list.
type Static []string

func (s Static) URLs(_ context.Context) ([]string, error) {
	return Clean(s), nil
}
