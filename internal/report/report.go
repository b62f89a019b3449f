// Package report turns a RunReport into what callers see: a structured
// summary for JSON consumers and console text. Every function is pure.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/samims/indexer/internal/model"
)

// Summary is the structured form of a run served to callers: the totals,
// timings and one entry per account in account order, each with its
// per-URL outcomes.
type Summary struct {
	RunID            string           `json:"run_id"`
	StartedAt        time.Time        `json:"started_at"`
	FinishedAt       time.Time        `json:"finished_at"`
	DurationMs       int64            `json:"duration_ms"`
	TotalURLsTried   int              `json:"total_urls_tried"`
	SuccessfulURLs   int              `json:"successful_urls"`
	URLsWithError429 int              `json:"urls_with_error_429"`
	OtherErrors      int              `json:"other_errors"`
	SkippedURLs      int              `json:"skipped_urls"`
	UnassignedURLs   int              `json:"unassigned_urls"`
	Accounts         []AccountSummary `json:"accounts_data"`
}

// AccountSummary always carries every count, zero for an account that
// could not run, so all entries have the same shape.
type AccountSummary struct {
	Account          int             `json:"account"`
	TotalURLsTried   int             `json:"total_urls_tried"`
	SuccessfulURLs   int             `json:"successful_urls"`
	URLsWithError429 int             `json:"urls_with_error_429"`
	OtherErrors      int             `json:"other_errors"`
	SkippedURLs      int             `json:"skipped_urls"`
	Error            string          `json:"error,omitempty"`
	Results          []model.Outcome `json:"results"`
}

func Summarize(r model.RunReport) Summary {
	s := Summary{
		RunID:            r.RunID,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
		TotalURLsTried:   r.TotalURLsTried,
		SuccessfulURLs:   r.SuccessfulURLs,
		URLsWithError429: r.URLsWithError429,
		OtherErrors:      r.OtherErrors,
		SkippedURLs:      r.SkippedURLs,
		UnassignedURLs:   r.UnassignedURLs,
		Accounts:         make([]AccountSummary, 0, len(r.Accounts)),
	}
	if !r.StartedAt.IsZero() && r.FinishedAt.After(r.StartedAt) {
		s.DurationMs = r.FinishedAt.Sub(r.StartedAt).Milliseconds()
	}
	for _, a := range r.Accounts {
		results := a.Results
		if results == nil {
			results = []model.Outcome{}
		}
		s.Accounts = append(s.Accounts, AccountSummary{
			Account:          a.Account,
			TotalURLsTried:   a.TotalURLsTried,
			SuccessfulURLs:   a.SuccessfulURLs,
			URLsWithError429: a.URLsWithError429,
			OtherErrors:      a.OtherErrors,
			SkippedURLs:      a.SkippedURLs,
			Error:            a.Error,
			Results:          results,
		})
	}
	return s
}

// Text renders the console summary. With verbose set, every outcome that
// is not a success is listed under its account.
func Text(r model.RunReport, verbose bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s\n", r.RunID)
	for _, a := range r.Accounts {
		fmt.Fprintf(&b, "\nAccount %d\n", a.Account)
		if a.Degenerate() {
			fmt.Fprintf(&b, "  Error: %s\n", a.Error)
		}
		writeCounts(&b, "  ", a.TotalURLsTried, a.SuccessfulURLs, a.URLsWithError429, a.OtherErrors)
		if a.Degenerate() {
			fmt.Fprintf(&b, "  Skipped URLs: %d\n", a.SkippedURLs)
			continue
		}
		if verbose {
			for _, o := range a.Results {
				if o.Status == model.StatusSuccess {
					continue
				}
				fmt.Fprintf(&b, "    %-17s %s", o.Status, o.URL)
				if o.Code != 0 || o.Message != "" {
					fmt.Fprintf(&b, " (%d %s)", o.Code, o.Message)
				}
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	writeCounts(&b, "", r.TotalURLsTried, r.SuccessfulURLs, r.URLsWithError429, r.OtherErrors)
	fmt.Fprintf(&b, "Skipped URLs (no credential): %d\n", r.SkippedURLs)
	fmt.Fprintf(&b, "Unassigned URLs (over quota): %d\n", r.UnassignedURLs)
	return b.String()
}

func writeCounts(b *strings.Builder, indent string, tried, ok, limited, other int) {
	fmt.Fprintf(b, "%sTotal URLs Tried: %d\n", indent, tried)
	fmt.Fprintf(b, "%sSuccessful URLs: %d\n", indent, ok)
	fmt.Fprintf(b, "%sURLs with Error 429: %d\n", indent, limited)
	fmt.Fprintf(b, "%sOther Errors: %d\n", indent, other)
}
