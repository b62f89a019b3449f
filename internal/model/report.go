package model

import "time"

// AccountReport aggregates one account's batch.
type AccountReport struct {
	// Index is the zero-based account index; Account is the 1-based label.
	Index            int       `json:"-"`
	Account          int       `json:"account"`
	TotalURLsTried   int       `json:"total_urls_tried"`
	SuccessfulURLs   int       `json:"successful_urls"`
	URLsWithError429 int       `json:"urls_with_error_429"`
	OtherErrors      int       `json:"other_errors"`
	SkippedURLs      int       `json:"skipped_urls,omitempty"`
	Error            string    `json:"error,omitempty"`
	Results          []Outcome `json:"results"`
}

// Degenerate reports whether the account could not be processed at all.
func (a AccountReport) Degenerate() bool {
	return a.Error != ""
}

// RunReport aggregates every account of one run, ordered by account index.
type RunReport struct {
	RunID            string          `json:"run_id"`
	StartedAt        time.Time       `json:"started_at"`
	FinishedAt       time.Time       `json:"finished_at"`
	TotalURLsTried   int             `json:"total_urls_tried"`
	SuccessfulURLs   int             `json:"successful_urls"`
	URLsWithError429 int             `json:"urls_with_error_429"`
	OtherErrors      int             `json:"other_errors"`
	SkippedURLs      int             `json:"skipped_urls"`
	UnassignedURLs   int             `json:"unassigned_urls"`
	Accounts         []AccountReport `json:"accounts_data"`
}

// RunSummary is a RunReport without per-URL results, used for listings.
type RunSummary struct {
	RunID            string    `json:"run_id"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Accounts         int       `json:"accounts"`
	TotalURLsTried   int       `json:"total_urls_tried"`
	SuccessfulURLs   int       `json:"successful_urls"`
	URLsWithError429 int       `json:"urls_with_error_429"`
	OtherErrors      int       `json:"other_errors"`
}

// Summary drops the per-account breakdown.
func (r RunReport) Summary() RunSummary {
	return RunSummary{
		RunID:            r.RunID,
		StartedAt:        r.StartedAt,
		FinishedAt:       r.FinishedAt,
		Accounts:         len(r.Accounts),
		TotalURLsTried:   r.TotalURLsTried,
		SuccessfulURLs:   r.SuccessfulURLs,
		URLsWithError429: r.URLsWithError429,
		OtherErrors:      r.OtherErrors,
	}
}
