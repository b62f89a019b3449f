package model

import "time"

const (
	EventRunCompleted   = "run.completed"
	EventURLRateLimited = "url.rate_limited"
)

// Event is published to the events topic so that downstream consumers can
// reschedule rate-limited URLs or track runs.
type Event struct {
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"`
	Account   int       `json:"account,omitempty"`
	URL       string    `json:"url,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
