package model

import "encoding/json"

// Status is the terminal classification of one URL submission.
type Status string

const (
	StatusSuccess          Status = "success"
	StatusRateLimited      Status = "rate_limited"
	StatusError            Status = "error"
	StatusTransientFailure Status = "transient_failure"
)

const (
	// CodeRateLimited is the error code the notification API uses for quota rejections.
	CodeRateLimited = 429
	// CodeRetriesExhausted marks a submission that kept failing at the transport level.
	CodeRetriesExhausted = 500
	// MessageRetriesExhausted accompanies CodeRetriesExhausted.
	MessageRetriesExhausted = "Server Disconnected after multiple retries"
)

// IsOtherError reports whether s is counted as an "other error".
// Transient failures are a sub-kind of other errors.
func (s Status) IsOtherError() bool {
	return s == StatusError || s == StatusTransientFailure
}

// Outcome is the result of one URL submission, after any retries.
type Outcome struct {
	URL      string          `json:"url"`
	Status   Status          `json:"status"`
	Code     int             `json:"code,omitempty"`
	Message  string          `json:"message,omitempty"`
	Attempts int             `json:"attempts,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}
