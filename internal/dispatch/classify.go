package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/samims/indexer/internal/model"
	"github.com/samims/indexer/internal/notifier"
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Classify turns a raw submission result into an Outcome.
//
// A payload with an "error" object is RateLimited when error.code is 429 and
// an OtherError for any other code. A payload without one is a Success.
// Bodies that are not JSON objects fall back to the HTTP status.
func Classify(res notifier.Result) model.Outcome {
	out := model.Outcome{URL: res.URL, Attempts: res.Attempts}

	if res.Err != nil {
		if errors.Is(res.Err, notifier.ErrRetriesExhausted) {
			out.Status = model.StatusTransientFailure
			out.Code = model.CodeRetriesExhausted
			out.Message = model.MessageRetriesExhausted
			return out
		}
		out.Status = model.StatusError
		out.Message = res.Err.Error()
		return out
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		out.Response = quote(res.Body)
		out.Code = res.StatusCode
		out.Message = http.StatusText(res.StatusCode)
		if res.StatusCode == http.StatusTooManyRequests {
			out.Status = model.StatusRateLimited
		} else {
			out.Status = model.StatusError
		}
		return out
	}
	out.Response = json.RawMessage(res.Body)

	raw, ok := payload["error"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		out.Status = model.StatusSuccess
		return out
	}

	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err != nil {
		out.Status = model.StatusError
		out.Message = "unrecognised error object"
		return out
	}
	out.Code = apiErr.Code
	out.Message = apiErr.Message
	if apiErr.Code == model.CodeRateLimited {
		out.Status = model.StatusRateLimited
	} else {
		out.Status = model.StatusError
	}
	return out
}

func quote(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	b, _ := json.Marshal(string(body))
	return b
}
