package notifier

import (
	"context"
	"errors"
	"io"
	"strings"
	"syscall"
)

// IsTransient reports whether err is a dropped or reset connection, the
// only failure class that is retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "server closed") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "transport connection broken")
}
