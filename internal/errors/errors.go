package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrSourceUnavailable     = errors.New("url source unavailable")
	ErrCredentialUnavailable = errors.New("credential unavailable")
	ErrRunInProgress         = errors.New("run already in progress")
)

func NewInternal(format string, a ...interface{}) error {
	return fmt.Errorf("INTERNAL: "+format, a...)
}

func NewNotFound(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, a...)...)
}

func NewInvalidInput(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidInput}, a...)...)
}

func NewSourceUnavailable(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrSourceUnavailable}, a...)...)
}

func NewCredential(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrCredentialUnavailable}, a...)...)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

func IsRunInProgress(err error) bool {
	return errors.Is(err, ErrRunInProgress)
}

func IsCredential(err error) bool {
	return errors.Is(err, ErrCredentialUnavailable)
}
