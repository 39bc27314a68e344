package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lysyi3m/blepo/app/video"
)

// Source fetches the current video list of a channel.
type Source interface {
	Fetch(ctx context.Context, channel video.Channel) ([]video.Video, error)
}

type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindStatus
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError is the failure returned by every Source.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int // set for KindStatus
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("HTTP %d from YouTube", e.StatusCode)
	case KindNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	default:
		return fmt.Sprintf("parse error: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NetworkError(err error) *FetchError {
	return &FetchError{Kind: KindNetwork, Err: err}
}

func StatusError(code int) *FetchError {
	return &FetchError{Kind: KindStatus, StatusCode: code}
}

func ParseError(err error) *FetchError {
	return &FetchError{Kind: KindParse, Err: err}
}

// IsNotFound reports whether err is a 404 status failure.
func IsNotFound(err error) bool {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}
	return fetchErr.Kind == KindStatus && fetchErr.StatusCode == http.StatusNotFound
}
