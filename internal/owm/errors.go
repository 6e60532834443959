package owm

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// FailureKind classifies why a fetch produced no result.
type FailureKind int

const (
	KindUnknown FailureKind = iota
	// KindTransport covers request construction, network and body read errors.
	KindTransport
	// KindStatus is a response outside the 2xx range.
	KindStatus
	// KindParse is a body that is not JSON or lacks an expected field.
	KindParse
)

func (k FailureKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError is returned by every Client fetch that does not yield a record.
type FetchError struct {
	Endpoint   string
	Kind       FailureKind
	StatusCode int
	// Message is the API's own error text for status failures, when it sent one.
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		msg := fmt.Sprintf("%s: status %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
		if e.Message != "" {
			msg += ": " + e.Message
		}
		return msg
	default:
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf reports the failure kind carried by err, or KindUnknown.
func KindOf(err error) FailureKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// redact drops the *url.Error wrapper, whose message embeds the full request
// URL including the appid query parameter.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s request: %w", ue.Op, ue.Err)
	}
	return err
}
