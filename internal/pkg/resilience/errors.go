package resilience

import (
	"errors"
	"fmt"
	"time"
)

// ErrKind classifies request failures so callers can pattern-match
// retry-vs-abort policy instead of inspecting error strings.
type ErrKind int

const (
	KindUnknown ErrKind = iota
	KindTransport
	KindHTTP
	KindCircuitOpen
	KindQuotaExhausted
	KindValidation
	KindParse
)

func (k ErrKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindCircuitOpen:
		return "circuit_open"
	case KindQuotaExhausted:
		return "quota_exhausted"
	case KindValidation:
		return "validation"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by the resilient client.
type Error struct {
	Kind       ErrKind
	Provider   string
	StatusCode int           // set for KindHTTP
	RetryAfter time.Duration // set for KindCircuitOpen: remaining cool-down
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	base := fmt.Sprintf("%s [%s]: %s", e.Provider, e.Kind, e.Msg)
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return base
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the error kind, KindUnknown for foreign errors.
func KindOf(err error) ErrKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// IsQuotaExhausted reports whether err signals the daily cap was hit.
// Quota errors are non-retryable: the caller should skip the source.
func IsQuotaExhausted(err error) bool {
	return KindOf(err) == KindQuotaExhausted
}

// IsCircuitOpen reports whether err is a fast-fail from an open breaker.
func IsCircuitOpen(err error) bool {
	return KindOf(err) == KindCircuitOpen
}
