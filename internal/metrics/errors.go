package metrics

import (
	"errors"
	"fmt"
)

// Kind classifies failures seen while turning model answers into metrics.
type Kind int

const (
	KindUnknown Kind = iota
	// KindMalformedResponse: an answer is not a JSON object. The answer is skipped.
	KindMalformedResponse
	// KindEmptyInput: no answers at all. Aggregation still returns zero metrics.
	KindEmptyInput
	// KindUpstreamFailure: a backend call failed. The collector substitutes a fallback.
	KindUpstreamFailure
	// KindContract: the caller broke an API contract, e.g. an identity without variants.
	KindContract
)

func (k Kind) String() string {
	switch k {
	case KindMalformedResponse:
		return "malformed_response"
	case KindEmptyInput:
		return "empty_input"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindContract:
		return "contract_violation"
	default:
		return "unknown"
	}
}

// Error carries a Kind plus the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrMalformedResponse) works
// regardless of Op and cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}
	ErrEmptyInput        = &Error{Kind: KindEmptyInput}
	ErrUpstreamFailure   = &Error{Kind: KindUpstreamFailure}
	ErrNoVariants        = &Error{Kind: KindContract, Err: errors.New("identity has no name variants")}
)

// KindOf returns the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UpstreamFailure wraps a backend error so callers can tell it apart from local failures.
func UpstreamFailure(op string, err error) error {
	return &Error{Kind: KindUpstreamFailure, Op: op, Err: err}
}
