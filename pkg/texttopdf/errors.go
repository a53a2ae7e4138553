package texttopdf

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure by the stage that produced it.
type Kind int

const (
	KindMalformedEvent Kind = iota + 1
	KindRetrieval
	KindDecode
	KindRender
	KindSerialize
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindMalformedEvent:
		return "malformed event"
	case KindRetrieval:
		return "retrieval failed"
	case KindDecode:
		return "decode failed"
	case KindRender:
		return "render failed"
	case KindSerialize:
		return "serialize failed"
	case KindStore:
		return "store failed"
	default:
		return "unknown failure"
	}
}

// Error types
var (
	// ErrMalformedEvent matches any KindMalformedEvent error
	ErrMalformedEvent = &Error{Kind: KindMalformedEvent}

	// ErrRetrieval matches any KindRetrieval error
	ErrRetrieval = &Error{Kind: KindRetrieval}

	// ErrDecode matches any KindDecode error
	ErrDecode = &Error{Kind: KindDecode}

	// ErrRender matches any KindRender error
	ErrRender = &Error{Kind: KindRender}

	// ErrSerialize matches any KindSerialize error
	ErrSerialize = &Error{Kind: KindSerialize}

	// ErrStore matches any KindStore error
	ErrStore = &Error{Kind: KindStore}

	// ErrObjectNotFound is returned by storage backends when a key does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned by Buckets implementations for unknown buckets
	ErrBucketNotFound = errors.New("bucket not found")
)

// Error is the single error type produced by the conversion pipeline
type Error struct {
	Kind Kind
	Op   string
	Ref  ObjectRef
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Ref.Key != "" {
		msg = fmt.Sprintf("%s for %s", msg, e.Ref)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so the
// package-level sentinels match through errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, op string, ref ObjectRef, err error) *Error {
	return &Error{Kind: kind, Op: op, Ref: ref, Err: err}
}
