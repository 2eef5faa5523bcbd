package fetch

import "fmt"

// ErrorKind classifies fetch failures. The orchestrator treats every kind
// the same way; the kind exists for logs and tests.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindRender    ErrorKind = "render"
	KindTimeout   ErrorKind = "timeout"
)

// Error is a stage-level fetch failure.
type Error struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps a cause with its failure kind.
func NewError(kind ErrorKind, url string, err error) *Error {
	return &Error{Kind: kind, URL: url, Err: err}
}
