package rewrite

import "fmt"

// ErrorKind classifies rewrite failures.
type ErrorKind string

const (
	KindUnsupportedProvider ErrorKind = "unsupported_provider"
	KindProviderFailure     ErrorKind = "provider_failure"
)

// Error is a stage-level rewrite failure.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("rewrite via %s failed (%s)", e.Provider, e.Kind)
	}
	return fmt.Sprintf("rewrite via %s failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps a cause with its failure kind.
func NewError(kind ErrorKind, provider string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Err: err}
}
