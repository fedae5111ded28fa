package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation policy: input errors are the
// caller's fault, transient ones may succeed on a re-run, parse errors
// degrade to the empty sentinel, storage errors keep the payload alive
// for out-of-band recovery, and everything else is internal.
type Kind int

const (
	KindInternal Kind = iota
	KindInput
	KindTransient
	KindParse
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTransient:
		return "transient"
	case KindParse:
		return "parse"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error carries a kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a kind and operation name.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of the outermost classified error in err's
// chain, or KindInternal when nothing in the chain is classified.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
