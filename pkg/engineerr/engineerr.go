// Package engineerr defines the engine's closed set of error kinds
// (spec.md §7), each a typed error wrapping an underlying cause so
// errors.As/errors.Is keep working through fmt.Errorf's "%w" chains —
// the same wrapping style the teacher's analyzer and executor packages
// use throughout, just given names instead of ad hoc fmt.Errorf text.
package engineerr

import "fmt"

// Kind is one of spec.md §7's closed error kinds. ArrowError becomes
// ColumnarError since this engine has no Arrow dependency to pass
// columnar failures through from.
type Kind int

const (
	ColumnarError Kind = iota
	IoError
	NoSuchField
	ColumnNotExists
	LogicalError
	NoSuchTable
	ParserError
	IntervalError
	PlanError
	NoMatchFunction
	NotSupported
	NotImplemented
	Others
)

func (k Kind) String() string {
	switch k {
	case ColumnarError:
		return "ColumnarError"
	case IoError:
		return "IoError"
	case NoSuchField:
		return "NoSuchField"
	case ColumnNotExists:
		return "ColumnNotExists"
	case LogicalError:
		return "LogicalError"
	case NoSuchTable:
		return "NoSuchTable"
	case ParserError:
		return "ParserError"
	case IntervalError:
		return "IntervalError"
	case PlanError:
		return "PlanError"
	case NoMatchFunction:
		return "NoMatchFunction"
	case NotSupported:
		return "NotSupported"
	case NotImplemented:
		return "NotImplemented"
	default:
		return "Other"
	}
}

// Error is an engine error tagged with one of the closed Kinds, plus
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a bare Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NoSuchTableError reports a catalog lookup miss by table name.
func NoSuchTableError(name string) *Error {
	return New(NoSuchTable, "no such table %q", name)
}

// ColumnNotExistsError reports an unresolvable column reference.
func ColumnNotExistsError(name string) *Error {
	return New(ColumnNotExists, "column %q does not exist", name)
}

// Is reports whether err is an *Error of the given kind, looking
// through any wrapping chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
