package spec

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrorKind classifies specification errors.
type ErrorKind string

const (
	KindTableNotFound           ErrorKind = "TableNotFound"
	KindUnknownField            ErrorKind = "UnknownField"
	KindUnknownJoinField        ErrorKind = "UnknownJoinField"
	KindForeignKeyNotFound      ErrorKind = "ForeignKeyNotFound"
	KindAmbiguousForeignKey     ErrorKind = "AmbiguousForeignKey"
	KindInvalidUnwrap           ErrorKind = "InvalidUnwrap"
	KindMissingTypeOverride     ErrorKind = "MissingTypeOverride"
	KindConflictingJoinSpec     ErrorKind = "ConflictingJoinSpec"
	KindForUpdateNotSupported   ErrorKind = "ForUpdateNotSupported"
	KindInvalidAliasPlaceholder ErrorKind = "InvalidAliasPlaceholder"
	KindUnsupportedByDialect    ErrorKind = "UnsupportedByDialect"
	KindInvalidSpecification    ErrorKind = "InvalidSpecification"
)

// Sentinels matched by errors.Is against an *Error of the corresponding kind.
var (
	ErrTableNotFound           = errors.New("table not found")
	ErrUnknownField            = errors.New("unknown field")
	ErrUnknownJoinField        = errors.New("unknown join field")
	ErrForeignKeyNotFound      = errors.New("foreign key not found")
	ErrAmbiguousForeignKey     = errors.New("ambiguous foreign key")
	ErrInvalidUnwrap           = errors.New("invalid unwrap")
	ErrMissingTypeOverride     = errors.New("missing type override")
	ErrConflictingJoinSpec     = errors.New("conflicting join specification")
	ErrForUpdateNotSupported   = errors.New("for update not supported")
	ErrInvalidAliasPlaceholder = errors.New("invalid alias placeholder")
	ErrUnsupportedByDialect    = errors.New("unsupported by dialect")
	ErrInvalidSpecification    = errors.New("invalid specification")
)

var sentinels = map[ErrorKind]error{
	KindTableNotFound:           ErrTableNotFound,
	KindUnknownField:            ErrUnknownField,
	KindUnknownJoinField:        ErrUnknownJoinField,
	KindForeignKeyNotFound:      ErrForeignKeyNotFound,
	KindAmbiguousForeignKey:     ErrAmbiguousForeignKey,
	KindInvalidUnwrap:           ErrInvalidUnwrap,
	KindMissingTypeOverride:     ErrMissingTypeOverride,
	KindConflictingJoinSpec:     ErrConflictingJoinSpec,
	KindForUpdateNotSupported:   ErrForUpdateNotSupported,
	KindInvalidAliasPlaceholder: ErrInvalidAliasPlaceholder,
	KindUnsupportedByDialect:    ErrUnsupportedByDialect,
	KindInvalidSpecification:    ErrInvalidSpecification,
}

// Location is a breadcrumb into a specification tree, rooted at a statement.
type Location struct {
	Statement string
	parts     []string
}

// At starts a location at the named statement.
func At(statement string) Location {
	return Location{Statement: statement}
}

// Add returns a new location one step deeper. The receiver is not modified.
func (l Location) Add(part string) Location {
	return Location{Statement: l.Statement, parts: append(slices.Clip(l.parts), part)}
}

// Path renders the steps below the statement joined by " / ".
func (l Location) Path() string {
	return strings.Join(l.parts, " / ")
}

// Error is a specification error with the statement and location it was found at.
type Error struct {
	Statement string
	Location  string
	Kind      ErrorKind
	Message   string
	Err       error // underlying cause, if any
}

// Errorf builds an *Error of the given kind at loc.
func Errorf(loc Location, kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Statement: loc.Statement,
		Location:  loc.Path(),
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
	}
}

// Wrap builds an *Error of the given kind at loc, carrying err as its cause and
// message.
func Wrap(loc Location, kind ErrorKind, err error) *Error {
	e := Errorf(loc, kind, "%s", err.Error())
	e.Err = err
	return e
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "statement %q", e.Statement)
	if e.Location != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Location)
	}
	fmt.Fprintf(&sb, ": %s: %s", e.Kind, e.Message)
	return sb.String()
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && sentinel == target
}

func (e *Error) Unwrap() error { return e.Err }
