package mesh

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies mesh errors. Callers match on a kind with errors.Is and
// the package sentinels (ErrUnknownKey, ErrIllegalSwap, ...).
type Kind int

const (
	UnknownKey Kind = iota + 1
	DuplicateKey
	DegenerateFace
	InvariantViolation // internal check failed; a bug, not user error
	NotManifold
	NotTriangle
	IllegalSwap
	IllegalCollapse
	BoundaryForbidden
	AdjacentSplit
	Degenerate
	EmptyInput
	DuplicatePoint
	ConstraintUnreachable
	Skipped
)

func (k Kind) String() string {
	switch k {
	case UnknownKey:
		return "unknown key"
	case DuplicateKey:
		return "duplicate key"
	case DegenerateFace:
		return "degenerate face"
	case InvariantViolation:
		return "invariant violation"
	case NotManifold:
		return "not manifold"
	case NotTriangle:
		return "not a triangle"
	case IllegalSwap:
		return "illegal swap"
	case IllegalCollapse:
		return "illegal collapse"
	case BoundaryForbidden:
		return "boundary forbidden"
	case AdjacentSplit:
		return "adjacent split"
	case Degenerate:
		return "degenerate"
	case EmptyInput:
		return "empty input"
	case DuplicatePoint:
		return "duplicate point"
	case ConstraintUnreachable:
		return "constraint unreachable"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type returned by mesh operations and the algorithm
// packages built on them. Vertices and Faces name the handles involved so
// a failure can be reproduced.
type Error struct {
	Kind     Kind
	Op       string    // operation that failed, e.g. "swap edge"
	Vertices []Key     // vertex handles involved
	Faces    []FaceKey // face handles involved
	Detail   string
	Err      error // underlying cause, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("mesh: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if len(e.Vertices) > 0 {
		fmt.Fprintf(&b, " (vertices %v)", e.Vertices)
	}
	if len(e.Faces) > 0 {
		fmt.Fprintf(&b, " (faces %v)", e.Faces)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of the context attached.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnknownKey            = &Error{Kind: UnknownKey}
	ErrDuplicateKey          = &Error{Kind: DuplicateKey}
	ErrDegenerateFace        = &Error{Kind: DegenerateFace}
	ErrInvariantViolation    = &Error{Kind: InvariantViolation}
	ErrNotManifold           = &Error{Kind: NotManifold}
	ErrNotTriangle           = &Error{Kind: NotTriangle}
	ErrIllegalSwap           = &Error{Kind: IllegalSwap}
	ErrIllegalCollapse       = &Error{Kind: IllegalCollapse}
	ErrBoundaryForbidden     = &Error{Kind: BoundaryForbidden}
	ErrAdjacentSplit         = &Error{Kind: AdjacentSplit}
	ErrDegenerate            = &Error{Kind: Degenerate}
	ErrEmptyInput            = &Error{Kind: EmptyInput}
	ErrDuplicatePoint        = &Error{Kind: DuplicatePoint}
	ErrConstraintUnreachable = &Error{Kind: ConstraintUnreachable}
	ErrSkipped               = &Error{Kind: Skipped}
)

// IsSkipped reports whether err is a local-operator refusal that leaves the
// mesh unchanged and that iterative algorithms treat as "edge stays as is".
func IsSkipped(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case Skipped, IllegalSwap, IllegalCollapse, BoundaryForbidden, AdjacentSplit:
		return true
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func errUnknownVertex(op string, keys ...Key) *Error {
	return &Error{Kind: UnknownKey, Op: op, Vertices: keys}
}

func errUnknownFace(op string, f FaceKey) *Error {
	return &Error{Kind: UnknownKey, Op: op, Faces: []FaceKey{f}}
}

func errUnknownEdge(op string, u, v Key) *Error {
	return &Error{Kind: UnknownKey, Op: op, Vertices: []Key{u, v}, Detail: "no such edge"}
}
