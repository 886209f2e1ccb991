package diag

import (
	"errors"
	"fmt"
	"quill/internal/token"
	"strings"
)

type Kind int

const (
	Runtime Kind = iota
	Arity
	RefArg
	MissingArg
	ExtraArg
	Type
)

func (k Kind) String() string {
	switch k {
	case Arity:
		return "arity"
	case RefArg:
		return "ref-arg"
	case MissingArg:
		return "missing-arg"
	case ExtraArg:
		return "extra-arg"
	case Type:
		return "type"
	default:
		return "runtime"
	}
}

// Error is a failure that carries the location to blame.
type Error struct {
	Kind     Kind
	Msg      string
	Location token.Token
}

func (e *Error) Error() string { return e.Msg }

// SetLocation replaces the blame location.
func (e *Error) SetLocation(loc token.Token) {
	e.Location = loc
}

func New(kind Kind, loc token.Token, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...), Location: loc}
}

// AsError extracts the located error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func PosArity(name string, want, got int, atLeast bool, loc token.Token) *Error {
	if atLeast {
		return New(Arity, loc, "%s() expects at least %d arguments but %d were given", name, want, got)
	}
	return New(Arity, loc, "%s() expects %d arguments but %d were given", name, want, got)
}

func NamedArity(name string, want, got int, loc token.Token) *Error {
	return New(Arity, loc, "%s() expects %d named arguments but %d were given", name, want, got)
}

func RefArgSyntax(param, arg string, loc token.Token) *Error {
	return New(RefArg, loc, "Ref param %q expected arg starting with colon %s but got %q", param, token.RefSigil, arg)
}

func MissingWord(want, got int, loc token.Token) *Error {
	return New(MissingArg, loc, "expected at least %d words, got %d", want, got)
}

func MissingPos(want, got int, loc token.Token) *Error {
	return New(MissingArg, loc, "expected at least %d positional args, got %d", want, got)
}

func MissingNamed(name string, loc token.Token) *Error {
	return New(MissingArg, loc, "expected named arg %q", name)
}

func MissingBlock(loc token.Token) *Error {
	return New(MissingArg, loc, "no block argument supplied")
}

func ExtraWords(n int, loc token.Token) *Error {
	return New(ExtraArg, loc, "got %d extra words", n)
}

func ExtraPos(n int, loc token.Token) *Error {
	return New(ExtraArg, loc, "got %d extra positional args", n)
}

func ExtraNamed(names []string, loc token.Token) *Error {
	return New(ExtraArg, loc, "got unexpected named args: %s", strings.Join(names, ", "))
}

func ExtraBlock(loc token.Token) *Error {
	return New(ExtraArg, loc, "got unexpected block argument")
}

// AssertionError is an internal-consistency failure. It is raised with panic,
// never returned, since no caller can recover from it meaningfully.
type AssertionError struct {
	Msg string
}

func (a *AssertionError) Error() string { return "assertion failed: " + a.Msg }

// Assert panics with an *AssertionError when cond is false.
func Assert(cond bool, format string, a ...interface{}) {
	if !cond {
		panic(&AssertionError{Msg: fmt.Sprintf(format, a...)})
	}
}
