package object

import (
	"fmt"
	"quill/internal/token"
)

type SignalKind int

const (
	// Normal means the body ran off its end without an explicit return.
	Normal SignalKind = iota
	// ValueReturn carries the value of an explicit `return`.
	ValueReturn
	// IntSignal carries an integer control code such as a proc's exit status.
	IntSignal
)

func (k SignalKind) String() string {
	switch k {
	case ValueReturn:
		return "ValueReturn"
	case IntSignal:
		return "IntSignal"
	default:
		return "Normal"
	}
}

// Signal is how a body finished executing.
type Signal struct {
	Kind  SignalKind
	Value Object
	Code  int
	Token token.Token // the statement that raised it
}

var Completed = Signal{Kind: Normal}

func Return(val Object, tok token.Token) Signal {
	return Signal{Kind: ValueReturn, Value: val, Token: tok}
}

func Code(code int, tok token.Token) Signal {
	return Signal{Kind: IntSignal, Code: code, Token: tok}
}

func (s Signal) String() string {
	switch s.Kind {
	case ValueReturn:
		return fmt.Sprintf("ValueReturn(%s)", s.Value.Inspect())
	case IntSignal:
		return fmt.Sprintf("IntSignal(%d)", s.Code)
	default:
		return "Normal"
	}
}
