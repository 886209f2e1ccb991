package object

import (
	"log/slog"
	"quill/internal/token"
	"sort"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is one scope frame. Function frames link Outer to the closure
// they were defined in; proc frames link Outer to the global frame.
type Environment struct {
	ID       uint64
	Name     string
	Bindings map[string]*Binding
	Outer    *Environment
}

type Binding struct {
	Value     Object
	Loc       token.Token
	IsNameref bool
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment(name string) *Environment {
	return &Environment{
		ID:       nextEnvID(),
		Name:     name,
		Bindings: make(map[string]*Binding),
	}
}

// NewEnclosedEnvironment initializes a frame whose free names resolve through outer.
func NewEnclosedEnvironment(name string, outer *Environment) *Environment {
	slog.Debug("------ new env ------",
		slog.String("frame", name))
	env := NewEnvironment(name)
	env.Outer = outer
	return env
}

func (e *Environment) GetBinding(name string) (*Binding, bool) {
	binding, ok := e.Bindings[name]
	if ok {
		return binding, true
	}
	if e.Outer != nil {
		return e.Outer.GetBinding(name)
	}
	return nil, false
}

// GetLocalBinding returns a binding from this environment only (it does not walk outers).
func (e *Environment) GetLocalBinding(name string) (*Binding, bool) {
	binding, ok := e.Bindings[name]
	return binding, ok
}

func (e *Environment) define(name string, val Object, loc token.Token, isNameref bool) {
	e.Bindings[name] = &Binding{
		Value:     val,
		Loc:       loc,
		IsNameref: isNameref,
	}
	slog.Debug("binding value",
		slog.String("frame", e.Name),
		slog.String("name", name),
		slog.Any("type", val.Type()),
		slog.Bool("nameref", isNameref))
}

// Names lists the local binding names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.Bindings))
	for k := range e.Bindings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
