package object

import (
	"log/slog"
	"quill/internal/diag"
	"quill/internal/token"
)

type ScopeLevel int

const (
	// LocalOnly writes to the innermost frame and never walks outward.
	LocalOnly ScopeLevel = iota
	// GlobalOnly writes to the bottom frame.
	GlobalOnly
)

type SetFlags int

const (
	// SetNameref marks the binding as an alias: its String value names a
	// variable in a calling frame.
	SetNameref SetFlags = 1 << iota
	// ClearNameref overwrites an alias binding instead of writing through it.
	ClearNameref
)

const maxNamerefHops = 64

// LValue is a binding target: a name and where it was declared.
type LValue struct {
	Name     string
	BlameTok token.Token
}

// Mem is the frame stack. The bottom frame is global and is never popped.
type Mem struct {
	stack []*Environment
}

func NewMem() *Mem {
	return &Mem{stack: []*Environment{NewEnvironment("global")}}
}

func (m *Mem) Global() *Environment { return m.stack[0] }

func (m *Mem) Current() *Environment { return m.stack[len(m.stack)-1] }

func (m *Mem) Depth() int { return len(m.stack) }

// PushFuncCall pushes a private frame enclosed by the function's closure.
// The returned release pops it and must be called exactly once, normally deferred.
func (m *Mem) PushFuncCall(name string, closure *Environment) (release func()) {
	if closure == nil {
		closure = m.Global()
	}
	return m.push(NewEnclosedEnvironment("func "+name, closure))
}

// PushProcCall pushes a proc frame. Free names resolve through the global frame;
// callers' locals are reachable only through namerefs.
func (m *Mem) PushProcCall(name string) (release func()) {
	return m.push(NewEnclosedEnvironment("proc "+name, m.Global()))
}

func (m *Mem) push(env *Environment) func() {
	m.stack = append(m.stack, env)
	depth := len(m.stack)
	slog.Debug("push stack frame",
		slog.String("frame", env.Name),
		slog.Int("stack-size", depth))

	released := false
	return func() {
		diag.Assert(!released, "frame %q released twice", env.Name)
		released = true
		diag.Assert(len(m.stack) == depth && m.Current() == env,
			"frame %q popped out of order (stack-size %d, expected %d)", env.Name, len(m.stack), depth)
		m.stack = m.stack[:depth-1]
		slog.Debug("pop stack frame",
			slog.String("frame", env.Name),
			slog.Int("stack-size", len(m.stack)))
	}
}

// SetValue writes a binding. With SetNameref the value must be a String naming
// the aliased variable. Writing to an existing nameref without ClearNameref
// writes through it to the variable it names.
func (m *Mem) SetValue(lv LValue, val Object, which ScopeLevel, flags SetFlags) error {
	idx := len(m.stack) - 1
	if which == GlobalOnly {
		idx = 0
	}
	env := m.stack[idx]

	if flags&SetNameref != 0 {
		if _, ok := val.(*String); !ok {
			return diag.New(diag.Type, lv.BlameTok, "nameref %q must be bound to a string, got %s", lv.Name, val.Type())
		}
		env.define(lv.Name, val, lv.BlameTok, true)
		return nil
	}

	if b, ok := env.GetLocalBinding(lv.Name); ok && b.IsNameref && flags&ClearNameref == 0 {
		targetEnv, targetName, err := m.resolveNameref(idx, lv.Name, b)
		if err != nil {
			return err
		}
		targetEnv.define(targetName, val, lv.BlameTok, false)
		return nil
	}

	env.define(lv.Name, val, lv.BlameTok, false)
	return nil
}

// GetValue looks name up in the current frame and its outers, following
// namerefs wherever the binding is found.
func (m *Mem) GetValue(name string) (Object, bool) {
	for env := m.Current(); env != nil; env = env.Outer {
		b, ok := env.GetLocalBinding(name)
		if !ok {
			continue
		}
		if !b.IsNameref {
			return b.Value, true
		}
		return m.readNameref(env, name, b)
	}
	return nil, false
}

// readNameref reads through an alias bound in env. An alias in a frame that is
// no longer on the stack has nothing to refer to.
func (m *Mem) readNameref(env *Environment, name string, b *Binding) (Object, bool) {
	idx := m.indexOf(env)
	if idx < 0 {
		return nil, false
	}
	targetEnv, targetName, err := m.resolveNameref(idx, name, b)
	if err != nil {
		return nil, false
	}
	tb, ok := targetEnv.GetLocalBinding(targetName)
	if !ok {
		return nil, false
	}
	return tb.Value, true
}

func (m *Mem) indexOf(env *Environment) int {
	for i := len(m.stack) - 1; i >= 0; i-- {
		if m.stack[i] == env {
			return i
		}
	}
	return -1
}

// Suspend cuts the stack back to depth frames so that code runs as if the
// frames above had not been pushed yet. The returned resume puts them back
// and must be called before any of them is released.
func (m *Mem) Suspend(depth int) (resume func()) {
	diag.Assert(depth >= 1 && depth <= len(m.stack), "cannot suspend to depth %d (stack-size %d)", depth, len(m.stack))
	saved := append([]*Environment(nil), m.stack[depth:]...)
	m.stack = m.stack[:depth]

	return func() {
		diag.Assert(len(m.stack) == depth, "resume at stack-size %d, expected %d", len(m.stack), depth)
		m.stack = append(m.stack, saved...)
	}
}

// IsNameref reports whether name is bound as an alias in the current frame.
func (m *Mem) IsNameref(name string) bool {
	b, ok := m.Current().GetLocalBinding(name)
	return ok && b.IsNameref
}

// resolveNameref finds the frame and name an alias in stack[idx] refers to.
// Resolution starts one frame below the alias, so an alias can never name itself.
// When no frame defines the target, the caller frame owns the new binding.
func (m *Mem) resolveNameref(idx int, name string, b *Binding) (*Environment, string, error) {
	for hops := 0; hops < maxNamerefHops; hops++ {
		target := b.Value.(*String).Value
		if idx == 0 {
			return nil, "", diag.New(diag.Runtime, b.Loc, "nameref %q has no calling frame to refer to", name)
		}

		found := -1
		for j := idx - 1; j >= 0; j-- {
			if _, ok := m.stack[j].GetLocalBinding(target); ok {
				found = j
				break
			}
		}
		if found < 0 {
			return m.stack[idx-1], target, nil
		}

		tb, _ := m.stack[found].GetLocalBinding(target)
		if !tb.IsNameref {
			return m.stack[found], target, nil
		}
		idx, name, b = found, target, tb
	}
	return nil, "", diag.New(diag.Runtime, b.Loc, "circular nameref %q", name)
}
