package bind

import (
	"fmt"
	"log/slog"
	"quill/internal/args"
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/object"
)

// Executor runs a callable body once and reports how it finished.
type Executor interface {
	Execute(body *ast.Block) (object.Signal, error)
}

// UserFunc binds call arguments for a user-defined function and runs it.
type UserFunc struct {
	Func *object.Func
	mem  *object.Mem
	exec Executor
}

func NewUserFunc(fn *object.Func, mem *object.Mem, exec Executor) *UserFunc {
	return &UserFunc{Func: fn, mem: mem, exec: exec}
}

// Call checks arity, pushes a frame over the closure, binds parameters and
// executes the body. The frame is popped on every exit path.
//
// Named parameters have no defaults: exactly the declared named params must
// be supplied.
func (f *UserFunc) Call(r *args.Reader) (object.Object, error) {
	node := f.Func.Decl
	name := f.Func.Name

	// Arity errors point at the 'func' keyword; the reader has no call-site location per argument.
	blame := node.Keyword

	posArgs := r.RestPos()
	numArgs := len(posArgs)
	numParams := len(node.PosParams)

	if node.RestOfPos != nil {
		if numArgs < numParams {
			return nil, diag.PosArity(name, numParams, numArgs, true, blame)
		}
	} else if numArgs != numParams {
		return nil, diag.PosArity(name, numParams, numArgs, false, blame)
	}

	namedArgs := r.RestNamed()
	if len(namedArgs) != len(node.NamedParams) {
		return nil, diag.NamedArity(name, len(node.NamedParams), len(namedArgs), blame)
	}
	for _, p := range node.NamedParams {
		if _, ok := namedArgs[p.Name]; !ok {
			return nil, diag.MissingNamed(p.Name, blame)
		}
	}

	if err := r.Done(); err != nil {
		return nil, err
	}

	release := f.mem.PushFuncCall(name, f.Func.Closure)
	defer release()

	for i, p := range node.PosParams {
		if err := f.mem.SetValue(object.LValue{Name: p.Name, BlameTok: p.BlameTok}, posArgs[i], object.LocalOnly, 0); err != nil {
			return nil, err
		}
	}

	if rp := node.RestOfPos; rp != nil {
		rest := &object.List{Elements: append([]object.Object{}, posArgs[numParams:]...)}
		if err := f.mem.SetValue(object.LValue{Name: rp.Name, BlameTok: rp.BlameTok}, rest, object.LocalOnly, 0); err != nil {
			return nil, err
		}
	}

	for _, p := range node.NamedParams {
		if err := f.mem.SetValue(object.LValue{Name: p.Name, BlameTok: p.BlameTok}, namedArgs[p.Name], object.LocalOnly, 0); err != nil {
			return nil, err
		}
	}

	slog.Debug("calling func",
		slog.String("name", name),
		slog.Int("positional", numArgs),
		slog.Int("named", len(namedArgs)))

	sig, err := f.exec.Execute(node.Body)
	if err != nil {
		return nil, err
	}

	switch sig.Kind {
	case object.ValueReturn:
		return sig.Value, nil
	case object.IntSignal:
		// Control codes belong to procs.
		panic(&diag.AssertionError{Msg: fmt.Sprintf("IntSignal(%d) escaped func %s", sig.Code, name)})
	default:
		return object.NULL, nil // implicit return
	}
}
