package interp

import (
	"context"
	"log/slog"
	"quill/internal/ast"
	"quill/internal/bind"
	"quill/internal/diag"
	"quill/internal/object"
	"quill/internal/token"
	"quill/internal/trace"
)

const (
	StatusRuntimeError = 1
	StatusNotFound     = 127
)

// Interp evaluates expressions and executes bodies for user-defined funcs and
// procs. It is single-threaded: calls nest strictly on one Mem.
type Interp struct {
	Mem     *object.Mem
	Sink    diag.Sink
	Journal trace.Journal
	Context context.Context

	lastStatus int
}

func New(sink diag.Sink, journal trace.Journal) *Interp {
	if journal == nil {
		journal = trace.Nop{}
	}
	return &Interp{
		Mem:     object.NewMem(),
		Sink:    sink,
		Journal: journal,
		Context: context.Background(),
	}
}

// LastStatus is the status of the most recent proc invocation.
func (in *Interp) LastStatus() int { return in.lastStatus }

// DeclareFunc binds a function value in the current frame, closing over it.
func (in *Interp) DeclareFunc(decl *ast.FuncDecl) error {
	fn := &object.Func{Name: decl.Name, Decl: decl, Closure: in.Mem.Current()}
	return in.Mem.SetValue(object.LValue{Name: decl.Name, BlameTok: decl.Keyword}, fn, object.LocalOnly, 0)
}

// DeclareProc binds a proc value in the current frame. Word-param defaults
// are evaluated once, here.
func (in *Interp) DeclareProc(decl *ast.ProcDecl) error {
	proc := &object.Proc{Name: decl.Name, Decl: decl}

	if sig, ok := decl.Sig.(*ast.ClosedSig); ok {
		proc.Defaults = make([]object.Object, len(sig.WordParams))
		for i, p := range sig.WordParams {
			if p.DefaultVal == nil {
				continue
			}
			if p.IsRef() {
				return diag.New(diag.Type, p.BlameTok, "out param %q cannot have a default value", p.Name)
			}
			val, err := in.EvalExpr(p.DefaultVal, p.BlameTok)
			if err != nil {
				return err
			}
			if _, ok := val.(*object.String); !ok {
				return diag.New(diag.Type, p.BlameTok, "default for word param %q must be a string, got %s", p.Name, val.Type())
			}
			proc.Defaults[i] = val
		}
	}

	return in.Mem.SetValue(object.LValue{Name: decl.Name, BlameTok: decl.Keyword}, proc, object.LocalOnly, 0)
}

// RunProc invokes a proc named by cmd.Words[0]. Binding failures and runtime
// errors are reported through the sink and returned as a status.
func (in *Interp) RunProc(cmd *ast.SimpleCommand) (status int) {
	name := cmd.Words[0]
	defer func() {
		in.lastStatus = status
	}()

	val, ok := in.Mem.GetValue(name)
	proc, isProc := val.(*object.Proc)
	if !ok || !isProc {
		in.report(diag.New(diag.Runtime, cmd.Token, "%s: command not found", name))
		in.record(trace.KindProc, name, StatusNotFound, "command not found", cmd.Token)
		return StatusNotFound
	}

	caller := &callSite{in: in, depth: in.Mem.Depth()}
	release := in.Mem.PushProcCall(name)
	defer release()

	errs := &lastError{inner: in.Sink}
	status = bind.BindProcArgs(proc, cmd.Words[1:], cmd.Token, cmd.Args, in.Mem, errs, caller)
	if status != bind.StatusOK {
		in.record(trace.KindProc, name, status, errs.msg(), cmd.Token)
		return status
	}

	sig, err := in.Execute(proc.Decl.Body)
	if err != nil {
		de := in.located(err, cmd.Token)
		in.report(de)
		in.record(trace.KindProc, name, StatusRuntimeError, de.Msg, de.Location)
		return StatusRuntimeError
	}

	switch sig.Kind {
	case object.IntSignal:
		status = sig.Code
	case object.ValueReturn:
		de := diag.New(diag.Runtime, sig.Token, "proc %s: return with a value is only allowed in funcs", name)
		in.report(de)
		in.record(trace.KindProc, name, StatusRuntimeError, de.Msg, de.Location)
		return StatusRuntimeError
	default:
		status = bind.StatusOK
	}

	slog.Debug("proc finished", slog.String("name", name), slog.Int("status", status))
	in.record(trace.KindProc, name, status, "", cmd.Token)
	return status
}

// CallFunc evaluates the call's arguments and runs the function through the binder.
func (in *Interp) CallFunc(ce *ast.CallExpression) (object.Object, error) {
	name := ce.Function.Value
	val, ok := in.Mem.GetValue(name)
	if !ok {
		return nil, diag.New(diag.Runtime, ce.Token, "undefined function %s", name)
	}
	fn, ok := val.(*object.Func)
	if !ok {
		return nil, diag.New(diag.Type, ce.Token, "%s is a %s, not a function", name, val.Type())
	}

	r, err := in.evalCallArgs(ce)
	if err != nil {
		return nil, err
	}

	result, err := bind.NewUserFunc(fn, in.Mem, in).Call(r)
	if err != nil {
		de := in.located(err, ce.Token)
		in.record(trace.KindFunc, name, StatusRuntimeError, de.Msg, de.Location)
		return nil, de
	}
	in.record(trace.KindFunc, name, bind.StatusOK, "", ce.Token)
	return result, nil
}

func (in *Interp) report(err *diag.Error) {
	if in.Sink != nil {
		in.Sink.Report(err)
	}
}

// located converts err into a located error, blaming loc when it has no location.
func (in *Interp) located(err error, loc token.Token) *diag.Error {
	if de, ok := diag.AsError(err); ok {
		if !de.Location.IsValid() {
			de.SetLocation(loc)
		}
		return de
	}
	return diag.New(diag.Runtime, loc, "%s", err.Error())
}

func (in *Interp) record(kind trace.Kind, name string, status int, msg string, loc token.Token) {
	ev := trace.Event{
		Callable: name,
		Kind:     kind,
		Status:   status,
		Err:      msg,
		Position: loc.Position,
		Depth:    in.Mem.Depth(),
	}
	if err := in.Journal.Record(in.Context, ev); err != nil {
		slog.Warn("failed to record call event",
			slog.String("callable", name),
			slog.Any("error", err))
	}
}

// callSite evaluates a proc call's argument and default expressions in the
// scope where the call is written, while the callee frame is already pushed.
type callSite struct {
	in    *Interp
	depth int
}

func (c *callSite) EvalExpr(expr ast.Expression, blame token.Token) (object.Object, error) {
	resume := c.in.Mem.Suspend(c.depth)
	defer resume()
	return c.in.EvalExpr(expr, blame)
}

// lastError forwards to the configured sink and remembers the message.
type lastError struct {
	inner diag.Sink
	last  *diag.Error
}

func (l *lastError) Report(err *diag.Error) {
	l.last = err
	if l.inner != nil {
		l.inner.Report(err)
	}
}

func (l *lastError) msg() string {
	if l.last == nil {
		return ""
	}
	return l.last.Msg
}
