package interp

import (
	"log/slog"
	"quill/internal/ast"
	"quill/internal/object"
	"quill/internal/token"
)

// Outcome is the result of one top-level statement.
type Outcome struct {
	Stmt   ast.Statement
	Value  object.Object
	Status int
	Err    error
}

// Load declares every func and proc of prog in the global frame.
func (in *Interp) Load(prog *ast.Program) error {
	for _, f := range prog.Funcs {
		if err := in.DeclareFunc(f); err != nil {
			return err
		}
	}
	for _, p := range prog.Procs {
		if err := in.DeclareProc(p); err != nil {
			return err
		}
	}
	slog.Debug("program loaded",
		slog.Int("funcs", len(prog.Funcs)),
		slog.Int("procs", len(prog.Procs)))
	return nil
}

// RunProgram loads prog and runs its top-level calls in order. Function
// errors are reported and turned into status 1; a failing statement does not
// stop the ones after it.
func (in *Interp) RunProgram(prog *ast.Program) ([]Outcome, error) {
	if err := in.Load(prog); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(prog.Calls))
	for _, stmt := range prog.Calls {
		outcomes = append(outcomes, in.runTopLevel(stmt))
	}
	return outcomes, nil
}

func (in *Interp) runTopLevel(stmt ast.Statement) Outcome {
	out := Outcome{Stmt: stmt}

	switch node := stmt.(type) {
	case *ast.SimpleCommand:
		out.Status = in.RunProc(node)
		return out

	case *ast.ExpressionStatement:
		val, err := in.EvalExpr(node.Expression, node.Token)
		if err != nil {
			de := in.located(err, node.Token)
			in.report(de)
			out.Err, out.Status = de, StatusRuntimeError
			return out
		}
		out.Value = val
		return out

	default:
		sig, done, err := in.execStatement(stmt)
		if err != nil {
			de := in.located(err, tokenOf(stmt))
			in.report(de)
			out.Err, out.Status = de, StatusRuntimeError
			return out
		}
		if done && sig.Kind == object.IntSignal {
			out.Status = sig.Code
		}
		if done && sig.Kind == object.ValueReturn {
			out.Value = sig.Value
		}
		return out
	}
}

func tokenOf(stmt ast.Statement) token.Token {
	switch node := stmt.(type) {
	case *ast.AssignStatement:
		return node.Token
	case *ast.ReturnStatement:
		return node.Token
	case *ast.ExitStatement:
		return node.Token
	case *ast.Block:
		return node.Token
	}
	return token.NoToken
}
