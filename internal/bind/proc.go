package bind

import (
	"log/slog"
	"quill/internal/args"
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/object"
	"quill/internal/token"
	"strings"
)

const (
	StatusOK          = 0
	StatusBindFailure = 2
)

// OutParamPrefix is prepended to a Ref param's name. The callee then binds
// __y rather than y, so y in a calling frame can never be the alias itself.
const OutParamPrefix = "__"

// AliasSafeName is the name a Ref param is bound under.
func AliasSafeName(param string) string {
	return OutParamPrefix + param
}

// BindProcArgs binds argv and the typed argument list to proc's signature in
// the current frame, which the caller has already pushed. Failures are
// reported through sink, blamed on arg0Loc, and turned into StatusBindFailure.
func BindProcArgs(
	proc *object.Proc,
	argv []string,
	arg0Loc token.Token,
	argList *ast.ArgList,
	mem *object.Mem,
	sink diag.Sink,
	ev args.Evaluator,
) int {
	switch sig := proc.Decl.Sig.(type) {
	case *ast.OpenSig:
		return StatusOK
	case *ast.ClosedSig:
		if err := bindClosed(proc, sig, argv, argList, mem, ev); err != nil {
			return reportBindError(err, arg0Loc, sink)
		}
		return StatusOK
	default:
		panic(&diag.AssertionError{Msg: "unhandled proc signature"})
	}
}

func bindClosed(
	proc *object.Proc,
	sig *ast.ClosedSig,
	argv []string,
	argList *ast.ArgList,
	mem *object.Mem,
	ev args.Evaluator,
) error {
	r, err := args.FromArgv(argv, argList, ev)
	if err != nil {
		return err
	}

	nwords := r.NumWords()
	for i, p := range sig.WordParams {
		var val object.Object

		// proc p(out Ref)
		isOutParam := p.IsRef()
		paramName := p.Name

		if i >= nwords {
			if p.DefaultVal == nil {
				_, err := r.Word()
				return err
			}
			diag.Assert(!isOutParam, "out param %q cannot have a default value", p.Name)

			val, err = wordDefault(proc, i, p, ev)
			if err != nil {
				return err
			}
		} else {
			argStr, err := r.Word()
			if err != nil {
				return err
			}

			// myproc :arg binds __p to 'arg': the prefix is added to the
			// param and removed from the arg.
			if isOutParam {
				paramName = AliasSafeName(paramName)
				if !strings.HasPrefix(argStr, token.RefSigil) {
					return diag.RefArgSyntax(p.Name, argStr, p.BlameTok)
				}
				argStr = strings.TrimPrefix(argStr, token.RefSigil)
			}
			val = &object.String{Value: argStr}
		}

		var flags object.SetFlags
		if isOutParam {
			flags = object.SetNameref
		}
		if err := mem.SetValue(object.LValue{Name: paramName, BlameTok: p.BlameTok}, val, object.LocalOnly, flags); err != nil {
			return err
		}
	}

	if rw := sig.RestOfWords; rw != nil {
		val := object.StringList(r.RestWords())
		if err := mem.SetValue(object.LValue{Name: rw.Name, BlameTok: rw.BlameTok}, val, object.LocalOnly, 0); err != nil {
			return err
		}
	}

	npos := r.NumPos()
	for i, p := range sig.PosParams {
		var val object.Object
		if i >= npos && p.DefaultVal != nil {
			// Evaluated on every call that omits the argument.
			slog.Debug("evaluating default", slog.String("param", p.Name))
			val, err = ev.EvalExpr(p.DefaultVal, p.BlameTok)
		} else {
			val, err = r.PosValue()
		}
		if err != nil {
			return err
		}
		if err := mem.SetValue(object.LValue{Name: p.Name, BlameTok: p.BlameTok}, val, object.LocalOnly, 0); err != nil {
			return err
		}
	}

	if rp := sig.RestOfPos; rp != nil {
		val := &object.List{Elements: r.RestPos()}
		if err := mem.SetValue(object.LValue{Name: rp.Name, BlameTok: rp.BlameTok}, val, object.LocalOnly, 0); err != nil {
			return err
		}
	}

	for _, p := range sig.NamedParams {
		var dflt object.Object
		if p.DefaultVal != nil && !r.HasNamed(p.Name) {
			slog.Debug("evaluating default", slog.String("param", p.Name))
			dflt, err = ev.EvalExpr(p.DefaultVal, p.BlameTok)
			if err != nil {
				return err
			}
		}
		val, err := r.NamedValue(p.Name, dflt)
		if err != nil {
			return err
		}
		if err := mem.SetValue(object.LValue{Name: p.Name, BlameTok: p.BlameTok}, val, object.LocalOnly, 0); err != nil {
			return err
		}
	}

	if rn := sig.RestOfNamed; rn != nil {
		val := &object.Dict{Pairs: r.RestNamed()}
		if err := mem.SetValue(object.LValue{Name: rn.Name, BlameTok: rn.BlameTok}, val, object.LocalOnly, 0); err != nil {
			return err
		}
	}

	if bp := sig.BlockParam; bp != nil {
		b, err := r.Block()
		if err != nil {
			return err
		}
		if err := mem.SetValue(object.LValue{Name: bp.Name, BlameTok: bp.BlameTok}, &object.Command{Block: b}, object.LocalOnly, 0); err != nil {
			return err
		}
	}

	return r.Done()
}

// wordDefault returns the declaration-time default of word param i. Procs
// built without precomputed defaults evaluate the expression now.
func wordDefault(proc *object.Proc, i int, p *ast.Param, ev args.Evaluator) (object.Object, error) {
	if i < len(proc.Defaults) && proc.Defaults[i] != nil {
		return proc.Defaults[i], nil
	}
	return ev.EvalExpr(p.DefaultVal, p.BlameTok)
}
