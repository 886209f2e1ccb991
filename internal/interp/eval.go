package interp

import (
	"quill/internal/args"
	"quill/internal/ast"
	"quill/internal/bind"
	"quill/internal/diag"
	"quill/internal/object"
	"quill/internal/token"
)

// EvalExpr evaluates expr in the current frame. blame is used when expr
// itself carries no usable location.
func (in *Interp) EvalExpr(expr ast.Expression, blame token.Token) (object.Object, error) {
	switch node := expr.(type) {
	case *ast.Null:
		return object.NULL, nil

	case *ast.Boolean:
		return object.NativeBool(node.Value), nil

	case *ast.IntegerLiteral:
		return &object.Integer{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.Identifier:
		val, ok := in.Mem.GetValue(node.Value)
		if !ok {
			return nil, diag.New(diag.Runtime, pick(node.Token, blame), "undefined variable %s", node.Value)
		}
		return val, nil

	case *ast.ListLiteral:
		elements := make([]object.Object, 0, len(node.Elements))
		for _, el := range node.Elements {
			v, err := in.EvalExpr(el, blame)
			if err != nil {
				return nil, err
			}
			elements = append(elements, v)
		}
		return &object.List{Elements: elements}, nil

	case *ast.DictLiteral:
		pairs := make(map[string]object.Object, len(node.Pairs))
		for k, e := range node.Pairs {
			v, err := in.EvalExpr(e, blame)
			if err != nil {
				return nil, err
			}
			pairs[k] = v
		}
		return &object.Dict{Pairs: pairs}, nil

	case *ast.InfixExpression:
		left, err := in.EvalExpr(node.Left, blame)
		if err != nil {
			return nil, err
		}
		right, err := in.EvalExpr(node.Right, blame)
		if err != nil {
			return nil, err
		}
		return in.evalInfix(node, left, right, blame)

	case *ast.CallExpression:
		return in.CallFunc(node)

	case *ast.Block:
		return &object.Command{Block: node}, nil

	default:
		return nil, diag.New(diag.Runtime, blame, "cannot evaluate %T", expr)
	}
}

func (in *Interp) evalInfix(node *ast.InfixExpression, left, right object.Object, blame token.Token) (object.Object, error) {
	loc := pick(node.Token, blame)
	if node.Operator != "+" {
		return nil, diag.New(diag.Runtime, loc, "unknown operator: %s", node.Operator)
	}

	switch l := left.(type) {
	case *object.Integer:
		if r, ok := right.(*object.Integer); ok {
			return &object.Integer{Value: l.Value + r.Value}, nil
		}
	case *object.String:
		if r, ok := right.(*object.String); ok {
			return &object.String{Value: l.Value + r.Value}, nil
		}
	case *object.List:
		if r, ok := right.(*object.List); ok {
			elements := append(append([]object.Object{}, l.Elements...), r.Elements...)
			return &object.List{Elements: elements}, nil
		}
	}
	return nil, diag.New(diag.Type, loc, "type mismatch: %s + %s", left.Type(), right.Type())
}

func (in *Interp) evalCallArgs(ce *ast.CallExpression) (*args.Reader, error) {
	var (
		pos   []object.Object
		named map[string]object.Object
		block *ast.Block
	)
	if al := ce.Args; al != nil {
		for _, e := range al.Pos {
			v, err := in.EvalExpr(e, ce.Token)
			if err != nil {
				return nil, err
			}
			pos = append(pos, v)
		}
		if len(al.Named) > 0 {
			named = make(map[string]object.Object, len(al.Named))
		}
		for _, na := range al.Named {
			if _, dup := named[na.Name.Value]; dup {
				return nil, diag.New(diag.Runtime, na.Name.Token, "duplicate named argument %q", na.Name.Value)
			}
			v, err := in.EvalExpr(na.Value, na.Name.Token)
			if err != nil {
				return nil, err
			}
			named[na.Name.Value] = v
		}
		block = al.Block
	}
	return args.FromValues(pos, named, block, ce.Token), nil
}

// Execute runs body statement by statement until one of them ends it.
func (in *Interp) Execute(body *ast.Block) (object.Signal, error) {
	if body == nil {
		return object.Completed, nil
	}
	for _, stmt := range body.Statements {
		sig, done, err := in.execStatement(stmt)
		if err != nil {
			return object.Completed, err
		}
		if done {
			return sig, nil
		}
	}
	return object.Completed, nil
}

func (in *Interp) execStatement(stmt ast.Statement) (object.Signal, bool, error) {
	switch node := stmt.(type) {
	case *ast.ReturnStatement:
		if node.ReturnValue == nil {
			return object.Return(object.NULL, node.Token), true, nil
		}
		val, err := in.EvalExpr(node.ReturnValue, node.Token)
		if err != nil {
			return object.Completed, false, err
		}
		return object.Return(val, node.Token), true, nil

	case *ast.ExitStatement:
		return object.Code(node.Code, node.Token), true, nil

	case *ast.AssignStatement:
		return object.Completed, false, in.execAssign(node)

	case *ast.ExpressionStatement:
		_, err := in.EvalExpr(node.Expression, node.Token)
		return object.Completed, false, err

	case *ast.SimpleCommand:
		in.RunProc(node)
		return object.Completed, false, nil

	case *ast.Block:
		sig, err := in.Execute(node)
		if err != nil {
			return object.Completed, false, err
		}
		return sig, sig.Kind != object.Normal, nil

	default:
		return object.Completed, false, diag.New(diag.Runtime, token.NoToken, "cannot execute %T", stmt)
	}
}

func (in *Interp) execAssign(node *ast.AssignStatement) error {
	val, err := in.EvalExpr(node.Value, node.Token)
	if err != nil {
		return err
	}

	if !node.IsRef {
		return in.Mem.SetValue(object.LValue{Name: node.Name.Value, BlameTok: node.Name.Token}, val, object.LocalOnly, 0)
	}

	// setref y writes through the alias the binder created for out param y.
	alias := bind.AliasSafeName(node.Name.Value)
	if !in.Mem.IsNameref(alias) {
		return diag.New(diag.Runtime, node.Name.Token, "setref %s: %s is not an out param of this proc", node.Name.Value, node.Name.Value)
	}
	return in.Mem.SetValue(object.LValue{Name: alias, BlameTok: node.Name.Token}, val, object.LocalOnly, 0)
}

func pick(tok, fallback token.Token) token.Token {
	if tok.IsValid() {
		return tok
	}
	return fallback
}
