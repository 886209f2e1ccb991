package scenario

import (
	"quill/internal/ast"
	"quill/internal/token"

	"gopkg.in/yaml.v3"
)

func (p *parser) funcDecl(n *yaml.Node) (*ast.FuncDecl, error) {
	fd := &ast.FuncDecl{Keyword: p.tok(n, token.FUNC, "func")}

	err := p.eachPair(n, func(key string, k, v *yaml.Node) error {
		var err error
		switch key {
		case "name":
			fd.Name, err = p.scalar(v)
		case "params":
			fd.PosParams, err = p.funcParams(v)
		case "rest":
			fd.RestOfPos, err = p.restParam(v)
		case "named":
			fd.NamedParams, err = p.funcParams(v)
		case "body":
			if fd.Body, err = p.block(v); err == nil {
				err = p.noExit(fd.Body)
			}
		default:
			err = p.errorf(k, "unknown func field %q", key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if fd.Name == "" {
		return nil, p.errorf(n, "func needs a name")
	}
	return fd, nil
}

// funcParams reads func params. Funcs take every argument explicitly, so a
// default is an error rather than a silently ignored value.
func (p *parser) funcParams(n *yaml.Node) ([]*ast.Param, error) {
	params, err := p.params(n)
	if err != nil {
		return nil, err
	}
	for _, param := range params {
		if param.DefaultVal != nil {
			return nil, p.errorAt(param.BlameTok, "func param %q cannot have a default value", param.Name)
		}
	}
	return params, nil
}

// noExit rejects exit in a func body, including blocks the body runs inline.
// Integer status codes only end procs.
func (p *parser) noExit(b *ast.Block) error {
	for _, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *ast.ExitStatement:
			return p.errorAt(s.Token, "exit is not allowed in a func body; use return")
		case *ast.Block:
			if err := p.noExit(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) procDecl(n *yaml.Node) (*ast.ProcDecl, error) {
	pd := &ast.ProcDecl{Keyword: p.tok(n, token.PROC, "proc")}
	sig := &ast.ClosedSig{}
	open := false

	err := p.eachPair(n, func(key string, k, v *yaml.Node) error {
		var err error
		switch key {
		case "name":
			pd.Name, err = p.scalar(v)
		case "open":
			err = v.Decode(&open)
		case "words":
			sig.WordParams, err = p.params(v)
		case "rest_words":
			sig.RestOfWords, err = p.restParam(v)
		case "pos":
			sig.PosParams, err = p.params(v)
		case "rest_pos":
			sig.RestOfPos, err = p.restParam(v)
		case "named":
			sig.NamedParams, err = p.params(v)
		case "rest_named":
			sig.RestOfNamed, err = p.restParam(v)
		case "block":
			sig.BlockParam, err = p.restParam(v)
		case "body":
			pd.Body, err = p.block(v)
		default:
			err = p.errorf(k, "unknown proc field %q", key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if pd.Name == "" {
		return nil, p.errorf(n, "proc needs a name")
	}

	if open {
		if sig.WordParams != nil || sig.RestOfWords != nil || sig.PosParams != nil || sig.RestOfPos != nil ||
			sig.NamedParams != nil || sig.RestOfNamed != nil || sig.BlockParam != nil {
			return nil, p.errorf(n, "open proc %s cannot declare params", pd.Name)
		}
		pd.Sig = &ast.OpenSig{}
	} else {
		pd.Sig = sig
	}
	return pd, nil
}

// params reads a list whose items are either a bare name or {name, type, default}.
func (p *parser) params(n *yaml.Node) ([]*ast.Param, error) {
	var params []*ast.Param
	err := p.eachItem(n, func(item *yaml.Node) error {
		if item.Kind == yaml.ScalarNode {
			params = append(params, &ast.Param{Name: item.Value, BlameTok: p.tok(item, token.PARAM, item.Value)})
			return nil
		}

		param := &ast.Param{}
		err := p.eachPair(item, func(key string, k, v *yaml.Node) error {
			var err error
			switch key {
			case "name":
				param.Name, err = p.scalar(v)
				param.BlameTok = p.tok(v, token.PARAM, v.Value)
			case "type":
				var name string
				name, err = p.scalar(v)
				param.Type = &ast.TypeExpr{Token: p.tok(v, token.LookupIdent(name), name), Name: name}
			case "default":
				param.DefaultVal, err = p.expression(v)
			default:
				err = p.errorf(k, "unknown param field %q", key)
			}
			return err
		})
		if err != nil {
			return err
		}
		if param.Name == "" {
			return p.errorf(item, "param needs a name")
		}
		params = append(params, param)
		return nil
	})
	return params, err
}

func (p *parser) restParam(n *yaml.Node) (*ast.RestParam, error) {
	name, err := p.scalar(n)
	if err != nil {
		return nil, err
	}
	return &ast.RestParam{Name: name, BlameTok: p.tok(n, token.PARAM, name)}, nil
}
