package scenario

import (
	"quill/internal/ast"
	"quill/internal/token"

	"gopkg.in/yaml.v3"
)

var statementKeys = []string{"return", "exit", "set", "setref", "eval", "run"}

func (p *parser) block(n *yaml.Node) (*ast.Block, error) {
	b := &ast.Block{Token: p.tok(n, token.LBRACE, "{")}
	err := p.eachItem(n, func(item *yaml.Node) error {
		s, err := p.statement(item)
		if err != nil {
			return err
		}
		b.Statements = append(b.Statements, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (p *parser) statement(n *yaml.Node) (ast.Statement, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "statement must be a mapping")
	}

	var key string
	var k, v *yaml.Node
	for _, candidate := range statementKeys {
		if val := lookup(n, candidate); val != nil {
			if key != "" {
				return nil, p.errorf(n, "statement has both %q and %q", key, candidate)
			}
			key, v = candidate, val
		}
	}
	if key == "" {
		return nil, p.errorf(n, "unknown statement")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			k = n.Content[i]
		}
	}

	switch key {
	case "return":
		rs := &ast.ReturnStatement{Token: p.tok(k, token.RETURN, "return")}
		if !(v.Kind == yaml.ScalarNode && v.ShortTag() == "!!null" && v.Value == "") {
			val, err := p.expression(v)
			if err != nil {
				return nil, err
			}
			rs.ReturnValue = val
		}
		return rs, nil

	case "exit":
		var code int
		if err := v.Decode(&code); err != nil {
			return nil, p.errorf(v, "exit code must be an integer")
		}
		return &ast.ExitStatement{Token: p.tok(k, token.EXIT, "exit"), Code: code}, nil

	case "set", "setref":
		nameNode, valueNode := lookup(v, "name"), lookup(v, "value")
		if nameNode == nil || valueNode == nil {
			return nil, p.errorf(v, "%s needs name and value", key)
		}
		val, err := p.expression(valueNode)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStatement{
			Token: p.tok(k, token.LookupIdent(key), key),
			Name:  &ast.Identifier{Token: p.tok(nameNode, token.IDENT, nameNode.Value), Value: nameNode.Value},
			Value: val,
			IsRef: key == "setref",
		}, nil

	case "eval":
		expr, err := p.expression(v)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Token: p.tok(k, token.EVAL, "eval"), Expression: expr}, nil

	default:
		return p.command(n, v)
	}
}

func (p *parser) command(n, words *yaml.Node) (*ast.SimpleCommand, error) {
	sc := &ast.SimpleCommand{}
	err := p.eachItem(words, func(item *yaml.Node) error {
		w, err := p.scalar(item)
		if err != nil {
			return err
		}
		if len(sc.Words) == 0 {
			sc.Token = p.tok(item, token.WORD, w)
		}
		sc.Words = append(sc.Words, w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(sc.Words) == 0 {
		return nil, p.errorf(words, "run needs at least the proc name")
	}

	al, err := p.argList(n, sc.Token, "run")
	if err != nil {
		return nil, err
	}
	sc.Args = al
	return sc, nil
}

// argList reads the pos/named/block siblings of a run or call node.
func (p *parser) argList(n *yaml.Node, left token.Token, primary string) (*ast.ArgList, error) {
	al := &ast.ArgList{Left: left}
	err := p.eachPair(n, func(key string, k, v *yaml.Node) error {
		switch key {
		case primary:
			return nil
		case "pos", "args":
			return p.eachItem(v, func(item *yaml.Node) error {
				e, err := p.expression(item)
				if err != nil {
					return err
				}
				al.Pos = append(al.Pos, e)
				return nil
			})
		case "named":
			return p.eachPair(v, func(name string, nk, nv *yaml.Node) error {
				e, err := p.expression(nv)
				if err != nil {
					return err
				}
				al.Named = append(al.Named, &ast.NamedArg{
					Name:  &ast.Identifier{Token: p.tok(nk, token.NAMEDEQ, name), Value: name},
					Value: e,
				})
				return nil
			})
		case "block":
			b, err := p.block(v)
			if err != nil {
				return err
			}
			al.Block = b
			return nil
		default:
			return p.errorf(k, "unknown argument field %q", key)
		}
	})
	if err != nil {
		return nil, err
	}
	return al, nil
}
