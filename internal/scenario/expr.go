package scenario

import (
	"quill/internal/ast"
	"quill/internal/token"

	"gopkg.in/yaml.v3"
)

func (p *parser) expression(n *yaml.Node) (ast.Expression, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return p.literal(n)

	case yaml.SequenceNode:
		ll := &ast.ListLiteral{Token: p.tok(n, token.LBRACKET, "[")}
		for _, item := range n.Content {
			e, err := p.expression(item)
			if err != nil {
				return nil, err
			}
			ll.Elements = append(ll.Elements, e)
		}
		return ll, nil

	case yaml.MappingNode:
		return p.compound(n)

	case yaml.AliasNode:
		return p.expression(n.Alias)

	default:
		return nil, p.errorf(n, "unsupported expression")
	}
}

func (p *parser) literal(n *yaml.Node) (ast.Expression, error) {
	switch n.ShortTag() {
	case "!!null":
		return &ast.Null{Token: p.tok(n, token.NULL, "null")}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, p.errorf(n, "bad boolean %q", n.Value)
		}
		return &ast.Boolean{Token: p.tok(n, token.LookupIdent(n.Value), n.Value), Value: b}, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, p.errorf(n, "bad integer %q", n.Value)
		}
		return &ast.IntegerLiteral{Token: p.tok(n, token.NUMBER, n.Value), Value: i}, nil
	default:
		return &ast.StringLiteral{Token: p.tok(n, token.STRING, n.Value), Value: n.Value}, nil
	}
}

func (p *parser) compound(n *yaml.Node) (ast.Expression, error) {
	if len(n.Content) == 0 {
		return nil, p.errorf(n, "empty expression")
	}

	if v := lookup(n, "call"); v != nil {
		name, err := p.scalar(v)
		if err != nil {
			return nil, err
		}
		tok := p.tok(n, token.LPAREN, "(")
		al, err := p.argList(n, tok, "call")
		if err != nil {
			return nil, err
		}
		return &ast.CallExpression{
			Token:    tok,
			Function: &ast.Identifier{Token: p.tok(v, token.IDENT, name), Value: name},
			Args:     al,
		}, nil
	}

	if len(n.Content) != 2 {
		return nil, p.errorf(n, "expression must have exactly one key")
	}
	k, v := n.Content[0], n.Content[1]

	switch k.Value {
	case "var":
		name, err := p.scalar(v)
		if err != nil {
			return nil, err
		}
		return &ast.Identifier{Token: p.tok(v, token.IDENT, name), Value: name}, nil

	case "dict":
		dl := &ast.DictLiteral{Token: p.tok(k, token.LBRACE, "{"), Pairs: map[string]ast.Expression{}}
		err := p.eachPair(v, func(key string, _, val *yaml.Node) error {
			e, err := p.expression(val)
			if err != nil {
				return err
			}
			dl.Pairs[key] = e
			return nil
		})
		if err != nil {
			return nil, err
		}
		return dl, nil

	case "add":
		if v.Kind != yaml.SequenceNode || len(v.Content) != 2 {
			return nil, p.errorf(v, "add takes exactly two operands")
		}
		left, err := p.expression(v.Content[0])
		if err != nil {
			return nil, err
		}
		right, err := p.expression(v.Content[1])
		if err != nil {
			return nil, err
		}
		return &ast.InfixExpression{Token: p.tok(k, token.PLUS, "+"), Left: left, Operator: "+", Right: right}, nil

	default:
		return nil, p.errorf(k, "unknown expression %q", k.Value)
	}
}
