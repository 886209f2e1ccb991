// Package scenario reads YAML documents that declare funcs and procs and list
// the calls to make against them.
//
// Expressions:
//
//	"text", 12, true, null     literals
//	[e1, e2]                   list
//	{var: name}                variable
//	{dict: {k: e}}             dict
//	{add: [e1, e2]}            e1 + e2
//	{call: f, args: [...], named: {...}, block: [...]}
//
// Statements: {return: e}, {exit: n}, {set: {name: x, value: e}},
// {setref: {name: y, value: e}}, {eval: e} and
// {run: [proc, word...], pos: [...], named: {...}, block: [...]}.
package scenario

import (
	"fmt"
	"os"
	"quill/internal/ast"
	"quill/internal/token"
	"quill/internal/util"

	"gopkg.in/yaml.v3"
)

type Document struct {
	Path    string
	Src     string
	Program *ast.Program
}

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Parse(path, data)
}

func Parse(path string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	p := &parser{path: path, src: string(data)}
	prog := &ast.Program{}

	if root.Kind == 0 || len(root.Content) == 0 {
		return &Document{Path: path, Src: p.src, Program: prog}, nil
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, p.errorf(top, "scenario must be a mapping")
	}

	err := p.eachPair(top, func(key string, k, v *yaml.Node) error {
		switch key {
		case "funcs":
			return p.eachItem(v, func(n *yaml.Node) error {
				f, err := p.funcDecl(n)
				if err != nil {
					return err
				}
				prog.Funcs = append(prog.Funcs, f)
				return nil
			})
		case "procs":
			return p.eachItem(v, func(n *yaml.Node) error {
				pr, err := p.procDecl(n)
				if err != nil {
					return err
				}
				prog.Procs = append(prog.Procs, pr)
				return nil
			})
		case "calls":
			return p.eachItem(v, func(n *yaml.Node) error {
				s, err := p.statement(n)
				if err != nil {
					return err
				}
				prog.Calls = append(prog.Calls, s)
				return nil
			})
		default:
			return p.errorf(k, "unknown section %q", key)
		}
	})
	if err != nil {
		return nil, err
	}

	return &Document{Path: path, Src: p.src, Program: prog}, nil
}

type parser struct {
	path string
	src  string
}

func (p *parser) errorf(n *yaml.Node, format string, a ...interface{}) error {
	return fmt.Errorf("%s:%d:%d: %s", p.path, n.Line, n.Column, fmt.Sprintf(format, a...))
}

func (p *parser) errorAt(tok token.Token, format string, a ...interface{}) error {
	line, col := util.GetLineAndColumn(p.src, tok.Position)
	return fmt.Errorf("%s:%d:%d: %s", p.path, line, col, fmt.Sprintf(format, a...))
}

func (p *parser) tok(n *yaml.Node, typ token.TokenType, literal string) token.Token {
	return token.Token{
		Type:     typ,
		Literal:  literal,
		Position: util.OffsetOf(p.src, n.Line, n.Column),
	}
}

func (p *parser) eachPair(n *yaml.Node, fn func(key string, k, v *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return p.errorf(n, "expected a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if err := fn(k.Value, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) eachItem(n *yaml.Node, fn func(n *yaml.Node) error) error {
	if n.Kind != yaml.SequenceNode {
		return p.errorf(n, "expected a list")
	}
	for _, item := range n.Content {
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) scalar(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", p.errorf(n, "expected a scalar")
	}
	return n.Value, nil
}

// lookup returns the value node for key in mapping n, or nil.
func lookup(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
