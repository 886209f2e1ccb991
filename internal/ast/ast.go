package ast

import (
	"bytes"
	"quill/internal/token"
	"sort"
	"strconv"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Funcs []*FuncDecl
	Procs []*ProcDecl
	Calls []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Calls) > 0 {
		return p.Calls[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, f := range p.Funcs {
		out.WriteString(f.String())
		out.WriteString("\n")
	}
	for _, pr := range p.Procs {
		out.WriteString(pr.String())
		out.WriteString("\n")
	}
	for _, s := range p.Calls {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Block is a brace-delimited statement list. It is both a callable body and,
// when passed as the trailing argument of a proc call, a block argument.
type Block struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (b *Block) statementNode()       {}
func (b *Block) expressionNode()      {}
func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for _, s := range b.Statements {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	out.WriteString(" }")
	return out.String()
}

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	var out bytes.Buffer
	out.WriteString("return")
	if rs.ReturnValue != nil {
		out.WriteString(" ")
		out.WriteString(rs.ReturnValue.String())
	}
	out.WriteString(";")
	return out.String()
}

// ExitStatement ends a proc body with an integer status. It is the source of
// integer control signals.
type ExitStatement struct {
	Token token.Token // the 'exit' token
	Code  int
}

func (es *ExitStatement) statementNode()       {}
func (es *ExitStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExitStatement) String() string       { return "exit " + strconv.Itoa(es.Code) + ";" }

// AssignStatement is `set x = e` (local) or `setref x = e` (through an out-param).
type AssignStatement struct {
	Token token.Token // the 'set' or 'setref' token
	Name  *Identifier
	Value Expression
	IsRef bool
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	kw := "set"
	if as.IsRef {
		kw = "setref"
	}
	return kw + " " + as.Name.String() + " = " + as.Value.String() + ";"
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}

// SimpleCommand invokes a proc: Words[0] names it, the rest are its argv.
type SimpleCommand struct {
	Token token.Token // the first word
	Words []string
	Args  *ArgList
}

func (sc *SimpleCommand) statementNode()       {}
func (sc *SimpleCommand) TokenLiteral() string { return sc.Token.Literal }
func (sc *SimpleCommand) String() string {
	var out bytes.Buffer
	out.WriteString(strings.Join(sc.Words, " "))
	if sc.Args != nil && !sc.Args.IsEmpty() {
		out.WriteString(" ")
		out.WriteString(sc.Args.String())
	}
	out.WriteString(";")
	return out.String()
}

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

type Boolean struct {
	Token token.Token
	Value bool
}

func (b *Boolean) expressionNode()      {}
func (b *Boolean) TokenLiteral() string { return b.Token.Literal }
func (b *Boolean) String() string       { return strconv.FormatBool(b.Value) }

type Null struct {
	Token token.Token
}

func (n *Null) expressionNode()      {}
func (n *Null) TokenLiteral() string { return n.Token.Literal }
func (n *Null) String() string       { return "null" }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return strconv.FormatInt(il.Value, 10) }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

type ListLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	elements := make([]string, 0, len(ll.Elements))
	for _, el := range ll.Elements {
		elements = append(elements, el.String())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

type DictLiteral struct {
	Token token.Token // the '{' token
	Pairs map[string]Expression
}

func (dl *DictLiteral) expressionNode()      {}
func (dl *DictLiteral) TokenLiteral() string { return dl.Token.Literal }
func (dl *DictLiteral) String() string {
	keys := make([]string, 0, len(dl.Pairs))
	for k := range dl.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+": "+dl.Pairs[k].String())
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// CallExpression is a function call in expression position.
type CallExpression struct {
	Token    token.Token // the '(' token
	Function *Identifier
	Args     *ArgList
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + ce.Args.String() + ")"
}
