package ast

import (
	"bytes"
	"quill/internal/token"
	"strings"
)

// TypeExpr is a parameter type annotation. Only word params carry one today,
// and only `Ref` changes binding.
type TypeExpr struct {
	Token token.Token
	Name  string
}

func (te *TypeExpr) String() string { return te.Name }

// Param is a declared parameter. BlameTok is where diagnostics about the
// parameter point.
type Param struct {
	Name       string
	BlameTok   token.Token
	Type       *TypeExpr
	DefaultVal Expression
}

// IsRef reports whether the param uses the out-param convention.
func (p *Param) IsRef() bool {
	return p.Type != nil && p.Type.Name == "Ref"
}

func (p *Param) String() string {
	var out bytes.Buffer
	out.WriteString(p.Name)
	if p.Type != nil {
		out.WriteString(" ")
		out.WriteString(p.Type.String())
	}
	if p.DefaultVal != nil {
		out.WriteString(" = ")
		out.WriteString(p.DefaultVal.String())
	}
	return out.String()
}

// RestParam captures whatever the fixed params leave unclaimed.
type RestParam struct {
	Name     string
	BlameTok token.Token
}

func joinParams(params []*Param) string {
	s := make([]string, 0, len(params))
	for _, p := range params {
		s = append(s, p.String())
	}
	return strings.Join(s, ", ")
}

type FuncDecl struct {
	Keyword     token.Token // the 'func' token
	Name        string
	PosParams   []*Param
	RestOfPos   *RestParam
	NamedParams []*Param
	Body        *Block
}

func (fd *FuncDecl) statementNode()       {}
func (fd *FuncDecl) TokenLiteral() string { return fd.Keyword.Literal }
func (fd *FuncDecl) String() string {
	var out bytes.Buffer
	out.WriteString("func ")
	out.WriteString(fd.Name)
	out.WriteString("(")
	out.WriteString(joinParams(fd.PosParams))
	if fd.RestOfPos != nil {
		if len(fd.PosParams) > 0 {
			out.WriteString(", ")
		}
		out.WriteString("..." + fd.RestOfPos.Name)
	}
	if len(fd.NamedParams) > 0 {
		out.WriteString("; ")
		out.WriteString(joinParams(fd.NamedParams))
	}
	out.WriteString(") ")
	if fd.Body != nil {
		out.WriteString(fd.Body.String())
	}
	return out.String()
}

// ProcSig is either *OpenSig or *ClosedSig.
type ProcSig interface {
	procSig()
	String() string
}

// OpenSig accepts any arguments and binds nothing.
type OpenSig struct{}

func (*OpenSig) procSig()       {}
func (*OpenSig) String() string { return "" }

// ClosedSig declares an explicit argument shape.
type ClosedSig struct {
	WordParams  []*Param
	RestOfWords *RestParam
	PosParams   []*Param
	RestOfPos   *RestParam
	NamedParams []*Param
	RestOfNamed *RestParam
	BlockParam  *RestParam
}

func (*ClosedSig) procSig() {}
func (s *ClosedSig) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(joinParams(s.WordParams))
	if s.RestOfWords != nil {
		out.WriteString(" ..." + s.RestOfWords.Name)
	}
	if len(s.PosParams) > 0 || s.RestOfPos != nil {
		out.WriteString("; ")
		out.WriteString(joinParams(s.PosParams))
		if s.RestOfPos != nil {
			out.WriteString(" ..." + s.RestOfPos.Name)
		}
	}
	if len(s.NamedParams) > 0 || s.RestOfNamed != nil {
		out.WriteString("; ")
		out.WriteString(joinParams(s.NamedParams))
		if s.RestOfNamed != nil {
			out.WriteString(" ..." + s.RestOfNamed.Name)
		}
	}
	if s.BlockParam != nil {
		out.WriteString("; " + s.BlockParam.Name)
	}
	out.WriteString(")")
	return out.String()
}

type ProcDecl struct {
	Keyword token.Token // the 'proc' token
	Name    string
	Sig     ProcSig
	Body    *Block
}

func (pd *ProcDecl) statementNode()       {}
func (pd *ProcDecl) TokenLiteral() string { return pd.Keyword.Literal }
func (pd *ProcDecl) String() string {
	var out bytes.Buffer
	out.WriteString("proc ")
	out.WriteString(pd.Name)
	out.WriteString(" ")
	out.WriteString(pd.Sig.String())
	if pd.Body != nil {
		out.WriteString(" ")
		out.WriteString(pd.Body.String())
	}
	return out.String()
}

// NamedArg is `name = expr` inside an argument list.
type NamedArg struct {
	Name  *Identifier
	Value Expression
}

// ArgList is the typed part of a call site: positional expressions, named
// expressions and an optional trailing block.
type ArgList struct {
	Left  token.Token // the '(' token, or the first word for proc calls
	Pos   []Expression
	Named []*NamedArg
	Block *Block
}

func (al *ArgList) IsEmpty() bool {
	return al == nil || (len(al.Pos) == 0 && len(al.Named) == 0 && al.Block == nil)
}

func (al *ArgList) String() string {
	if al == nil {
		return ""
	}
	var out bytes.Buffer
	pos := make([]string, 0, len(al.Pos))
	for _, p := range al.Pos {
		pos = append(pos, p.String())
	}
	out.WriteString(strings.Join(pos, ", "))
	if len(al.Named) > 0 {
		out.WriteString("; ")
		named := make([]string, 0, len(al.Named))
		for _, n := range al.Named {
			named = append(named, n.Name.Value+"="+n.Value.String())
		}
		out.WriteString(strings.Join(named, ", "))
	}
	if al.Block != nil {
		out.WriteString(" ")
		out.WriteString(al.Block.String())
	}
	return out.String()
}
