package object

import (
	"bytes"
	"quill/internal/ast"
	"sort"
	"strconv"
	"strings"
)

const (
	NULL_OBJ    = "NULL"
	BOOLEAN_OBJ = "BOOLEAN"
	INTEGER_OBJ = "INTEGER"
	STRING_OBJ  = "STRING"

	LIST_OBJ = "LIST"
	DICT_OBJ = "DICT"

	COMMAND_OBJ = "COMMAND"
	FUNC_OBJ    = "FUNC"
	PROC_OBJ    = "PROC"
)

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	elements := make([]string, 0, len(l.Elements))
	for _, e := range l.Elements {
		elements = append(elements, e.Inspect())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// StringList wraps each word as a String, preserving order.
func StringList(words []string) *List {
	elements := make([]Object, 0, len(words))
	for _, w := range words {
		elements = append(elements, &String{Value: w})
	}
	return &List{Elements: elements}
}

type Dict struct {
	Pairs map[string]Object
}

func (d *Dict) Type() ObjectType { return DICT_OBJ }
func (d *Dict) Inspect() string {
	keys := make([]string, 0, len(d.Pairs))
	for k := range d.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out bytes.Buffer
	out.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(k)
		out.WriteString(": ")
		out.WriteString(d.Pairs[k].Inspect())
	}
	out.WriteString("}")
	return out.String()
}

// Command is an unevaluated block, bound to a proc's block param.
type Command struct {
	Block *ast.Block
}

func (c *Command) Type() ObjectType { return COMMAND_OBJ }
func (c *Command) Inspect() string  { return "<Command " + c.Block.String() + ">" }

// Func is a user-defined function value together with the frame it closes over.
type Func struct {
	Name    string
	Decl    *ast.FuncDecl
	Closure *Environment
}

func (f *Func) Type() ObjectType { return FUNC_OBJ }
func (f *Func) Inspect() string  { return "<Func " + f.Name + ">" }

// Proc is a user-defined procedure. Defaults holds the word-param defaults,
// evaluated at declaration time and aligned with the signature's word params
// (nil where a param has none).
type Proc struct {
	Name     string
	Decl     *ast.ProcDecl
	Defaults []Object
}

func (p *Proc) Type() ObjectType { return PROC_OBJ }
func (p *Proc) Inspect() string  { return "<Proc " + p.Name + ">" }

// Equal compares values structurally. Functions, procs and commands compare by identity.
func Equal(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() {
		return false
	}
	switch x := a.(type) {
	case *Null:
		return true
	case *Boolean:
		return x.Value == b.(*Boolean).Value
	case *Integer:
		return x.Value == b.(*Integer).Value
	case *String:
		return x.Value == b.(*String).Value
	case *List:
		y := b.(*List)
		if len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		y := b.(*Dict)
		if len(x.Pairs) != len(y.Pairs) {
			return false
		}
		for k, v := range x.Pairs {
			w, ok := y.Pairs[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
