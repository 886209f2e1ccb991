package interp

import (
	"context"
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/object"
	"quill/internal/scenario"
	"quill/internal/token"
	"quill/internal/trace"
	"strings"
	"testing"
)

type recordingSink struct {
	errs []*diag.Error
}

func (s *recordingSink) Report(err *diag.Error) { s.errs = append(s.errs, err) }

type memJournal struct {
	events []trace.Event
}

func (j *memJournal) Record(_ context.Context, ev trace.Event) error {
	j.events = append(j.events, ev)
	return nil
}

func (j *memJournal) Close() error { return nil }

const procs = `
funcs:
  - name: add
    params: [a, b]
    body:
      - return: {add: [{var: a}, {var: b}]}
  - name: nothing
    body: []
  - name: sum
    params: [first]
    rest: more
    body:
      - return: {var: more}
  - name: wrap
    params: [a]
    body:
      - run: [show, ":got"]
        pos: [{var: a}]
      - return: {var: got}

procs:
  - name: greet
    words:
      - who
      - name: out
        type: Ref
    body:
      - setref: {name: out, value: {add: ["hello ", {var: who}]}}
  - name: inner
    words:
      - name: x
        type: Ref
    body:
      - setref: {name: x, value: deep}
  - name: outer
    words:
      - name: r
        type: Ref
    body:
      - run: [inner, ":__r"]
  - name: fail
    words: [code]
    body:
      - exit: 3
  - name: valued
    body:
      - return: 1
  - name: polite
    words:
      - name: greeting
        default: hi
    body:
      - set: {name: seen, value: {var: greeting}}
      - setref: {name: seen, value: x}
  - name: anything
    open: true
  - name: show
    words:
      - name: out
        type: Ref
    pos: [v]
    body:
      - setref: {name: out, value: {var: v}}
  - name: fallback
    words:
      - name: out
        type: Ref
    pos:
      - name: n
        default: {var: base}
    body:
      - setref: {name: out, value: {var: n}}
  - name: caller
    words:
      - name: r
        type: Ref
      - name: d
        type: Ref
    body:
      - set: {name: local, value: 7}
      - run: [show, ":got"]
        pos: [{var: local}]
      - setref: {name: r, value: {var: got}}
      - set: {name: base, value: 9}
      - run: [fallback, ":viaDefault"]
      - setref: {name: d, value: {var: viaDefault}}
`

func run(t *testing.T, calls string) ([]Outcome, *recordingSink, *memJournal, *Interp) {
	t.Helper()
	doc, err := scenario.Parse("test.yaml", []byte(procs+"\ncalls:\n"+calls))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	sink := &recordingSink{}
	journal := &memJournal{}
	in := New(sink, journal)
	outcomes, err := in.RunProgram(doc.Program)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if in.Mem.Depth() != 1 {
		t.Errorf("frames left on the stack: depth %d", in.Mem.Depth())
	}
	return outcomes, sink, journal, in
}

func TestOutParamWriteBack(t *testing.T) {
	outcomes, sink, _, _ := run(t, `
  - set: {name: msg, value: ""}
  - run: [greet, world, ":msg"]
  - eval: {var: msg}
`)
	if outcomes[1].Status != 0 {
		t.Fatalf("expected status 0, got %d (%v)", outcomes[1].Status, sink.errs)
	}
	if got := outcomes[2].Value; !object.Equal(got, &object.String{Value: "hello world"}) {
		t.Errorf("expected msg = hello world, got %v", got)
	}
}

func TestOutParamCreatesCallerBinding(t *testing.T) {
	outcomes, _, _, in := run(t, `
  - run: [greet, you, ":fresh"]
`)
	if outcomes[0].Status != 0 {
		t.Fatalf("expected status 0, got %d", outcomes[0].Status)
	}
	v, ok := in.Mem.GetValue("fresh")
	if !ok || !object.Equal(v, &object.String{Value: "hello you"}) {
		t.Errorf("expected fresh = hello you in the global frame, got %v", v)
	}
}

func TestOutParamForwarded(t *testing.T) {
	outcomes, sink, _, _ := run(t, `
  - run: [outer, ":result"]
  - eval: {var: result}
`)
	if outcomes[0].Status != 0 {
		t.Fatalf("expected status 0, got %d (%v)", outcomes[0].Status, sink.errs)
	}
	if got := outcomes[1].Value; !object.Equal(got, &object.String{Value: "deep"}) {
		t.Errorf("expected result = deep, got %v", got)
	}
}

func TestProcStatus(t *testing.T) {
	tests := []struct {
		name   string
		call   string
		status int
		kind   diag.Kind
		msg    string
	}{
		{"exit code", `[fail, x]`, 3, 0, ""},
		{"missing sigil", `[greet, world, msg]`, 2, diag.RefArg, `Ref param "out" expected arg starting with colon : but got "msg"`},
		{"missing word", `[greet, world]`, 2, diag.MissingArg, "expected at least 2 words, got 1"},
		{"extra word", `[fail, 1, 2]`, 2, diag.ExtraArg, "got 1 extra words"},
		{"return with value", `[valued]`, 1, diag.Runtime, "proc valued: return with a value is only allowed in funcs"},
		{"not found", `[nosuch]`, 127, diag.Runtime, "nosuch: command not found"},
		{"open signature", `[anything, a, b, c]`, 0, 0, ""},
		{"setref on a plain param", `[polite]`, 1, diag.Runtime, "setref seen: seen is not an out param of this proc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcomes, sink, _, in := run(t, "  - run: "+tt.call+"\n")
			if outcomes[0].Status != tt.status {
				t.Fatalf("expected status %d, got %d (%v)", tt.status, outcomes[0].Status, sink.errs)
			}
			if in.LastStatus() != tt.status {
				t.Errorf("expected LastStatus %d, got %d", tt.status, in.LastStatus())
			}
			if tt.msg == "" {
				if len(sink.errs) != 0 {
					t.Errorf("expected no reports, got %v", sink.errs)
				}
				return
			}
			if len(sink.errs) != 1 {
				t.Fatalf("expected one report, got %v", sink.errs)
			}
			if sink.errs[0].Kind != tt.kind || sink.errs[0].Msg != tt.msg {
				t.Errorf("expected %s %q, got %s %q", tt.kind, tt.msg, sink.errs[0].Kind, sink.errs[0].Msg)
			}
			if !sink.errs[0].Location.IsValid() {
				t.Errorf("expected a located report")
			}
		})
	}
}

func TestBindFailureBlamesCallSite(t *testing.T) {
	doc, err := scenario.Parse("test.yaml", []byte(procs+"\ncalls:\n  - run: [greet, world, msg]\n"))
	if err != nil {
		t.Fatal(err)
	}
	sink := &recordingSink{}
	in := New(sink, nil)
	if _, err := in.RunProgram(doc.Program); err != nil {
		t.Fatal(err)
	}
	loc := sink.errs[0].Location
	if !strings.HasPrefix(doc.Src[loc.Position:], "greet, world, msg]") {
		t.Errorf("expected the report to point at the command, got %q", doc.Src[loc.Position:])
	}
}

func TestWordDefault(t *testing.T) {
	_, _, _, in := run(t, "  - run: [polite]\n")
	if _, ok := in.Mem.GetValue("polite"); !ok {
		t.Fatalf("polite not declared")
	}
	proc, _ := in.Mem.GetValue("polite")
	defaults := proc.(*object.Proc).Defaults
	if len(defaults) != 1 || !object.Equal(defaults[0], &object.String{Value: "hi"}) {
		t.Errorf("expected the default to be computed at declaration, got %v", defaults)
	}
}

func TestFuncCalls(t *testing.T) {
	tests := []struct {
		name     string
		call     string
		expected object.Object
		msg      string
	}{
		{"value return", `{call: add, args: [1, 2]}`, &object.Integer{Value: 3}, ""},
		{"implicit null", `{call: nothing}`, object.NULL, ""},
		{"rest", `{call: sum, args: [1, 2, 3]}`, &object.List{Elements: []object.Object{&object.Integer{Value: 2}, &object.Integer{Value: 3}}}, ""},
		{"too few", `{call: add, args: [1]}`, nil, "add() expects 2 arguments but 1 were given"},
		{"too many", `{call: add, args: [1, 2, 3]}`, nil, "add() expects 2 arguments but 3 were given"},
		{"unexpected named", `{call: add, args: [1, 2], named: {z: 1}}`, nil, "add() expects 0 named arguments but 1 were given"},
		{"undefined", `{call: nope}`, nil, "undefined function nope"},
		{"not a func", `{call: greet}`, nil, "greet is a PROC, not a function"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcomes, sink, _, _ := run(t, "  - eval: "+tt.call+"\n")
			o := outcomes[0]
			if tt.msg == "" {
				if o.Err != nil {
					t.Fatalf("unexpected error: %v", o.Err)
				}
				if !object.Equal(o.Value, tt.expected) {
					t.Errorf("expected %s, got %v", tt.expected.Inspect(), o.Value)
				}
				return
			}
			if o.Err == nil || o.Err.Error() != tt.msg {
				t.Fatalf("expected %q, got %v", tt.msg, o.Err)
			}
			if o.Status != StatusRuntimeError {
				t.Errorf("expected status %d, got %d", StatusRuntimeError, o.Status)
			}
			if len(sink.errs) != 1 || !sink.errs[0].Location.IsValid() {
				t.Errorf("expected one located report, got %v", sink.errs)
			}
		})
	}
}

func TestFuncArityBlamesKeyword(t *testing.T) {
	outcomes, _, _, in := run(t, "  - eval: {call: add, args: [1]}\n")
	de, ok := diag.AsError(outcomes[0].Err)
	if !ok {
		t.Fatalf("expected a located error, got %v", outcomes[0].Err)
	}
	v, _ := in.Mem.GetValue("add")
	if de.Location != v.(*object.Func).Decl.Keyword {
		t.Errorf("expected blame on the func keyword, got %v", de.Location)
	}
}

func TestArgsSeeCallerScope(t *testing.T) {
	outcomes, sink, _, _ := run(t, `
  - eval: {call: wrap, args: [5]}
  - run: [caller, ":fromLocal", ":fromDefault"]
  - eval: {var: fromLocal}
  - eval: {var: fromDefault}
`)
	if len(sink.errs) != 0 {
		t.Fatalf("unexpected reports: %v", sink.errs)
	}
	if outcomes[1].Status != 0 {
		t.Fatalf("expected status 0, got %d", outcomes[1].Status)
	}

	tests := []struct {
		name     string
		outcome  Outcome
		expected int64
	}{
		{"func param as pos arg", outcomes[0], 5},
		{"proc local as pos arg", outcomes[2], 7},
		{"default from caller local", outcomes[3], 9},
	}
	for _, tt := range tests {
		if !object.Equal(tt.outcome.Value, &object.Integer{Value: tt.expected}) {
			t.Errorf("%s: expected %d, got %v", tt.name, tt.expected, tt.outcome.Value)
		}
	}
}

func TestArgsDoNotSeeCalleeFrame(t *testing.T) {
	// v is the callee's own param name; the argument must not resolve it.
	outcomes, sink, _, _ := run(t, `
  - run: [show, ":got"]
    pos: [{var: v}]
`)
	if outcomes[0].Status != 2 {
		t.Fatalf("expected status 2, got %d", outcomes[0].Status)
	}
	if len(sink.errs) != 1 || sink.errs[0].Msg != "undefined variable v" {
		t.Errorf("expected undefined variable v, got %v", sink.errs)
	}
}

func TestJournalRecordsCalls(t *testing.T) {
	_, _, journal, _ := run(t, `
  - run: [fail, x]
  - eval: {call: add, args: [1]}
  - run: [nosuch]
`)
	if len(journal.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(journal.events))
	}

	expected := []struct {
		callable string
		kind     trace.Kind
		status   int
	}{
		{"fail", trace.KindProc, 3},
		{"add", trace.KindFunc, StatusRuntimeError},
		{"nosuch", trace.KindProc, StatusNotFound},
	}
	for i, e := range expected {
		ev := journal.events[i]
		if ev.Callable != e.callable || ev.Kind != e.kind || ev.Status != e.status {
			t.Errorf("event %d: expected %s/%s/%d, got %s/%s/%d", i, e.callable, e.kind, e.status, ev.Callable, ev.Kind, ev.Status)
		}
	}
	if journal.events[1].Err == "" {
		t.Errorf("expected the func failure message to be recorded")
	}
}

func TestDeclareProcRejectsOutParamDefault(t *testing.T) {
	in := New(nil, nil)
	decl := &ast.ProcDecl{
		Name: "p",
		Sig: &ast.ClosedSig{WordParams: []*ast.Param{{
			Name:       "y",
			Type:       &ast.TypeExpr{Name: "Ref"},
			DefaultVal: &ast.StringLiteral{Value: "x"},
		}}},
	}
	err := in.DeclareProc(decl)
	de, ok := diag.AsError(err)
	if !ok || de.Kind != diag.Type {
		t.Errorf("expected a type error, got %v", err)
	}
}

func TestDeclareProcRejectsNonStringWordDefault(t *testing.T) {
	in := New(nil, nil)
	decl := &ast.ProcDecl{
		Name: "p",
		Sig: &ast.ClosedSig{WordParams: []*ast.Param{{
			Name:       "w",
			DefaultVal: &ast.IntegerLiteral{Value: 1},
		}}},
	}
	if err := in.DeclareProc(decl); err == nil {
		t.Errorf("expected word default of type INTEGER to be rejected")
	}
}

func TestEvalExpr(t *testing.T) {
	in := New(nil, nil)
	tok := token.NoToken
	tests := []struct {
		name     string
		expr     ast.Expression
		expected object.Object
		fails    bool
	}{
		{"string concat", &ast.InfixExpression{Operator: "+", Left: &ast.StringLiteral{Value: "a"}, Right: &ast.StringLiteral{Value: "b"}}, &object.String{Value: "ab"}, false},
		{"list concat", &ast.InfixExpression{Operator: "+",
			Left:  &ast.ListLiteral{Elements: []ast.Expression{&ast.IntegerLiteral{Value: 1}}},
			Right: &ast.ListLiteral{Elements: []ast.Expression{&ast.IntegerLiteral{Value: 2}}}},
			&object.List{Elements: []object.Object{&object.Integer{Value: 1}, &object.Integer{Value: 2}}}, false},
		{"mismatch", &ast.InfixExpression{Operator: "+", Left: &ast.StringLiteral{Value: "a"}, Right: &ast.IntegerLiteral{Value: 1}}, nil, true},
		{"unknown operator", &ast.InfixExpression{Operator: "-", Left: &ast.IntegerLiteral{Value: 2}, Right: &ast.IntegerLiteral{Value: 1}}, nil, true},
		{"undefined variable", &ast.Identifier{Value: "missing"}, nil, true},
		{"dict", &ast.DictLiteral{Pairs: map[string]ast.Expression{"k": &ast.Boolean{Value: true}}}, &object.Dict{Pairs: map[string]object.Object{"k": object.TRUE}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := in.EvalExpr(tt.expr, tok)
			if tt.fails {
				if err == nil {
					t.Errorf("expected an error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !object.Equal(got, tt.expected) {
				t.Errorf("expected %s, got %s", tt.expected.Inspect(), got.Inspect())
			}
		})
	}
}
