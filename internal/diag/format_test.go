package diag

import (
	"bytes"
	"errors"
	"fmt"
	"quill/internal/token"
	"strings"
	"testing"
)

func TestFormatWithLocation(t *testing.T) {
	src := "calls:\n  - run: [greet, hello]\n"
	pos := strings.Index(src, "greet")
	err := New(ExtraArg, token.Token{Type: token.WORD, Literal: "greet", Position: pos}, "got 1 extra words")

	f := NewFormatter(nil, "calls.yaml", src)
	out := f.Format(err)

	expected := []string{
		"Error: got 1 extra words",
		"    --> calls.yaml:2:11",
		"  >    2 |   - run: [greet, hello]",
		"extra-arg error here",
	}
	for _, want := range expected {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFormatWithoutLocation(t *testing.T) {
	f := NewFormatter(nil, "calls.yaml", "src")
	out := f.Format(New(Runtime, token.NoToken, "boom"))
	if out != "Error: boom\n" {
		t.Errorf("expected only the message, got %q", out)
	}
}

func TestReportWrites(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, "", "")
	f.Report(MissingBlock(token.NoToken))
	if buf.String() != "Error: no block argument supplied\n" {
		t.Errorf("unexpected report %q", buf.String())
	}
}

func TestMessages(t *testing.T) {
	loc := token.NoToken
	tests := []struct {
		err      *Error
		kind     Kind
		expected string
	}{
		{PosArity("f", 2, 1, false, loc), Arity, "f() expects 2 arguments but 1 were given"},
		{PosArity("f", 2, 1, true, loc), Arity, "f() expects at least 2 arguments but 1 were given"},
		{NamedArity("f", 1, 0, loc), Arity, "f() expects 1 named arguments but 0 were given"},
		{RefArgSyntax("y", "t", loc), RefArg, `Ref param "y" expected arg starting with colon : but got "t"`},
		{MissingWord(2, 1, loc), MissingArg, "expected at least 2 words, got 1"},
		{MissingPos(1, 0, loc), MissingArg, "expected at least 1 positional args, got 0"},
		{MissingNamed("k", loc), MissingArg, `expected named arg "k"`},
		{ExtraWords(2, loc), ExtraArg, "got 2 extra words"},
		{ExtraPos(1, loc), ExtraArg, "got 1 extra positional args"},
		{ExtraNamed([]string{"a", "b"}, loc), ExtraArg, "got unexpected named args: a, b"},
	}

	for _, tt := range tests {
		if tt.err.Kind != tt.kind {
			t.Errorf("%q: expected kind %s, got %s", tt.expected, tt.kind, tt.err.Kind)
		}
		if tt.err.Error() != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
		}
	}
}

func TestAsErrorUnwraps(t *testing.T) {
	inner := New(Type, token.NoToken, "bad")
	wrapped := fmt.Errorf("context: %w", inner)

	de, ok := AsError(wrapped)
	if !ok || de != inner {
		t.Errorf("expected to find the wrapped error")
	}
	if _, ok := AsError(errors.New("plain")); ok {
		t.Errorf("plain errors carry no location")
	}
}

func TestAssert(t *testing.T) {
	Assert(true, "never")

	defer func() {
		ae, ok := recover().(*AssertionError)
		if !ok {
			t.Fatalf("expected *AssertionError")
		}
		if ae.Error() != "assertion failed: depth 3" {
			t.Errorf("unexpected message %q", ae.Error())
		}
	}()
	Assert(false, "depth %d", 3)
}
