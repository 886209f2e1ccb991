// Package args gives binders one cursor over a call's supplied arguments,
// whether the call site produced typed values or argv words.
//
// Every accessor consumes what it returns. Calling Word twice reads two words;
// RestPos after RestPos returns nothing. Done reports anything left unclaimed.
package args

import (
	"log/slog"
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/object"
	"quill/internal/token"
	"sort"
)

// Evaluator computes argument and default-value expressions.
type Evaluator interface {
	EvalExpr(expr ast.Expression, blame token.Token) (object.Object, error)
}

type Reader struct {
	words []string
	pos   []object.Object
	named map[string]object.Object
	block *ast.Block

	wordIdx    int
	posIdx     int
	blockTaken bool

	blame token.Token
}

// FromValues builds a reader for an expression-level call whose arguments are
// already evaluated.
func FromValues(pos []object.Object, named map[string]object.Object, block *ast.Block, blame token.Token) *Reader {
	n := make(map[string]object.Object, len(named))
	for k, v := range named {
		n[k] = v
	}
	return &Reader{
		pos:   append([]object.Object(nil), pos...),
		named: n,
		block: block,
		blame: blame,
	}
}

// FromArgv builds a reader for a proc call. argv excludes the proc name.
// Positional and named expressions of args are evaluated here, left to right.
func FromArgv(argv []string, args *ast.ArgList, ev Evaluator) (*Reader, error) {
	r := &Reader{
		words: append([]string(nil), argv...),
		named: map[string]object.Object{},
		blame: token.NoToken,
	}
	if args == nil {
		return r, nil
	}
	r.blame = args.Left

	for _, expr := range args.Pos {
		val, err := ev.EvalExpr(expr, args.Left)
		if err != nil {
			return nil, err
		}
		r.pos = append(r.pos, val)
	}
	for _, na := range args.Named {
		if _, dup := r.named[na.Name.Value]; dup {
			return nil, diag.New(diag.Runtime, na.Name.Token, "duplicate named argument %q", na.Name.Value)
		}
		val, err := ev.EvalExpr(na.Value, na.Name.Token)
		if err != nil {
			return nil, err
		}
		r.named[na.Name.Value] = val
	}
	r.block = args.Block

	slog.Debug("argument reader",
		slog.Int("words", len(r.words)),
		slog.Int("positional", len(r.pos)),
		slog.Int("named", len(r.named)),
		slog.Bool("block", r.block != nil))
	return r, nil
}

func (r *Reader) NumWords() int { return len(r.words) }

func (r *Reader) NumPos() int { return len(r.pos) }

// Word returns the next unconsumed word.
func (r *Reader) Word() (string, error) {
	if r.wordIdx >= len(r.words) {
		return "", diag.MissingWord(r.wordIdx+1, len(r.words), r.blame)
	}
	w := r.words[r.wordIdx]
	r.wordIdx++
	return w, nil
}

// RestWords returns every unconsumed word in order.
func (r *Reader) RestWords() []string {
	rest := append([]string{}, r.words[r.wordIdx:]...)
	r.wordIdx = len(r.words)
	return rest
}

// PosValue returns the next unconsumed positional value.
func (r *Reader) PosValue() (object.Object, error) {
	if r.posIdx >= len(r.pos) {
		return nil, diag.MissingPos(r.posIdx+1, len(r.pos), r.blame)
	}
	v := r.pos[r.posIdx]
	r.posIdx++
	return v, nil
}

// RestPos returns every unconsumed positional value in order.
func (r *Reader) RestPos() []object.Object {
	rest := append([]object.Object{}, r.pos[r.posIdx:]...)
	r.posIdx = len(r.pos)
	return rest
}

// HasNamed reports whether name was supplied and not yet consumed.
func (r *Reader) HasNamed(name string) bool {
	_, ok := r.named[name]
	return ok
}

// NamedValue consumes the named argument, or returns dflt when it is absent.
// A nil dflt means the parameter is required.
func (r *Reader) NamedValue(name string, dflt object.Object) (object.Object, error) {
	if v, ok := r.named[name]; ok {
		delete(r.named, name)
		return v, nil
	}
	if dflt != nil {
		return dflt, nil
	}
	return nil, diag.MissingNamed(name, r.blame)
}

// RestNamed returns every unconsumed named argument.
func (r *Reader) RestNamed() map[string]object.Object {
	rest := r.named
	r.named = map[string]object.Object{}
	return rest
}

// Block returns the trailing block argument.
func (r *Reader) Block() (*ast.Block, error) {
	if r.block == nil || r.blockTaken {
		return nil, diag.MissingBlock(r.blame)
	}
	r.blockTaken = true
	return r.block, nil
}

// Done fails if any supplied argument was never consumed.
func (r *Reader) Done() error {
	if n := len(r.words) - r.wordIdx; n > 0 {
		return diag.ExtraWords(n, r.blame)
	}
	if n := len(r.pos) - r.posIdx; n > 0 {
		return diag.ExtraPos(n, r.blame)
	}
	if len(r.named) > 0 {
		names := make([]string, 0, len(r.named))
		for k := range r.named {
			names = append(names, k)
		}
		sort.Strings(names)
		return diag.ExtraNamed(names, r.blame)
	}
	if r.block != nil && !r.blockTaken {
		return diag.ExtraBlock(r.blame)
	}
	return nil
}
