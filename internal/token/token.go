package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT   = "IDENT"   // add, foobar, x, y, ...
	WORD    = "WORD"    // hello, :target (argv entries)
	NUMBER  = "NUMBER"  // 1343456
	STRING  = "STRING"  // "foobar"
	REF     = "REF"     // Ref type annotation on a word param
	PARAM   = "PARAM"   // a declared parameter name
	NAMEDEQ = "NAMEDEQ" // flag = value in an argument list

	// Operators
	ASSIGN = "="
	PLUS   = "+"

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	FUNC   = "FUNC"
	PROC   = "PROC"
	TRUE   = "TRUE"
	FALSE  = "FALSE"
	NULL   = "NULL"
	RETURN = "RETURN"
	EXIT   = "EXIT"
	SETVAR = "SETVAR"
	SETREF = "SETREF"
	EVAL   = "EVAL"
)

// RefSigil marks an argv word as passed by reference to an out-param.
const RefSigil = ":"

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
}

// NoToken is the zero location; diagnostics without a source index render without context lines.
var NoToken = Token{Type: ILLEGAL, Position: -1}

func (t Token) IsValid() bool {
	return t.Position >= 0 && t.Type != ""
}

var keywords = map[string]TokenType{
	// constants
	"null":  NULL,
	"true":  TRUE,
	"false": FALSE,

	// declarations
	"func": FUNC,
	"proc": PROC,
	"Ref":  REF,

	// flow control
	"return": RETURN,
	"exit":   EXIT,

	// assignment
	"set":    SETVAR,
	"setref": SETREF,

	"eval": EVAL,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
