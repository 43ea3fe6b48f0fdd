package lang

// TokenKind represents the kind of token.
type TokenKind int

const (
	// Special
	EOF TokenKind = iota
	ILLEGAL

	// Punctuation
	LPAREN // "("
	RPAREN // ")"
	LBRACE // "{"
	RBRACE // "}"
	COMMA  // ","
	COLON  // ":"
	SEMI   // ";"
	DOT    // "."
	ARROW  // "->"

	// Operators
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	LT     // "<"
	LTEQ   // "<="
	GT     // ">"
	GTEQ   // ">="
	PLUS   // "+"
	MINUS  // "-"
	STAR   // "*"
	SLASH  // "/"
	BANG   // "!"

	// Literals & identifiers
	IDENT
	INT
	FLOAT
	STRING

	// Keywords
	STRUCT
	FN
	LET
	RETURN
	TRUE
	FALSE
)

var keywords = map[string]TokenKind{
	"struct": STRUCT,
	"fn":     FN,
	"let":    LET,
	"return": RETURN,
	"true":   TRUE,
	"false":  FALSE,
}

// Token is a lexical token with its byte span in the source.
type Token struct {
	Kind   TokenKind
	Lexeme string // raw text slice
	Start  int
	End    int
}

// Span returns the token's source span.
func (t Token) Span() Span {
	return Span{Start: t.Start, End: t.End}
}

var tokenNames = map[TokenKind]string{
	EOF:     "end of file",
	ILLEGAL: "illegal token",
	LPAREN:  "'('",
	RPAREN:  "')'",
	LBRACE:  "'{'",
	RBRACE:  "'}'",
	COMMA:   "','",
	COLON:   "':'",
	SEMI:    "';'",
	DOT:     "'.'",
	ARROW:   "'->'",
	ASSIGN:  "'='",
	EQ:      "'=='",
	NEQ:     "'!='",
	LT:      "'<'",
	LTEQ:    "'<='",
	GT:      "'>'",
	GTEQ:    "'>='",
	PLUS:    "'+'",
	MINUS:   "'-'",
	STAR:    "'*'",
	SLASH:   "'/'",
	BANG:    "'!'",
	IDENT:   "identifier",
	INT:     "integer literal",
	FLOAT:   "float literal",
	STRING:  "string literal",
	STRUCT:  "'struct'",
	FN:      "'fn'",
	LET:     "'let'",
	RETURN:  "'return'",
	TRUE:    "'true'",
	FALSE:   "'false'",
}

// String returns a human-readable name for error messages.
func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown token"
}
