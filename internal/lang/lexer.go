package lang

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Lexer scans L source text into tokens. It never fails: unknown input
// becomes ILLEGAL tokens plus diagnostics, and scanning continues.
type Lexer struct {
	src      string
	start    int // start offset of current token
	cur      int // current offset
	toks     []Token
	diags    []Diagnostic
	comments []Span
}

// NewLexer creates a lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Scan tokenizes the whole source. The returned slice always ends with an
// EOF token whose span sits at the end of the text.
func (l *Lexer) Scan() ([]Token, []Diagnostic) {
	for {
		l.skipTrivia()
		l.start = l.cur
		if l.atEnd() {
			break
		}
		l.next()
	}
	l.toks = append(l.toks, Token{Kind: EOF, Start: len(l.src), End: len(l.src)})
	return l.toks, l.diags
}

// Comments reports the spans of line comments seen by Scan, in source order.
func (l *Lexer) Comments() []Span {
	return l.comments
}

func (l *Lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekAt(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

// skipTrivia consumes whitespace and line comments.
func (l *Lexer) skipTrivia() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.cur++
		case '/':
			if l.peekAt(1) != '/' {
				return
			}
			start := l.cur
			for !l.atEnd() && l.peek() != '\n' {
				l.cur++
			}
			l.comments = append(l.comments, Span{Start: start, End: l.cur})
		default:
			return
		}
	}
}

func (l *Lexer) emit(kind TokenKind) {
	l.toks = append(l.toks, Token{
		Kind:   kind,
		Lexeme: l.src[l.start:l.cur],
		Start:  l.start,
		End:    l.cur,
	})
}

func (l *Lexer) errorf(span Span, format string, args ...any) {
	l.diags = append(l.diags, Diagnostic{
		Span:    span,
		Message: fmt.Sprintf(format, args...),
		Phase:   PhaseSyntax,
	})
}

func (l *Lexer) next() {
	c := l.src[l.cur]
	l.cur++

	switch c {
	case '(':
		l.emit(LPAREN)
	case ')':
		l.emit(RPAREN)
	case '{':
		l.emit(LBRACE)
	case '}':
		l.emit(RBRACE)
	case ',':
		l.emit(COMMA)
	case ':':
		l.emit(COLON)
	case ';':
		l.emit(SEMI)
	case '.':
		l.emit(DOT)
	case '+':
		l.emit(PLUS)
	case '*':
		l.emit(STAR)
	case '/':
		l.emit(SLASH)
	case '-':
		if l.peek() == '>' {
			l.cur++
			l.emit(ARROW)
		} else {
			l.emit(MINUS)
		}
	case '=':
		if l.peek() == '=' {
			l.cur++
			l.emit(EQ)
		} else {
			l.emit(ASSIGN)
		}
	case '!':
		if l.peek() == '=' {
			l.cur++
			l.emit(NEQ)
		} else {
			l.emit(BANG)
		}
	case '<':
		if l.peek() == '=' {
			l.cur++
			l.emit(LTEQ)
		} else {
			l.emit(LT)
		}
	case '>':
		if l.peek() == '=' {
			l.cur++
			l.emit(GTEQ)
		} else {
			l.emit(GT)
		}
	case '"':
		l.scanString()
	default:
		if c >= '0' && c <= '9' {
			l.scanNumber()
			return
		}
		// Multi-byte runes: back up and decode properly.
		l.cur--
		r, size := utf8.DecodeRuneInString(l.src[l.cur:])
		if isIdentStart(r) {
			l.scanIdent()
			return
		}
		l.cur += size
		l.emit(ILLEGAL)
		l.errorf(Span{Start: l.start, End: l.cur}, "unexpected character %q", r)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) scanIdent() {
	for !l.atEnd() {
		r, size := utf8.DecodeRuneInString(l.src[l.cur:])
		if !isIdentPart(r) {
			break
		}
		l.cur += size
	}
	word := l.src[l.start:l.cur]
	if kind, ok := keywords[word]; ok {
		l.emit(kind)
		return
	}
	l.emit(IDENT)
}

func (l *Lexer) scanNumber() {
	for !l.atEnd() && l.peek() >= '0' && l.peek() <= '9' {
		l.cur++
	}
	kind := INT
	if l.peek() == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
		kind = FLOAT
		l.cur++ // '.'
		for !l.atEnd() && l.peek() >= '0' && l.peek() <= '9' {
			l.cur++
		}
	}
	l.emit(kind)
}

// scanString consumes a double-quoted literal with \\, \", \n, \t escapes.
// An unterminated literal runs to the end of the line and is reported.
func (l *Lexer) scanString() {
	for !l.atEnd() {
		c := l.peek()
		if c == '\n' {
			break
		}
		l.cur++
		if c == '\\' && !l.atEnd() {
			l.cur++
			continue
		}
		if c == '"' {
			l.emit(STRING)
			return
		}
	}
	l.emit(ILLEGAL)
	l.errorf(Span{Start: l.start, End: l.cur}, "unterminated string literal")
}
