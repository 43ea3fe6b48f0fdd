package lang

import (
	"strings"
	"unicode/utf8"
)

// DefaultFormatWidth is the line width used when none is configured.
const DefaultFormatWidth = 80

// Formatter re-prints a parsed file in canonical form: four-space indents,
// one field or statement per line, a blank line between items, and call
// arguments or struct literal fields broken one per line when the line
// would run past the configured width. Line comments are kept and attached
// above the statement or item that follows them. Formatting a formatted
// file reproduces it unchanged.
type Formatter struct {
	width int
}

// NewFormatter creates a formatter for the given line width. Widths below
// one fall back to DefaultFormatWidth.
func NewFormatter(width int) *Formatter {
	if width < 1 {
		width = DefaultFormatWidth
	}
	return &Formatter{width: width}
}

// Format renders the file. The source text is consulted only for comment
// text; all other layout comes from the tree.
func (f *Formatter) Format(file *File, src string) string {
	lx := NewLexer(src)
	lx.Scan()

	p := &printer{width: f.width, src: src, comments: lx.Comments()}
	p.file(file)
	return p.b.String()
}

type printer struct {
	b        strings.Builder
	width    int
	indent   int
	src      string
	comments []Span
	next     int // index of the first unprinted comment
}

const indentUnit = "    "

func (p *printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.b.WriteString(indentUnit)
	}
}

func (p *printer) line(s string) {
	p.writeIndent()
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

// flushComments prints every pending comment that starts before the given
// offset, each on its own line at the current indent.
func (p *printer) flushComments(before int) {
	for p.next < len(p.comments) && p.comments[p.next].Start < before {
		sp := p.comments[p.next]
		p.line(strings.TrimRight(p.src[sp.Start:sp.End], " \t"))
		p.next++
	}
}

func (p *printer) file(file *File) {
	for i, item := range file.Items {
		if i > 0 {
			p.b.WriteByte('\n')
		}
		p.flushComments(item.Span().Start)
		p.item(item)
	}
	p.flushComments(len(p.src) + 1)
}

func (p *printer) item(item Item) {
	switch item := item.(type) {
	case *StructDecl:
		p.structDecl(item)
	case *FnDecl:
		p.fnDecl(item)
	case *LetStmt:
		p.letStmt(item)
	}
}

func (p *printer) structDecl(decl *StructDecl) {
	if len(decl.Fields) == 0 {
		p.line("struct " + decl.Name.Name + " {}")
		return
	}
	p.line("struct " + decl.Name.Name + " {")
	p.indent++
	for _, field := range decl.Fields {
		p.flushComments(field.Name.Span().Start)
		p.line(field.Name.Name + ": " + field.Type.Name + ",")
	}
	p.flushComments(decl.Span().End)
	p.indent--
	p.line("}")
}

func (p *printer) fnDecl(decl *FnDecl) {
	suffix := ""
	if decl.Result != nil {
		suffix = " -> " + decl.Result.Name
	}

	var params []string
	for _, param := range decl.Params {
		params = append(params, param.Name.Name+": "+param.Type.Name)
	}

	header := "fn " + decl.Name.Name + "(" + strings.Join(params, ", ") + ")" + suffix + " {"
	if p.fits(header) || len(params) == 0 {
		p.line(header)
	} else {
		p.line("fn " + decl.Name.Name + "(")
		p.indent++
		for _, param := range params {
			p.line(param + ",")
		}
		p.indent--
		p.line(")" + suffix + " {")
	}

	p.indent++
	if decl.Body != nil {
		p.block(decl.Body)
	}
	p.indent--
	p.line("}")
}

func (p *printer) block(block *Block) {
	for _, stmt := range block.Stmts {
		p.flushComments(stmt.Span().Start)
		p.stmt(stmt)
	}
	p.flushComments(block.Span().End)
}

func (p *printer) stmt(stmt Stmt) {
	switch stmt := stmt.(type) {
	case *LetStmt:
		p.letStmt(stmt)
	case *ReturnStmt:
		if stmt.Value == nil {
			p.line("return;")
			return
		}
		p.exprLine("return ", stmt.Value, ";")
	case *AssignStmt:
		p.exprLine(exprString(stmt.Target)+" = ", stmt.Value, ";")
	case *ExprStmt:
		p.exprLine("", stmt.X, ";")
	case *BadStmt:
		// Unparsed text survives verbatim so nothing is lost.
		p.line(strings.TrimSpace(p.src[stmt.Span().Start:stmt.Span().End]))
	}
}

func (p *printer) letStmt(stmt *LetStmt) {
	head := "let " + stmt.Name.Name
	if stmt.Type != nil {
		head += ": " + stmt.Type.Name
	}
	if stmt.Value == nil {
		p.line(head + ";")
		return
	}
	p.exprLine(head+" = ", stmt.Value, ";")
}

// exprLine prints prefix+expr+suffix on one line, breaking the expression's
// outermost call or struct literal across lines when it would not fit.
func (p *printer) exprLine(prefix string, e Expr, suffix string) {
	flat := prefix + exprString(e) + suffix
	if p.fits(flat) {
		p.line(flat)
		return
	}

	switch e := e.(type) {
	case *CallExpr:
		p.line(prefix + exprString(e.Fn) + "(")
		p.indent++
		for _, arg := range e.Args {
			p.line(exprString(arg) + ",")
		}
		p.indent--
		p.line(")" + suffix)
	case *StructLit:
		p.line(prefix + e.Name + " {")
		p.indent++
		for _, init := range e.Inits {
			p.line(init.Name + ": " + exprString(init.Value) + ",")
		}
		p.indent--
		p.line("}" + suffix)
	default:
		p.line(flat)
	}
}

func (p *printer) fits(s string) bool {
	return p.indent*len(indentUnit)+utf8.RuneCountInString(s) <= p.width
}

func exprString(e Expr) string {
	switch e := e.(type) {
	case *LitExpr:
		return e.Raw
	case *NameExpr:
		return e.Name
	case *FieldExpr:
		return exprString(e.X) + "." + e.Name
	case *CallExpr:
		var args []string
		for _, a := range e.Args {
			args = append(args, exprString(a))
		}
		return exprString(e.Fn) + "(" + strings.Join(args, ", ") + ")"
	case *StructLit:
		if len(e.Inits) == 0 {
			return e.Name + " {}"
		}
		var inits []string
		for _, init := range e.Inits {
			inits = append(inits, init.Name+": "+exprString(init.Value))
		}
		return e.Name + " { " + strings.Join(inits, ", ") + " }"
	case *UnaryExpr:
		op := "-"
		if e.Op == BANG {
			op = "!"
		}
		return op + exprString(e.X)
	case *BinaryExpr:
		return exprString(e.X) + " " + opString(e.Op) + " " + exprString(e.Y)
	case *ParenExpr:
		return "(" + exprString(e.X) + ")"
	default:
		return ""
	}
}

func opString(op TokenKind) string {
	switch op {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case EQ:
		return "=="
	case NEQ:
		return "!="
	case LT:
		return "<"
	case LTEQ:
		return "<="
	case GT:
		return ">"
	case GTEQ:
		return ">="
	default:
		return "?"
	}
}
