package lang

import "fmt"

// Parser builds a File from a token stream. It recovers at statement
// granularity: a broken statement is reported, skipped to the next ';' or
// '}', and parsing continues, so damaged documents still produce a tree.
type Parser struct {
	toks  []Token
	pos   int
	diags []Diagnostic
}

// Parse lexes and parses the source.
func Parse(src string) (*File, []Diagnostic) {
	toks, diags := NewLexer(src).Scan()
	p := &Parser{toks: toks, diags: diags}
	file := p.parseFile()
	return file, p.diags
}

func (p *Parser) cur() Token { return p.toks[p.pos] }

func (p *Parser) at(kind TokenKind) bool { return p.cur().Kind == kind }

func (p *Parser) advance() Token {
	tok := p.toks[p.pos]
	if !p.at(EOF) {
		p.pos++
	}
	return tok
}

func (p *Parser) errorf(span Span, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		Span:    span,
		Message: fmt.Sprintf(format, args...),
		Phase:   PhaseSyntax,
	})
}

// expect consumes a token of the given kind or reports what it found.
func (p *Parser) expect(kind TokenKind) (Token, bool) {
	if p.at(kind) {
		return p.advance(), true
	}
	p.errorf(p.cur().Span(), "expected %s, found %s", kind, p.cur().Kind)
	return p.cur(), false
}

// skipTo advances until one of the kinds (or EOF), consuming a trailing ';'.
func (p *Parser) skipTo(kinds ...TokenKind) {
	for !p.at(EOF) {
		for _, k := range kinds {
			if p.at(k) {
				if k == SEMI {
					p.advance()
				}
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) parseFile() *File {
	file := &File{}
	for !p.at(EOF) {
		switch p.cur().Kind {
		case STRUCT:
			file.Items = append(file.Items, p.parseStructDecl())
		case FN:
			file.Items = append(file.Items, p.parseFnDecl())
		case LET:
			file.Items = append(file.Items, p.parseLetStmt())
		default:
			p.errorf(p.cur().Span(), "expected declaration, found %s", p.cur().Kind)
			p.advance()
		}
	}
	file.span = Span{Start: 0, End: p.cur().End}
	return file
}

func (p *Parser) parseIdent() Ident {
	if tok, ok := p.expect(IDENT); ok {
		return Ident{Name: tok.Lexeme, span: tok.Span()}
	}
	// Zero-width placeholder at the current position.
	at := p.cur().Start
	return Ident{span: Span{Start: at, End: at}}
}

func (p *Parser) parseTypeRef() TypeRef {
	if tok, ok := p.expect(IDENT); ok {
		return TypeRef{Name: tok.Lexeme, span: tok.Span()}
	}
	at := p.cur().Start
	return TypeRef{span: Span{Start: at, End: at}}
}

func (p *Parser) parseStructDecl() *StructDecl {
	kw := p.advance() // "struct"
	decl := &StructDecl{Name: p.parseIdent()}
	end := decl.Name.Span().End

	if _, ok := p.expect(LBRACE); !ok {
		decl.span = Span{Start: kw.Start, End: end}
		return decl
	}
	for !p.at(RBRACE) && !p.at(EOF) {
		name, ok := p.expect(IDENT)
		if !ok {
			p.skipTo(COMMA, RBRACE)
			if p.at(COMMA) {
				p.advance()
			}
			continue
		}
		if _, ok := p.expect(COLON); !ok {
			p.skipTo(COMMA, RBRACE)
			if p.at(COMMA) {
				p.advance()
			}
			continue
		}
		decl.Fields = append(decl.Fields, FieldDecl{
			Name: Ident{Name: name.Lexeme, span: name.Span()},
			Type: p.parseTypeRef(),
		})
		if !p.at(COMMA) {
			break
		}
		p.advance()
	}
	closing, _ := p.expect(RBRACE)
	decl.span = Span{Start: kw.Start, End: closing.End}
	return decl
}

func (p *Parser) parseFnDecl() *FnDecl {
	kw := p.advance() // "fn"
	decl := &FnDecl{Name: p.parseIdent()}

	if _, ok := p.expect(LPAREN); ok {
		for !p.at(RPAREN) && !p.at(EOF) {
			name, ok := p.expect(IDENT)
			if !ok {
				p.skipTo(COMMA, RPAREN)
				if p.at(COMMA) {
					p.advance()
				}
				continue
			}
			if _, ok := p.expect(COLON); !ok {
				p.skipTo(COMMA, RPAREN)
				if p.at(COMMA) {
					p.advance()
				}
				continue
			}
			decl.Params = append(decl.Params, ParamDecl{
				Name: Ident{Name: name.Lexeme, span: name.Span()},
				Type: p.parseTypeRef(),
			})
			if !p.at(COMMA) {
				break
			}
			p.advance()
		}
		p.expect(RPAREN)
	}
	if p.at(ARROW) {
		p.advance()
		ret := p.parseTypeRef()
		decl.Result = &ret
	}

	end := p.cur().Start
	if p.at(LBRACE) {
		decl.Body = p.parseBlock()
		end = decl.Body.Span().End
	} else {
		p.errorf(p.cur().Span(), "expected function body, found %s", p.cur().Kind)
	}
	decl.span = Span{Start: kw.Start, End: end}
	return decl
}

func (p *Parser) parseBlock() *Block {
	open := p.advance() // "{"
	block := &Block{}
	for !p.at(RBRACE) && !p.at(EOF) {
		block.Stmts = append(block.Stmts, p.parseStmt())
	}
	closing, _ := p.expect(RBRACE)
	block.span = Span{Start: open.Start, End: closing.End}
	return block
}

func (p *Parser) parseStmt() Stmt {
	switch p.cur().Kind {
	case LET:
		return p.parseLetStmt()
	case RETURN:
		return p.parseReturnStmt()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseLetStmt() *LetStmt {
	kw := p.advance() // "let"
	stmt := &LetStmt{Name: p.parseIdent()}

	if p.at(COLON) {
		p.advance()
		ty := p.parseTypeRef()
		stmt.Type = &ty
	}
	if _, ok := p.expect(ASSIGN); !ok {
		p.skipTo(SEMI, RBRACE)
		stmt.span = Span{Start: kw.Start, End: p.cur().Start}
		return stmt
	}
	stmt.Value = p.parseExpr()

	end := stmt.Value.Span().End
	if semi, ok := p.expect(SEMI); ok {
		end = semi.End
	} else {
		p.skipTo(SEMI, RBRACE)
	}
	stmt.span = Span{Start: kw.Start, End: end}
	return stmt
}

func (p *Parser) parseReturnStmt() *ReturnStmt {
	kw := p.advance() // "return"
	stmt := &ReturnStmt{}
	end := kw.End
	if !p.at(SEMI) && !p.at(RBRACE) && !p.at(EOF) {
		stmt.Value = p.parseExpr()
		end = stmt.Value.Span().End
	}
	if semi, ok := p.expect(SEMI); ok {
		end = semi.End
	} else {
		p.skipTo(SEMI, RBRACE)
	}
	stmt.span = Span{Start: kw.Start, End: end}
	return stmt
}

// parseSimpleStmt handles assignments and expression statements.
func (p *Parser) parseSimpleStmt() Stmt {
	start := p.cur().Start
	expr := p.parseExpr()

	if _, isBad := expr.(*BadExpr); isBad {
		p.skipTo(SEMI, RBRACE)
		return &BadStmt{span: Span{Start: start, End: p.cur().Start}}
	}

	if p.at(ASSIGN) {
		p.advance()
		value := p.parseExpr()
		end := value.Span().End
		if semi, ok := p.expect(SEMI); ok {
			end = semi.End
		} else {
			p.skipTo(SEMI, RBRACE)
		}
		return &AssignStmt{Target: expr, Value: value, span: Span{Start: start, End: end}}
	}

	end := expr.Span().End
	if semi, ok := p.expect(SEMI); ok {
		end = semi.End
	} else {
		p.skipTo(SEMI, RBRACE)
	}
	return &ExprStmt{X: expr, span: Span{Start: start, End: end}}
}

func (p *Parser) parseExpr() Expr {
	return p.parseComparison()
}

func (p *Parser) parseComparison() Expr {
	left := p.parseAdditive()
	for {
		switch p.cur().Kind {
		case EQ, NEQ, LT, LTEQ, GT, GTEQ:
			op := p.advance()
			right := p.parseAdditive()
			left = &BinaryExpr{
				Op:   op.Kind,
				X:    left,
				Y:    right,
				span: Span{Start: left.Span().Start, End: right.Span().End},
			}
		default:
			return left
		}
	}
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for p.at(PLUS) || p.at(MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &BinaryExpr{
			Op:   op.Kind,
			X:    left,
			Y:    right,
			span: Span{Start: left.Span().Start, End: right.Span().End},
		}
	}
	return left
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for p.at(STAR) || p.at(SLASH) {
		op := p.advance()
		right := p.parseUnary()
		left = &BinaryExpr{
			Op:   op.Kind,
			X:    left,
			Y:    right,
			span: Span{Start: left.Span().Start, End: right.Span().End},
		}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	if p.at(MINUS) || p.at(BANG) {
		op := p.advance()
		x := p.parseUnary()
		return &UnaryExpr{Op: op.Kind, X: x, span: Span{Start: op.Start, End: x.Span().End}}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() Expr {
	expr := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case DOT:
			dot := p.advance()
			fe := &FieldExpr{X: expr}
			if p.at(IDENT) {
				name := p.advance()
				fe.Name = name.Lexeme
				fe.NameSpan = name.Span()
				fe.span = Span{Start: expr.Span().Start, End: name.End}
			} else {
				// Incomplete access like "p." — keep the node for completion.
				p.errorf(Span{Start: dot.Start, End: dot.End}, "expected field name after '.'")
				fe.NameSpan = Span{Start: dot.End, End: dot.End}
				fe.span = Span{Start: expr.Span().Start, End: dot.End}
			}
			expr = fe
		case LPAREN:
			p.advance()
			call := &CallExpr{Fn: expr}
			for !p.at(RPAREN) && !p.at(EOF) {
				call.Args = append(call.Args, p.parseExpr())
				if !p.at(COMMA) {
					break
				}
				p.advance()
			}
			closing, ok := p.expect(RPAREN)
			end := closing.End
			if !ok {
				end = p.cur().Start
			}
			call.span = Span{Start: expr.Span().Start, End: end}
			expr = call
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() Expr {
	tok := p.cur()
	switch tok.Kind {
	case INT:
		p.advance()
		return &LitExpr{Kind: LitInt, Raw: tok.Lexeme, span: tok.Span()}
	case FLOAT:
		p.advance()
		return &LitExpr{Kind: LitFloat, Raw: tok.Lexeme, span: tok.Span()}
	case STRING:
		p.advance()
		return &LitExpr{Kind: LitString, Raw: tok.Lexeme, span: tok.Span()}
	case TRUE, FALSE:
		p.advance()
		return &LitExpr{Kind: LitBool, Raw: tok.Lexeme, span: tok.Span()}
	case IDENT:
		p.advance()
		if p.at(LBRACE) {
			return p.parseStructLit(tok)
		}
		return &NameExpr{Name: tok.Lexeme, span: tok.Span()}
	case LPAREN:
		open := p.advance()
		inner := p.parseExpr()
		closing, ok := p.expect(RPAREN)
		end := closing.End
		if !ok {
			end = inner.Span().End
		}
		return &ParenExpr{X: inner, span: Span{Start: open.Start, End: end}}
	default:
		p.errorf(tok.Span(), "expected expression, found %s", tok.Kind)
		return &BadExpr{span: Span{Start: tok.Start, End: tok.Start}}
	}
}

func (p *Parser) parseStructLit(name Token) *StructLit {
	lit := &StructLit{Name: name.Lexeme, NameSpan: name.Span()}
	p.advance() // "{"
	for !p.at(RBRACE) && !p.at(EOF) {
		field, ok := p.expect(IDENT)
		if !ok {
			p.skipTo(COMMA, RBRACE)
			if p.at(COMMA) {
				p.advance()
			}
			continue
		}
		if _, ok := p.expect(COLON); !ok {
			p.skipTo(COMMA, RBRACE)
			if p.at(COMMA) {
				p.advance()
			}
			continue
		}
		lit.Inits = append(lit.Inits, FieldInit{
			Name:     field.Lexeme,
			NameSpan: field.Span(),
			Value:    p.parseExpr(),
		})
		if !p.at(COMMA) {
			break
		}
		p.advance()
	}
	closing, _ := p.expect(RBRACE)
	lit.span = Span{Start: name.Start, End: closing.End}
	return lit
}
