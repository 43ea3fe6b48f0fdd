package lang

// Node is any element of the syntax tree.
type Node interface {
	Span() Span
}

// Item is a top-level declaration.
type Item interface {
	Node
	itemNode()
}

// Stmt is a statement inside a function body (top-level lets qualify too).
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Ident is a defining or referencing occurrence of a name.
type Ident struct {
	Name string
	span Span
}

func (i Ident) Span() Span { return i.span }

// TypeRef is a type name in source (primitive or struct).
type TypeRef struct {
	Name string
	span Span
}

func (t TypeRef) Span() Span { return t.span }

// File is the root of the tree.
type File struct {
	Items []Item
	span  Span
}

func (f *File) Span() Span { return f.span }

// StructDecl is "struct Name { field: Type, ... }".
type StructDecl struct {
	Name   Ident
	Fields []FieldDecl
	span   Span
}

// FieldDecl is one "name: Type" entry of a struct declaration.
type FieldDecl struct {
	Name Ident
	Type TypeRef
}

func (d *StructDecl) Span() Span { return d.span }
func (d *StructDecl) itemNode()  {}

// FnDecl is "fn name(params) -> Type { ... }".
type FnDecl struct {
	Name   Ident
	Params []ParamDecl
	Result *TypeRef // nil when the function returns nothing
	Body   *Block
	span   Span
}

// ParamDecl is one "name: Type" parameter.
type ParamDecl struct {
	Name Ident
	Type TypeRef
}

func (d *FnDecl) Span() Span { return d.span }
func (d *FnDecl) itemNode()  {}

// Block is a brace-enclosed statement list.
type Block struct {
	Stmts []Stmt
	span  Span
}

func (b *Block) Span() Span { return b.span }

// LetStmt is "let name: Type = expr;". Valid at top level and in bodies.
type LetStmt struct {
	Name  Ident
	Type  *TypeRef // nil when the type is inferred
	Value Expr
	span  Span
}

func (s *LetStmt) Span() Span { return s.span }
func (s *LetStmt) stmtNode()  {}
func (s *LetStmt) itemNode()  {}

// ReturnStmt is "return expr?;".
type ReturnStmt struct {
	Value Expr // nil for a bare return
	span  Span
}

func (s *ReturnStmt) Span() Span { return s.span }
func (s *ReturnStmt) stmtNode()  {}

// AssignStmt is "target = expr;".
type AssignStmt struct {
	Target Expr
	Value  Expr
	span   Span
}

func (s *AssignStmt) Span() Span { return s.span }
func (s *AssignStmt) stmtNode()  {}

// ExprStmt is an expression at statement position.
type ExprStmt struct {
	X    Expr
	span Span
}

func (s *ExprStmt) Span() Span { return s.span }
func (s *ExprStmt) stmtNode()  {}

// BadStmt marks a region the parser skipped during recovery.
type BadStmt struct {
	span Span
}

func (s *BadStmt) Span() Span { return s.span }
func (s *BadStmt) stmtNode()  {}

// NameExpr is a plain name use.
type NameExpr struct {
	Name string
	span Span
}

func (e *NameExpr) Span() Span { return e.span }
func (e *NameExpr) exprNode()  {}

// FieldExpr is "x.name". Name is empty while the user is still typing
// after the dot; the node survives so completion has something to stand on.
type FieldExpr struct {
	X        Expr
	Name     string
	NameSpan Span
	span     Span
}

func (e *FieldExpr) Span() Span { return e.span }
func (e *FieldExpr) exprNode()  {}

// CallExpr is "fn(args)".
type CallExpr struct {
	Fn   Expr
	Args []Expr
	span Span
}

func (e *CallExpr) Span() Span { return e.span }
func (e *CallExpr) exprNode()  {}

// StructLit is "Name { field: expr, ... }".
type StructLit struct {
	Name     string
	NameSpan Span
	Inits    []FieldInit
	span     Span
}

// FieldInit is one "name: expr" entry of a struct literal.
type FieldInit struct {
	Name     string
	NameSpan Span
	Value    Expr
}

func (e *StructLit) Span() Span { return e.span }
func (e *StructLit) exprNode()  {}

// LitKind distinguishes literal expressions.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
)

// LitExpr is a literal. Raw keeps the exact source text.
type LitExpr struct {
	Kind LitKind
	Raw  string
	span Span
}

func (e *LitExpr) Span() Span { return e.span }
func (e *LitExpr) exprNode()  {}

// UnaryExpr is "-x" or "!x".
type UnaryExpr struct {
	Op   TokenKind
	X    Expr
	span Span
}

func (e *UnaryExpr) Span() Span { return e.span }
func (e *UnaryExpr) exprNode()  {}

// BinaryExpr is "x op y".
type BinaryExpr struct {
	Op   TokenKind
	X    Expr
	Y    Expr
	span Span
}

func (e *BinaryExpr) Span() Span { return e.span }
func (e *BinaryExpr) exprNode()  {}

// ParenExpr is "(x)".
type ParenExpr struct {
	X    Expr
	span Span
}

func (e *ParenExpr) Span() Span { return e.span }
func (e *ParenExpr) exprNode()  {}

// BadExpr marks a position where an expression failed to parse.
type BadExpr struct {
	span Span
}

func (e *BadExpr) Span() Span { return e.span }
func (e *BadExpr) exprNode()  {}

// NodeAt returns the smallest item, statement, or expression enclosing the
// offset, or nil. The right edge counts as inside so the node the user just
// finished typing still matches (a cursor sitting directly after "p." lands
// on the field expression).
func NodeAt(file *File, offset int) Node {
	var best Node
	var visit func(n Node)
	visit = func(n Node) {
		if n == nil {
			return
		}
		sp := n.Span()
		if offset < sp.Start || offset > sp.End {
			return
		}
		best = n
		for _, child := range children(n) {
			visit(child)
		}
	}
	for _, item := range file.Items {
		visit(item)
	}
	return best
}

// children lists the sub-nodes NodeAt descends into. Idents and type names
// are deliberately absent: the enclosing expression is the useful answer.
func children(n Node) []Node {
	switch n := n.(type) {
	case *StructDecl, *BadStmt, *BadExpr, *NameExpr, *LitExpr:
		return nil
	case *FnDecl:
		if n.Body == nil {
			return nil
		}
		return []Node{n.Body}
	case *Block:
		out := make([]Node, len(n.Stmts))
		for i, s := range n.Stmts {
			out[i] = s
		}
		return out
	case *LetStmt:
		if n.Value == nil {
			return nil
		}
		return []Node{n.Value}
	case *ReturnStmt:
		if n.Value == nil {
			return nil
		}
		return []Node{n.Value}
	case *AssignStmt:
		return []Node{n.Target, n.Value}
	case *ExprStmt:
		return []Node{n.X}
	case *FieldExpr:
		return []Node{n.X}
	case *CallExpr:
		out := []Node{n.Fn}
		for _, a := range n.Args {
			out = append(out, a)
		}
		return out
	case *StructLit:
		var out []Node
		for _, init := range n.Inits {
			if init.Value != nil {
				out = append(out, init.Value)
			}
		}
		return out
	case *UnaryExpr:
		return []Node{n.X}
	case *BinaryExpr:
		return []Node{n.X, n.Y}
	case *ParenExpr:
		return []Node{n.X}
	}
	return nil
}
