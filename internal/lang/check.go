package lang

import "fmt"

// checker binds names and types over a parsed file and fills the snapshot
// tables. Symbols are declared in two passes so top-level names resolve
// regardless of declaration order: the first pass declares every struct,
// field, function, and top-level let; the second resolves signatures and
// checks bodies and initializers in source order, declaring parameters and
// locals as it meets them. Checking never stops at an error — unknown
// types silence follow-up complaints instead of cascading.
type checker struct {
	symbols     []Symbol
	symbolSpans []Span
	refs        []SymbolID
	refSpans    []Span
	structs     map[SymbolID]*StructDef
	diags       []Diagnostic

	fileScope map[string]SymbolID
	locals    []map[string]SymbolID // innermost last

	structSyms map[*StructDecl]SymbolID
	fnSyms     map[*FnDecl]SymbolID
	letSyms    map[*LetStmt]SymbolID

	result Type // expected return type of the function being checked
}

func check(file *File) *Analysis {
	c := &checker{
		structs:    make(map[SymbolID]*StructDef),
		fileScope:  make(map[string]SymbolID),
		structSyms: make(map[*StructDecl]SymbolID),
		fnSyms:     make(map[*FnDecl]SymbolID),
		letSyms:    make(map[*LetStmt]SymbolID),
	}
	c.declare(file)
	c.resolveSignatures(file)
	c.checkBodies(file)

	return &Analysis{
		File:           file,
		Symbols:        c.symbols,
		SymbolSpans:    c.symbolSpans,
		References:     c.refs,
		ReferenceSpans: c.refSpans,
		Structs:        c.structs,
		Diagnostics:    c.diags,
	}
}

func (c *checker) errorf(span Span, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Span:    span,
		Message: fmt.Sprintf(format, args...),
		Phase:   PhaseTypes,
	})
}

func (c *checker) newSymbol(kind SymbolKind, name string, span Span, ty Type) SymbolID {
	id := SymbolID(len(c.symbols))
	c.symbols = append(c.symbols, Symbol{Name: name, Kind: kind, Type: ty})
	c.symbolSpans = append(c.symbolSpans, span)
	return id
}

// declareTop adds a top-level symbol to the file scope. The first
// declaration of a name wins; later ones exist as symbols but do not bind.
func (c *checker) declareTop(kind SymbolKind, name string, span Span) SymbolID {
	id := c.newSymbol(kind, name, span, unknownType)
	if _, exists := c.fileScope[name]; exists {
		c.errorf(span, "%s redeclared", name)
		return id
	}
	c.fileScope[name] = id
	return id
}

func (c *checker) recordRef(span Span, sym SymbolID) {
	c.refs = append(c.refs, sym)
	c.refSpans = append(c.refSpans, span)
}

// --- pass one: declarations ---

func (c *checker) declare(file *File) {
	for _, item := range file.Items {
		switch item := item.(type) {
		case *StructDecl:
			c.declareStruct(item)
		case *FnDecl:
			if item.Name.Name == "" {
				continue
			}
			c.fnSyms[item] = c.declareTop(SymbolFunction, item.Name.Name, item.Name.Span())
		case *LetStmt:
			if item.Name.Name == "" {
				continue
			}
			c.letSyms[item] = c.declareTop(SymbolVariable, item.Name.Name, item.Name.Span())
		}
	}
}

func (c *checker) declareStruct(decl *StructDecl) {
	if decl.Name.Name == "" {
		return
	}
	id := c.declareTop(SymbolStruct, decl.Name.Name, decl.Name.Span())
	c.structSyms[decl] = id
	c.symbols[id].Type = structType(id)

	def := &StructDef{Name: decl.Name.Name}
	seen := make(map[string]bool)
	for _, f := range decl.Fields {
		if seen[f.Name.Name] {
			c.errorf(f.Name.Span(), "duplicate field %s in struct %s", f.Name.Name, decl.Name.Name)
		}
		seen[f.Name.Name] = true
		fieldSym := c.newSymbol(SymbolField, f.Name.Name, f.Name.Span(), unknownType)
		def.Fields = append(def.Fields, Field{Name: f.Name.Name, Sym: fieldSym})
	}
	c.structs[id] = def
}

// --- pass two: signatures ---

func (c *checker) resolveSignatures(file *File) {
	for _, item := range file.Items {
		switch item := item.(type) {
		case *StructDecl:
			id, ok := c.structSyms[item]
			if !ok {
				continue
			}
			def := c.structs[id]
			for i, f := range item.Fields {
				ty := c.resolveTypeRef(f.Type)
				def.Fields[i].Type = ty
				c.symbols[def.Fields[i].Sym].Type = ty
			}
		case *FnDecl:
			id, ok := c.fnSyms[item]
			if !ok {
				continue
			}
			fnTy := Type{Kind: TypeFunc}
			for _, p := range item.Params {
				fnTy.Params = append(fnTy.Params, c.resolveTypeRef(p.Type))
			}
			result := unitType
			if item.Result != nil {
				result = c.resolveTypeRef(*item.Result)
			}
			fnTy.Result = &result
			c.symbols[id].Type = fnTy
		}
	}
}

// resolveTypeRef maps a type name to a type. Struct names are use-sites of
// the struct symbol and are recorded as references; primitives are builtin
// and record nothing.
func (c *checker) resolveTypeRef(t TypeRef) Type {
	if t.Name == "" {
		return unknownType
	}
	if prim, ok := primitiveTypes[t.Name]; ok {
		return prim
	}
	if id, ok := c.fileScope[t.Name]; ok {
		c.recordRef(t.Span(), id)
		if c.symbols[id].Kind != SymbolStruct {
			c.errorf(t.Span(), "%s is not a type", t.Name)
			return unknownType
		}
		return structType(id)
	}
	c.recordRef(t.Span(), NoSymbol)
	c.errorf(t.Span(), "unknown type %s", t.Name)
	return unknownType
}

// --- pass three: bodies and initializers ---

func (c *checker) checkBodies(file *File) {
	for _, item := range file.Items {
		switch item := item.(type) {
		case *FnDecl:
			c.checkFn(item)
		case *LetStmt:
			id, ok := c.letSyms[item]
			if !ok {
				continue
			}
			c.symbols[id].Type = c.checkLetValue(item)
		}
	}
}

func (c *checker) checkFn(decl *FnDecl) {
	id, ok := c.fnSyms[decl]
	if !ok || decl.Body == nil {
		return
	}
	fnTy := c.symbols[id].Type

	c.pushScope()
	defer c.popScope()

	for i, p := range decl.Params {
		ty := unknownType
		if i < len(fnTy.Params) {
			ty = fnTy.Params[i]
		}
		pid := c.newSymbol(SymbolParameter, p.Name.Name, p.Name.Span(), ty)
		c.declareLocal(p.Name, pid)
	}

	c.result = unitType
	if fnTy.Result != nil {
		c.result = *fnTy.Result
	}
	c.checkBlock(decl.Body)
}

func (c *checker) pushScope() {
	c.locals = append(c.locals, make(map[string]SymbolID))
}

func (c *checker) popScope() {
	c.locals = c.locals[:len(c.locals)-1]
}

func (c *checker) declareLocal(name Ident, id SymbolID) {
	scope := c.locals[len(c.locals)-1]
	if _, exists := scope[name.Name]; exists {
		c.errorf(name.Span(), "%s redeclared in this block", name.Name)
	}
	scope[name.Name] = id
}

// lookup resolves a name through the local scopes and the file scope.
func (c *checker) lookup(name string) (SymbolID, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if id, ok := c.locals[i][name]; ok {
			return id, true
		}
	}
	id, ok := c.fileScope[name]
	return id, ok
}

func (c *checker) checkBlock(block *Block) {
	for _, stmt := range block.Stmts {
		c.checkStmt(stmt)
	}
}

func (c *checker) checkStmt(stmt Stmt) {
	switch stmt := stmt.(type) {
	case *LetStmt:
		ty := c.checkLetValue(stmt)
		if stmt.Name.Name == "" {
			return
		}
		id := c.newSymbol(SymbolVariable, stmt.Name.Name, stmt.Name.Span(), ty)
		c.declareLocal(stmt.Name, id)
	case *ReturnStmt:
		c.checkReturn(stmt)
	case *AssignStmt:
		c.checkAssign(stmt)
	case *ExprStmt:
		c.checkExpr(stmt.X)
	case *BadStmt:
		// Parser already reported it.
	}
}

// checkLetValue types one let declaration: the annotation wins when present
// and the initializer must be assignable to it; otherwise the initializer's
// type is inferred.
func (c *checker) checkLetValue(stmt *LetStmt) Type {
	declared := unknownType
	if stmt.Type != nil {
		declared = c.resolveTypeRef(*stmt.Type)
	}
	if stmt.Value == nil {
		return declared
	}
	got := c.checkExpr(stmt.Value)
	if stmt.Type == nil {
		return got
	}
	if !assignable(got, declared) {
		c.errorf(stmt.Value.Span(), "cannot assign %s to %s",
			c.typeName(got), c.typeName(declared))
	}
	return declared
}

func (c *checker) checkReturn(stmt *ReturnStmt) {
	if stmt.Value == nil {
		if c.result.Kind != TypeUnit && c.result.Kind != TypeUnknown {
			c.errorf(stmt.Span(), "missing return value")
		}
		return
	}
	got := c.checkExpr(stmt.Value)
	if c.result.Kind == TypeUnit {
		c.errorf(stmt.Value.Span(), "unexpected return value in function without a result type")
		return
	}
	if !assignable(got, c.result) {
		c.errorf(stmt.Value.Span(), "cannot return %s, expected %s",
			c.typeName(got), c.typeName(c.result))
	}
}

func (c *checker) checkAssign(stmt *AssignStmt) {
	target := c.checkExpr(stmt.Target)
	switch stmt.Target.(type) {
	case *NameExpr, *FieldExpr:
	default:
		c.errorf(stmt.Target.Span(), "cannot assign to this expression")
	}
	got := c.checkExpr(stmt.Value)
	if !assignable(got, target) {
		c.errorf(stmt.Value.Span(), "cannot assign %s to %s",
			c.typeName(got), c.typeName(target))
	}
}

func (c *checker) checkExpr(e Expr) Type {
	switch e := e.(type) {
	case *LitExpr:
		switch e.Kind {
		case LitInt:
			return intType
		case LitFloat:
			return floatType
		case LitString:
			return stringType
		default:
			return boolType
		}
	case *NameExpr:
		return c.checkName(e)
	case *FieldExpr:
		return c.checkField(e)
	case *CallExpr:
		return c.checkCall(e)
	case *StructLit:
		return c.checkStructLit(e)
	case *UnaryExpr:
		return c.checkUnary(e)
	case *BinaryExpr:
		return c.checkBinary(e)
	case *ParenExpr:
		return c.checkExpr(e.X)
	default:
		return unknownType
	}
}

func (c *checker) checkName(e *NameExpr) Type {
	id, ok := c.lookup(e.Name)
	if !ok {
		c.recordRef(e.Span(), NoSymbol)
		c.errorf(e.Span(), "undefined name %s", e.Name)
		return unknownType
	}
	c.recordRef(e.Span(), id)
	return c.symbols[id].Type
}

func (c *checker) checkField(e *FieldExpr) Type {
	base := c.checkExpr(e.X)
	if e.Name == "" {
		// Incomplete access; the parser reported the missing name.
		return unknownType
	}
	if base.Kind == TypeUnknown {
		c.recordRef(e.NameSpan, NoSymbol)
		return unknownType
	}
	if base.Kind != TypeStruct {
		c.recordRef(e.NameSpan, NoSymbol)
		c.errorf(e.NameSpan, "type %s has no fields", c.typeName(base))
		return unknownType
	}
	def, ok := c.structs[base.Struct]
	if !ok {
		c.recordRef(e.NameSpan, NoSymbol)
		return unknownType
	}
	field, ok := def.Field(e.Name)
	if !ok {
		c.recordRef(e.NameSpan, NoSymbol)
		c.errorf(e.NameSpan, "struct %s has no field %s", def.Name, e.Name)
		return unknownType
	}
	c.recordRef(e.NameSpan, field.Sym)
	return field.Type
}

func (c *checker) checkCall(e *CallExpr) Type {
	fnTy := c.checkExpr(e.Fn)
	var args []Type
	for _, a := range e.Args {
		args = append(args, c.checkExpr(a))
	}
	if fnTy.Kind == TypeUnknown {
		return unknownType
	}
	if fnTy.Kind != TypeFunc {
		c.errorf(e.Fn.Span(), "called value is not a function")
		return unknownType
	}
	if len(args) != len(fnTy.Params) {
		c.errorf(e.Span(), "wrong number of arguments: got %d, want %d",
			len(args), len(fnTy.Params))
	}
	for i := 0; i < len(args) && i < len(fnTy.Params); i++ {
		if !assignable(args[i], fnTy.Params[i]) {
			c.errorf(e.Args[i].Span(), "cannot use %s as %s in call",
				c.typeName(args[i]), c.typeName(fnTy.Params[i]))
		}
	}
	if fnTy.Result == nil {
		return unitType
	}
	return *fnTy.Result
}

func (c *checker) checkStructLit(e *StructLit) Type {
	id, ok := c.fileScope[e.Name]
	if !ok {
		c.recordRef(e.NameSpan, NoSymbol)
		c.errorf(e.NameSpan, "undefined name %s", e.Name)
		for _, init := range e.Inits {
			c.recordRef(init.NameSpan, NoSymbol)
			if init.Value != nil {
				c.checkExpr(init.Value)
			}
		}
		return unknownType
	}
	c.recordRef(e.NameSpan, id)
	if c.symbols[id].Kind != SymbolStruct {
		c.errorf(e.NameSpan, "%s is not a struct", e.Name)
		for _, init := range e.Inits {
			c.recordRef(init.NameSpan, NoSymbol)
			if init.Value != nil {
				c.checkExpr(init.Value)
			}
		}
		return unknownType
	}
	def := c.structs[id]
	for _, init := range e.Inits {
		field, ok := def.Field(init.Name)
		if !ok {
			c.recordRef(init.NameSpan, NoSymbol)
			c.errorf(init.NameSpan, "struct %s has no field %s", def.Name, init.Name)
			if init.Value != nil {
				c.checkExpr(init.Value)
			}
			continue
		}
		c.recordRef(init.NameSpan, field.Sym)
		if init.Value == nil {
			continue
		}
		got := c.checkExpr(init.Value)
		if !assignable(got, field.Type) {
			c.errorf(init.Value.Span(), "cannot use %s as %s for field %s",
				c.typeName(got), c.typeName(field.Type), init.Name)
		}
	}
	return structType(id)
}

func (c *checker) checkUnary(e *UnaryExpr) Type {
	ty := c.checkExpr(e.X)
	if ty.Kind == TypeUnknown {
		return unknownType
	}
	switch e.Op {
	case MINUS:
		if ty.Kind == TypeInt || ty.Kind == TypeFloat {
			return ty
		}
		c.errorf(e.X.Span(), "operator '-' requires a numeric operand, got %s", c.typeName(ty))
	case BANG:
		if ty.Kind == TypeBool {
			return boolType
		}
		c.errorf(e.X.Span(), "operator '!' requires a Bool operand, got %s", c.typeName(ty))
	}
	return unknownType
}

func (c *checker) checkBinary(e *BinaryExpr) Type {
	left := c.checkExpr(e.X)
	right := c.checkExpr(e.Y)
	if left.Kind == TypeUnknown || right.Kind == TypeUnknown {
		if e.Op == EQ || e.Op == NEQ || e.Op == LT || e.Op == LTEQ || e.Op == GT || e.Op == GTEQ {
			return boolType
		}
		return unknownType
	}

	switch e.Op {
	case PLUS:
		if left.Kind == TypeString && right.Kind == TypeString {
			return stringType
		}
		fallthrough
	case MINUS, STAR, SLASH:
		if (left.Kind == TypeInt || left.Kind == TypeFloat) && left.Kind == right.Kind {
			return left
		}
		c.errorf(e.Span(), "mismatched operand types %s and %s",
			c.typeName(left), c.typeName(right))
		return unknownType
	case EQ, NEQ:
		if !left.equal(right) {
			c.errorf(e.Span(), "cannot compare %s with %s",
				c.typeName(left), c.typeName(right))
		}
		return boolType
	case LT, LTEQ, GT, GTEQ:
		ordered := left.Kind == TypeInt || left.Kind == TypeFloat || left.Kind == TypeString
		if !ordered || left.Kind != right.Kind {
			c.errorf(e.Span(), "cannot order %s and %s",
				c.typeName(left), c.typeName(right))
		}
		return boolType
	default:
		return unknownType
	}
}

// typeName formats a type for diagnostics without needing the finished
// Analysis: struct names are read from the working symbol table.
func (c *checker) typeName(t Type) string {
	if t.Kind == TypeStruct {
		if int(t.Struct) >= 0 && int(t.Struct) < len(c.symbols) {
			return c.symbols[t.Struct].Name
		}
		return "?"
	}
	a := &Analysis{Symbols: c.symbols}
	return a.FormatType(t)
}
