package lang

// SymbolID indexes the symbol table of one Analysis. Ids are dense and
// stable within a single snapshot only; they mean nothing across compiles.
type SymbolID int

// RefID indexes the reference table of one Analysis.
type RefID int

// NoSymbol marks an unresolved reference.
const NoSymbol SymbolID = -1

// SymbolKind classifies a declared name.
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolVariable
	SymbolParameter
	SymbolStruct
	SymbolField
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolVariable:
		return "variable"
	case SymbolParameter:
		return "parameter"
	case SymbolStruct:
		return "struct"
	case SymbolField:
		return "field"
	default:
		return "unknown"
	}
}

// Symbol is one declared name.
type Symbol struct {
	Name string
	Kind SymbolKind
	Type Type
}

// StructDef is the layout of one struct declaration, fields in source order.
type StructDef struct {
	Name   string
	Fields []Field
}

// Field is one field of a StructDef. Sym is the field's declaration
// symbol, so use-sites can resolve to it.
type Field struct {
	Name string
	Type Type
	Sym  SymbolID
}

// Field returns the named field.
func (d *StructDef) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Analysis is the immutable semantic snapshot of one document version:
// everything the server layer needs to answer position queries. Symbols
// and SymbolSpans are parallel tables, as are References and
// ReferenceSpans. References[i] holds the resolved symbol id of reference
// i, or NoSymbol. All accessors bounds-check ids so a stale or hand-damaged
// snapshot degrades to "not found" instead of faulting.
type Analysis struct {
	File *File

	Symbols     []Symbol
	SymbolSpans []Span

	References     []SymbolID
	ReferenceSpans []Span

	SymbolIndex    *IntervalIndex
	ReferenceIndex *IntervalIndex

	Structs map[SymbolID]*StructDef

	Diagnostics []Diagnostic
}

// Compile runs the full frontend over one document.
func Compile(src string) *Analysis {
	file, diags := Parse(src)
	a := check(file)
	a.Diagnostics = append(diags, a.Diagnostics...)
	a.SymbolIndex = NewIntervalIndex(a.SymbolSpans)
	a.ReferenceIndex = NewIntervalIndex(a.ReferenceSpans)
	return a
}

// Symbol returns the symbol for an id.
func (a *Analysis) Symbol(id SymbolID) (Symbol, bool) {
	if id < 0 || int(id) >= len(a.Symbols) {
		return Symbol{}, false
	}
	return a.Symbols[id], true
}

// SymbolName returns the name for an id.
func (a *Analysis) SymbolName(id SymbolID) (string, bool) {
	sym, ok := a.Symbol(id)
	if !ok {
		return "", false
	}
	return sym.Name, true
}

// SymbolSpan returns the defining span for an id.
func (a *Analysis) SymbolSpan(id SymbolID) (Span, bool) {
	if id < 0 || int(id) >= len(a.SymbolSpans) {
		return Span{}, false
	}
	return a.SymbolSpans[id], true
}

// ReferenceSpan returns the span of a reference.
func (a *Analysis) ReferenceSpan(id RefID) (Span, bool) {
	if id < 0 || int(id) >= len(a.ReferenceSpans) {
		return Span{}, false
	}
	return a.ReferenceSpans[id], true
}

// ResolvedSymbol returns the symbol a reference resolved to, if any, and
// only if that id is still valid against the symbol table.
func (a *Analysis) ResolvedSymbol(id RefID) (SymbolID, bool) {
	if id < 0 || int(id) >= len(a.References) {
		return NoSymbol, false
	}
	sym := a.References[id]
	if sym < 0 || int(sym) >= len(a.Symbols) {
		return NoSymbol, false
	}
	return sym, true
}

// ReferenceAt finds the reference whose span covers the offset.
func (a *Analysis) ReferenceAt(offset int) (RefID, bool) {
	if a.ReferenceIndex == nil {
		return 0, false
	}
	id, _, ok := a.ReferenceIndex.Covering(offset)
	if !ok {
		return 0, false
	}
	return RefID(id), true
}

// SymbolAt finds the symbol governing the offset: the resolved symbol of a
// covering reference first, else the symbol whose defining span covers the
// offset. Reference-first order matters — a usage site may also sit inside
// some definition's span.
func (a *Analysis) SymbolAt(offset int) (SymbolID, bool) {
	if ref, ok := a.ReferenceAt(offset); ok {
		if sym, ok := a.ResolvedSymbol(ref); ok {
			return sym, true
		}
	}
	if a.SymbolIndex != nil {
		if id, _, ok := a.SymbolIndex.Covering(offset); ok {
			sym := SymbolID(id)
			if _, ok := a.Symbol(sym); ok {
				return sym, true
			}
		}
	}
	return NoSymbol, false
}

// SymbolReferences returns the ids of every reference resolved to the
// symbol, in the order references were recorded during compilation.
func (a *Analysis) SymbolReferences(id SymbolID) []RefID {
	var refs []RefID
	for i, sym := range a.References {
		if sym == id {
			refs = append(refs, RefID(i))
		}
	}
	return refs
}

// Struct returns the layout for a struct symbol id.
func (a *Analysis) Struct(id SymbolID) (*StructDef, bool) {
	def, ok := a.Structs[id]
	return def, ok
}

// HasSyntaxErrors reports whether lexing or parsing failed anywhere.
func (a *Analysis) HasSyntaxErrors() bool {
	for _, d := range a.Diagnostics {
		if d.Phase == PhaseSyntax {
			return true
		}
	}
	return false
}
