package server

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ell/internal/lang"
	"ell/internal/text"
)

func (s *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	doc, ok := s.docs.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	offset, ok := positionOffset(doc.Buffer, params.Position)
	if !ok {
		return nil, nil
	}

	if node, ok := lang.NodeAt(doc.Analysis.File, offset).(*lang.FieldExpr); ok {
		if items, ok := fieldCompletions(doc.Analysis, node); ok {
			return items, nil
		}
	}
	return symbolCompletions(doc.Analysis, doc.Buffer), nil
}

// fieldCompletions offers the fields of the struct the access chain lands
// on. A base that is not a struct-typed name, a missing field, or a
// non-struct link in the chain resolves to nothing.
func fieldCompletions(
	analysis *lang.Analysis,
	node *lang.FieldExpr,
) ([]protocol.CompletionItem, bool) {
	base, path, ok := fieldPath(node)
	if !ok {
		return nil, false
	}

	ref, ok := analysis.ReferenceAt(base.Span().Start)
	if !ok {
		return nil, false
	}
	sym, ok := analysis.ResolvedSymbol(ref)
	if !ok {
		return nil, false
	}
	symbol, ok := analysis.Symbol(sym)
	if !ok || !symbol.Type.IsStruct() {
		return nil, false
	}

	structID := symbol.Type.Struct
	for _, name := range path {
		def, ok := analysis.Struct(structID)
		if !ok {
			return nil, false
		}
		field, ok := def.Field(name)
		if !ok || !field.Type.IsStruct() {
			return nil, false
		}
		structID = field.Type.Struct
	}

	def, ok := analysis.Struct(structID)
	if !ok {
		return nil, false
	}

	kind := protocol.CompletionItemKindField
	items := make([]protocol.CompletionItem, 0, len(def.Fields))
	for _, field := range def.Fields {
		detail := ": " + analysis.FormatType(field.Type)
		items = append(items, protocol.CompletionItem{
			Label:  field.Name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items, true
}

// fieldPath walks the access chain down to its base name, returning the
// intermediate field names in source order. The chain head's own name is
// not part of the path: it is the thing being completed.
func fieldPath(node *lang.FieldExpr) (*lang.NameExpr, []string, bool) {
	var names []string
	cur := node.X
	for {
		switch x := cur.(type) {
		case *lang.NameExpr:
			for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
				names[i], names[j] = names[j], names[i]
			}
			return x, names, true
		case *lang.FieldExpr:
			names = append(names, x.Name)
			cur = x.X
		default:
			return nil, nil, false
		}
	}
}

// symbolCompletions offers every variable, function, and struct in the
// document, with no scope or shadowing filtering. Labels come from the
// declaration's own source text; a span that does not slice drops its
// candidate.
func symbolCompletions(analysis *lang.Analysis, buffer *text.Buffer) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	for id, sym := range analysis.Symbols {
		var kind protocol.CompletionItemKind
		var detail *string
		switch sym.Kind {
		case lang.SymbolVariable:
			kind = protocol.CompletionItemKindVariable
			d := ": " + analysis.FormatType(sym.Type)
			detail = &d
		case lang.SymbolFunction:
			kind = protocol.CompletionItemKindFunction
		case lang.SymbolStruct:
			kind = protocol.CompletionItemKindStruct
		default:
			continue
		}

		span, ok := analysis.SymbolSpan(lang.SymbolID(id))
		if !ok || span.Start >= span.End {
			continue
		}
		label, ok := buffer.Slice(span.Start, span.End)
		if !ok {
			continue
		}
		items = append(items, protocol.CompletionItem{Label: label, Kind: &kind, Detail: detail})
	}
	return items
}
