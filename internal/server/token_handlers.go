package server

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ell/internal/lang"
	"ell/internal/text"
)

// tokenTypeLegend is the legend advertised at initialize. Positions must
// line up with tokenKindIndex.
var tokenTypeLegend = []string{"function", "variable", "parameter", "struct", "property"}

func tokenKindIndex(kind lang.SymbolKind) protocol.UInteger {
	switch kind {
	case lang.SymbolFunction:
		return 0
	case lang.SymbolVariable:
		return 1
	case lang.SymbolParameter:
		return 2
	case lang.SymbolStruct:
		return 3
	default:
		return 4 // field -> "property"
	}
}

func (s *Server) textDocumentSemanticTokensFull(
	context *glsp.Context,
	params *protocol.SemanticTokensParams,
) (*protocol.SemanticTokens, error) {
	doc, ok := s.docs.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return buildTokens(doc.Buffer, collectTokens(doc.Analysis, nil)), nil
}

func (s *Server) textDocumentSemanticTokensRange(
	context *glsp.Context,
	params *protocol.SemanticTokensRangeParams,
) (*protocol.SemanticTokens, error) {
	doc, ok := s.docs.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	start, ok := positionOffset(doc.Buffer, params.Range.Start)
	if !ok {
		return nil, nil
	}
	end, ok := positionOffset(doc.Buffer, params.Range.End)
	if !ok {
		return nil, nil
	}

	// Start-offset filtering only: a token reaching into the range from
	// before it is excluded, one starting inside and running past the end
	// is kept whole.
	include := func(offset int) bool { return offset >= start && offset < end }
	return buildTokens(doc.Buffer, collectTokens(doc.Analysis, include)), nil
}

type tokenEntry struct {
	span lang.Span
	kind protocol.UInteger
}

// collectTokens lists one entry per symbol definition and one per resolved
// reference, definitions first. Unresolved references contribute nothing.
// include filters by span start; nil keeps everything.
func collectTokens(analysis *lang.Analysis, include func(int) bool) []tokenEntry {
	var entries []tokenEntry
	add := func(span lang.Span, kind lang.SymbolKind) {
		if include != nil && !include(span.Start) {
			return
		}
		entries = append(entries, tokenEntry{span: span, kind: tokenKindIndex(kind)})
	}

	for id, sym := range analysis.Symbols {
		span, ok := analysis.SymbolSpan(lang.SymbolID(id))
		if !ok {
			continue
		}
		add(span, sym.Kind)
	}
	for id := range analysis.ReferenceSpans {
		ref := lang.RefID(id)
		sym, ok := analysis.ResolvedSymbol(ref)
		if !ok {
			continue
		}
		symbol, ok := analysis.Symbol(sym)
		if !ok {
			continue
		}
		span, ok := analysis.ReferenceSpan(ref)
		if !ok {
			continue
		}
		add(span, symbol.Kind)
	}
	return entries
}

// buildTokens sorts entries by start offset (stable, so definitions win
// ties), then delta-encodes them in the semantic tokens wire format. An
// entry whose offset does not translate is dropped, not fatal.
func buildTokens(buffer *text.Buffer, entries []tokenEntry) *protocol.SemanticTokens {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].span.Start < entries[j].span.Start
	})

	data := make([]protocol.UInteger, 0, len(entries)*5)
	prevLine, prevStart := 0, 0
	for _, entry := range entries {
		line, col, ok := buffer.PositionFor(entry.span.Start)
		if !ok {
			continue
		}
		deltaLine := line - prevLine
		deltaStart := col
		if deltaLine == 0 {
			deltaStart = col - prevStart
		}
		length := buffer.U16Len(entry.span.Start, entry.span.End)
		data = append(data,
			protocol.UInteger(deltaLine),
			protocol.UInteger(deltaStart),
			protocol.UInteger(length),
			entry.kind,
			0,
		)
		prevLine, prevStart = line, col
	}
	return &protocol.SemanticTokens{Data: data}
}
