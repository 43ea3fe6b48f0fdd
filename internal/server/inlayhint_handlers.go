package server

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ell/internal/lang"
	"ell/internal/text"
)

func (s *Server) textDocumentInlayHint(
	context *glsp.Context,
	params *InlayHintParams,
) ([]InlayHint, error) {
	uri := params.TextDocument.URI
	doc, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	kind := InlayHintKindType
	var hints []InlayHint
	for id, sym := range doc.Analysis.Symbols {
		if sym.Kind != lang.SymbolVariable || sym.Type.Kind == lang.TypeUnknown {
			continue
		}
		span, ok := doc.Analysis.SymbolSpan(lang.SymbolID(id))
		if !ok {
			continue
		}
		pos, ok := offsetPosition(doc.Buffer, span.End)
		if !ok {
			continue
		}

		hints = append(hints, InlayHint{
			Position:    pos,
			Label:       hintLabel(doc.Analysis, doc.Buffer, uri, sym.Type),
			Kind:        &kind,
			PaddingLeft: &protocol.True,
		})
	}
	return hints, nil
}

// hintLabel renders ": T". For struct types the name becomes its own label
// part linking back to the struct's definition.
func hintLabel(
	analysis *lang.Analysis,
	buffer *text.Buffer,
	uri protocol.DocumentUri,
	t lang.Type,
) any {
	formatted := analysis.FormatType(t)
	if !t.IsStruct() {
		return ": " + formatted
	}

	name := InlayHintLabelPart{Value: formatted}
	if span, ok := analysis.SymbolSpan(t.Struct); ok {
		if r, ok := spanRange(buffer, span); ok {
			name.Location = &protocol.Location{URI: uri, Range: r}
		}
	}
	return []InlayHintLabelPart{{Value: ": "}, name}
}
