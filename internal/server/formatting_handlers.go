package server

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ell/internal/lang"
)

func (s *Server) textDocumentFormatting(
	context *glsp.Context,
	params *protocol.DocumentFormattingParams,
) ([]protocol.TextEdit, error) {
	doc, ok := s.docs.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	// A recovered tree drops whatever the parser skipped, so formatting
	// declines while syntax diagnostics are present.
	if doc.Analysis.HasSyntaxErrors() {
		return nil, nil
	}

	formatter := lang.NewFormatter(s.config.FormatWidth)
	formatted := formatter.Format(doc.Analysis.File, doc.Buffer.Text())

	endLine, endCol := doc.Buffer.EndPosition()
	return []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End: protocol.Position{
				Line:      protocol.UInteger(endLine),
				Character: protocol.UInteger(endCol),
			},
		},
		NewText: formatted,
	}}, nil
}
