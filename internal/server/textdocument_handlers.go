package server

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ell/internal/lang"
	"ell/internal/session"
	"ell/internal/text"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	s.update(context, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}

	// Sync is full-document, so the first event carries the whole text.
	switch change := params.ContentChanges[0].(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		s.update(context, params.TextDocument.URI, change.Text)
	case protocol.TextDocumentContentChangeEvent:
		s.update(context, params.TextDocument.URI, change.Text)
	default:
		return fmt.Errorf("unexpected content change type %T", change)
	}
	return nil
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	if params.Text != nil {
		s.update(context, uri, *params.Text)
		return nil
	}

	// Save without text: recheck what we already hold.
	if doc, ok := s.docs.Get(uri); ok {
		s.update(context, uri, doc.Buffer.Text())
	}
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	s.docs.Delete(params.TextDocument.URI)
	return nil
}

// update recompiles one document version, republishes its diagnostics, and
// swaps the stored record. After shutdown nothing is published or stored.
func (s *Server) update(context *glsp.Context, uri protocol.DocumentUri, content string) {
	if s.docs.ShuttingDown() {
		return
	}

	analysis := lang.Compile(content)
	buffer := text.NewBuffer(content)
	s.publishDiagnostics(context, uri, buffer, analysis)
	s.docs.Put(uri, &session.Document{Buffer: buffer, Analysis: analysis})
}

// publishDiagnostics sends the document's current diagnostics. An empty list
// still goes out so the client clears stale squiggles.
func (s *Server) publishDiagnostics(
	context *glsp.Context,
	uri protocol.DocumentUri,
	buffer *text.Buffer,
	analysis *lang.Analysis,
) {
	severity := protocol.DiagnosticSeverityError
	diagnostics := make([]protocol.Diagnostic, 0, len(analysis.Diagnostics))
	for _, d := range analysis.Diagnostics {
		if s.config.MaxDiagnostics > 0 && len(diagnostics) >= s.config.MaxDiagnostics {
			break
		}
		r, ok := spanRange(buffer, d.Span)
		if !ok {
			continue
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    r,
			Severity: &severity,
			Message:  d.Message,
		})
	}

	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
