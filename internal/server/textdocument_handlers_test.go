package server

import (
	"testing"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ell/internal/lang"
	"ell/internal/text"
)

type notification struct {
	method string
	params any
}

// recorder captures server-to-client notifications.
type recorder struct {
	notifications []notification
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			r.notifications = append(r.notifications, notification{method: method, params: params})
		},
	}
}

func (r *recorder) published(t *testing.T, i int) protocol.PublishDiagnosticsParams {
	t.Helper()
	if i >= len(r.notifications) {
		t.Fatalf("Expected at least %d notifications, got %d", i+1, len(r.notifications))
	}
	n := r.notifications[i]
	if n.method != "textDocument/publishDiagnostics" {
		t.Fatalf("Expected publishDiagnostics, got %s", n.method)
	}
	params, ok := n.params.(protocol.PublishDiagnosticsParams)
	if !ok {
		t.Fatalf("Unexpected params type %T", n.params)
	}
	return params
}

func openDoc(t *testing.T, s *Server, rec *recorder, uri, content string) {
	t.Helper()
	err := s.textDocumentDidOpen(rec.context(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "l",
			Version:    1,
			Text:       content,
		},
	})
	if err != nil {
		t.Fatalf("Failed to open document: %v", err)
	}
}

func pos(line, character int) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(character),
	}
}

// bufferPos translates a byte offset of src into a protocol position.
func bufferPos(t *testing.T, src string, offset int) protocol.Position {
	t.Helper()
	p, ok := offsetPosition(text.NewBuffer(src), offset)
	if !ok {
		t.Fatalf("Failed to translate offset %d", offset)
	}
	return p
}

// bufferRange translates a byte span of src into a protocol range.
func bufferRange(t *testing.T, src string, start, end int) protocol.Range {
	t.Helper()
	r, ok := spanRange(text.NewBuffer(src), lang.Span{Start: start, End: end})
	if !ok {
		t.Fatalf("Failed to translate span [%d,%d)", start, end)
	}
	return r
}

func TestDidOpen(t *testing.T) {
	t.Run("Stores Document And Publishes Empty Diagnostics", func(t *testing.T) {
		s := newLanguageServer()
		rec := &recorder{}

		openDoc(t, s, rec, "file:///a.l", "let a = 1;\n")

		if s.docs.Len() != 1 {
			t.Fatalf("Expected 1 stored document, got %d", s.docs.Len())
		}
		params := rec.published(t, 0)
		if params.URI != "file:///a.l" {
			t.Errorf("Expected uri file:///a.l, got %s", params.URI)
		}
		if len(params.Diagnostics) != 0 {
			t.Errorf("Expected no diagnostics, got %v", params.Diagnostics)
		}
	})

	t.Run("Publishes Type Errors", func(t *testing.T) {
		s := newLanguageServer()
		rec := &recorder{}

		openDoc(t, s, rec, "file:///a.l", "let a: Int = \"s\";\n")

		params := rec.published(t, 0)
		if len(params.Diagnostics) != 1 {
			t.Fatalf("Expected 1 diagnostic, got %d", len(params.Diagnostics))
		}
		d := params.Diagnostics[0]
		if d.Message != "cannot assign String to Int" {
			t.Errorf("Unexpected message %q", d.Message)
		}
		if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
			t.Errorf("Expected error severity, got %v", d.Severity)
		}
	})

	t.Run("Truncates To Max Diagnostics", func(t *testing.T) {
		s := newLanguageServer()
		s.config.MaxDiagnostics = 1
		rec := &recorder{}

		openDoc(t, s, rec, "file:///a.l", "let a: Int = \"s\";\nlet b: Bool = 1;\n")

		params := rec.published(t, 0)
		if len(params.Diagnostics) != 1 {
			t.Fatalf("Expected 1 diagnostic after truncation, got %d", len(params.Diagnostics))
		}
	})
}

func TestDidChange(t *testing.T) {
	t.Run("Replaces The Stored Record", func(t *testing.T) {
		s := newLanguageServer()
		rec := &recorder{}
		openDoc(t, s, rec, "file:///a.l", "let a = 1;\n")

		err := s.textDocumentDidChange(rec.context(), &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///a.l"},
				Version:                2,
			},
			ContentChanges: []any{
				protocol.TextDocumentContentChangeEventWhole{Text: "let b = 2;\n"},
			},
		})
		if err != nil {
			t.Fatalf("Failed to change document: %v", err)
		}

		doc, ok := s.docs.Get("file:///a.l")
		if !ok {
			t.Fatal("Expected document to stay stored")
		}
		if doc.Buffer.Text() != "let b = 2;\n" {
			t.Errorf("Expected new text, got %q", doc.Buffer.Text())
		}
		if name, _ := doc.Analysis.SymbolName(0); name != "b" {
			t.Errorf("Expected recompiled symbol b, got %q", name)
		}
		if len(rec.notifications) != 2 {
			t.Errorf("Expected 2 publishes, got %d", len(rec.notifications))
		}
	})

	t.Run("Accepts Ranged Change Events", func(t *testing.T) {
		s := newLanguageServer()
		rec := &recorder{}
		openDoc(t, s, rec, "file:///a.l", "let a = 1;\n")

		err := s.textDocumentDidChange(rec.context(), &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///a.l"},
				Version:                2,
			},
			ContentChanges: []any{
				protocol.TextDocumentContentChangeEvent{Text: "let c = 3;\n"},
			},
		})
		if err != nil {
			t.Fatalf("Failed to change document: %v", err)
		}

		doc, _ := s.docs.Get("file:///a.l")
		if doc.Buffer.Text() != "let c = 3;\n" {
			t.Errorf("Expected full text from ranged event, got %q", doc.Buffer.Text())
		}
	})

	t.Run("Ignores Empty Change Lists", func(t *testing.T) {
		s := newLanguageServer()
		rec := &recorder{}
		openDoc(t, s, rec, "file:///a.l", "let a = 1;\n")

		err := s.textDocumentDidChange(rec.context(), &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///a.l"},
				Version:                2,
			},
		})
		if err != nil {
			t.Fatalf("Failed on empty change list: %v", err)
		}

		doc, _ := s.docs.Get("file:///a.l")
		if doc.Buffer.Text() != "let a = 1;\n" {
			t.Errorf("Expected original text, got %q", doc.Buffer.Text())
		}
		if len(rec.notifications) != 1 {
			t.Errorf("Expected no extra publish, got %d notifications", len(rec.notifications))
		}
	})
}

func TestDidSave(t *testing.T) {
	t.Run("Uses Included Text", func(t *testing.T) {
		s := newLanguageServer()
		rec := &recorder{}
		openDoc(t, s, rec, "file:///a.l", "let a = 1;\n")

		saved := "let saved = 1;\n"
		err := s.textDocumentDidSave(rec.context(), &protocol.DidSaveTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.l"},
			Text:         &saved,
		})
		if err != nil {
			t.Fatalf("Failed to save document: %v", err)
		}

		doc, _ := s.docs.Get("file:///a.l")
		if doc.Buffer.Text() != saved {
			t.Errorf("Expected saved text, got %q", doc.Buffer.Text())
		}
	})

	t.Run("Falls Back To The Stored Buffer", func(t *testing.T) {
		s := newLanguageServer()
		rec := &recorder{}
		openDoc(t, s, rec, "file:///a.l", "let a = 1;\n")

		err := s.textDocumentDidSave(rec.context(), &protocol.DidSaveTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.l"},
		})
		if err != nil {
			t.Fatalf("Failed to save document: %v", err)
		}

		doc, _ := s.docs.Get("file:///a.l")
		if doc.Buffer.Text() != "let a = 1;\n" {
			t.Errorf("Expected original text, got %q", doc.Buffer.Text())
		}
		if len(rec.notifications) != 2 {
			t.Errorf("Expected a republish on save, got %d notifications", len(rec.notifications))
		}
	})

	t.Run("Ignores Saves For Unknown Documents", func(t *testing.T) {
		s := newLanguageServer()
		rec := &recorder{}

		err := s.textDocumentDidSave(rec.context(), &protocol.DidSaveTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.l"},
		})
		if err != nil {
			t.Fatalf("Failed on unknown document: %v", err)
		}
		if len(rec.notifications) != 0 {
			t.Errorf("Expected no publish, got %d", len(rec.notifications))
		}
	})
}

func TestDidClose(t *testing.T) {
	s := newLanguageServer()
	rec := &recorder{}
	openDoc(t, s, rec, "file:///a.l", "let a = 1;\n")

	err := s.textDocumentDidClose(rec.context(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.l"},
	})
	if err != nil {
		t.Fatalf("Failed to close document: %v", err)
	}
	if s.docs.Len() != 0 {
		t.Errorf("Expected empty store, got %d documents", s.docs.Len())
	}

	// Closing again is a no-op.
	if err := s.textDocumentDidClose(rec.context(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.l"},
	}); err != nil {
		t.Fatalf("Failed to close twice: %v", err)
	}
}

func TestUpdateAfterShutdown(t *testing.T) {
	s := newLanguageServer()
	rec := &recorder{}
	s.docs.Shutdown()

	openDoc(t, s, rec, "file:///a.l", "let a = 1;\n")

	if len(rec.notifications) != 0 {
		t.Errorf("Expected no publish after shutdown, got %d", len(rec.notifications))
	}
	if s.docs.Len() != 0 {
		t.Errorf("Expected nothing stored after shutdown, got %d", s.docs.Len())
	}
}
