package server

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func fullTokens(t *testing.T, s *Server, uri string) *protocol.SemanticTokens {
	t.Helper()
	tokens, err := s.textDocumentSemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatalf("Failed to get tokens: %v", err)
	}
	return tokens
}

func rangeTokens(
	t *testing.T,
	s *Server,
	uri string,
	rng protocol.Range,
) *protocol.SemanticTokens {
	t.Helper()
	tokens, err := s.textDocumentSemanticTokensRange(nil, &protocol.SemanticTokensRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Range:        rng,
	})
	if err != nil {
		t.Fatalf("Failed to get range tokens: %v", err)
	}
	return tokens
}

func assertTokenData(t *testing.T, got *protocol.SemanticTokens, want []protocol.UInteger) {
	t.Helper()
	if got == nil {
		t.Fatalf("Expected token data %v, got nil", want)
	}
	if len(got.Data) != len(want) {
		t.Fatalf("Expected data %v, got %v", want, got.Data)
	}
	for i := range want {
		if got.Data[i] != want[i] {
			t.Fatalf("Expected data %v, got %v", want, got.Data)
		}
	}
}

func TestSemanticTokensFull(t *testing.T) {
	t.Run("Encodes Definitions And References", func(t *testing.T) {
		src := "let a = 1;\nlet bb = a;\n"
		s := newLanguageServer()
		openDoc(t, s, &recorder{}, "file:///a.l", src)

		tokens := fullTokens(t, s, "file:///a.l")

		// a at (0,4), bb at (1,4), the reference to a at (1,9).
		assertTokenData(t, tokens, []protocol.UInteger{
			0, 4, 1, 1, 0,
			1, 4, 2, 1, 0,
			0, 5, 1, 1, 0,
		})
	})

	t.Run("Reports UTF16 Columns And Lengths", func(t *testing.T) {
		src := "let 𝛽 = 1;\nlet b = 𝛽;\n"
		s := newLanguageServer()
		openDoc(t, s, &recorder{}, "file:///a.l", src)

		tokens := fullTokens(t, s, "file:///a.l")

		// 𝛽 is one code point but two UTF-16 units.
		assertTokenData(t, tokens, []protocol.UInteger{
			0, 4, 2, 1, 0,
			1, 4, 1, 1, 0,
			0, 4, 2, 1, 0,
		})
	})

	t.Run("Orders Interleaved Definitions By Offset", func(t *testing.T) {
		s := newLanguageServer()
		uri := openRefDoc(t, s)

		tokens := fullTokens(t, s, uri)
		if tokens == nil || len(tokens.Data)%5 != 0 {
			t.Fatalf("Malformed token data: %v", tokens)
		}

		var kinds []protocol.UInteger
		for i := 3; i < len(tokens.Data); i += 5 {
			kinds = append(kinds, tokens.Data[i])
		}
		// struct, x, y, fn, param, type ref, param ref, field ref,
		// let, type ref, field ref, field ref.
		want := []protocol.UInteger{3, 4, 4, 0, 2, 3, 2, 4, 1, 3, 4, 4}
		if len(kinds) != len(want) {
			t.Fatalf("Expected kinds %v, got %v", want, kinds)
		}
		for i := range want {
			if kinds[i] != want[i] {
				t.Fatalf("Expected kinds %v, got %v", want, kinds)
			}
		}
	})

	t.Run("Empty Document", func(t *testing.T) {
		s := newLanguageServer()
		openDoc(t, s, &recorder{}, "file:///a.l", "")

		tokens := fullTokens(t, s, "file:///a.l")
		if tokens == nil {
			t.Fatal("Expected empty token data, got nil")
		}
		if len(tokens.Data) != 0 {
			t.Errorf("Expected no tokens, got %v", tokens.Data)
		}
	})

	t.Run("Unknown Document", func(t *testing.T) {
		s := newLanguageServer()
		tokens, err := s.textDocumentSemanticTokensFull(nil, &protocol.SemanticTokensParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.l"},
		})
		if err != nil {
			t.Fatalf("Failed to get tokens: %v", err)
		}
		if tokens != nil {
			t.Errorf("Expected nil tokens, got %v", tokens)
		}
	})
}

func TestSemanticTokensRange(t *testing.T) {
	src := "let aa = 1;\nlet b = aa;\n"

	t.Run("Filters By Start Offset", func(t *testing.T) {
		s := newLanguageServer()
		openDoc(t, s, &recorder{}, "file:///a.l", src)

		tokens := rangeTokens(t, s, "file:///a.l", protocol.Range{
			Start: pos(1, 0),
			End:   pos(2, 0),
		})

		// The aa definition on line 0 falls outside the range; deltas
		// still count from the document start.
		assertTokenData(t, tokens, []protocol.UInteger{
			1, 4, 1, 1, 0,
			0, 4, 2, 1, 0,
		})
	})

	t.Run("Keeps Tokens Starting Inside", func(t *testing.T) {
		s := newLanguageServer()
		openDoc(t, s, &recorder{}, "file:///a.l", src)

		tokens := rangeTokens(t, s, "file:///a.l", protocol.Range{
			Start: pos(1, 0),
			End:   pos(1, 5),
		})

		// b starts before the range end, the aa reference does not.
		assertTokenData(t, tokens, []protocol.UInteger{
			1, 4, 1, 1, 0,
		})
	})

	t.Run("Rejects Unmappable Lines", func(t *testing.T) {
		s := newLanguageServer()
		openDoc(t, s, &recorder{}, "file:///a.l", src)

		tokens := rangeTokens(t, s, "file:///a.l", protocol.Range{
			Start: pos(0, 0),
			End:   pos(99, 0),
		})
		if tokens != nil {
			t.Errorf("Expected nil tokens, got %v", tokens)
		}
	})

	t.Run("Clamps Columns Past Line End", func(t *testing.T) {
		s := newLanguageServer()
		openDoc(t, s, &recorder{}, "file:///a.l", src)

		tokens := rangeTokens(t, s, "file:///a.l", protocol.Range{
			Start: pos(1, 0),
			End:   pos(1, 999),
		})

		assertTokenData(t, tokens, []protocol.UInteger{
			1, 4, 1, 1, 0,
			0, 4, 2, 1, 0,
		})
	})

	t.Run("Unknown Document", func(t *testing.T) {
		s := newLanguageServer()
		tokens, err := s.textDocumentSemanticTokensRange(nil, &protocol.SemanticTokensRangeParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.l"},
			Range:        protocol.Range{Start: pos(0, 0), End: pos(1, 0)},
		})
		if err != nil {
			t.Fatalf("Failed to get range tokens: %v", err)
		}
		if tokens != nil {
			t.Errorf("Expected nil tokens, got %v", tokens)
		}
	})
}
