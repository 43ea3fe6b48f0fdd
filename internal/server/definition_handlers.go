package server

import (
	"context"
	"net/url"
	"runtime"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ell/internal/lang"
	"ell/internal/session"
)

func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	uri := params.TextDocument.URI
	doc, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	offset, ok := positionOffset(doc.Buffer, params.Position)
	if !ok {
		return nil, nil
	}
	sym, ok := doc.Analysis.SymbolAt(offset)
	if !ok {
		return nil, nil
	}
	span, ok := doc.Analysis.SymbolSpan(sym)
	if !ok {
		return nil, nil
	}
	r, ok := spanRange(doc.Buffer, span)
	if !ok {
		return nil, nil
	}

	return protocol.Location{URI: uri, Range: r}, nil
}

func (s *Server) textDocumentReferences(
	context *glsp.Context,
	params *protocol.ReferenceParams,
) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	doc, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	offset, ok := positionOffset(doc.Buffer, params.Position)
	if !ok {
		return nil, nil
	}
	sym, ok := doc.Analysis.SymbolAt(offset)
	if !ok {
		return nil, nil
	}

	var locations []protocol.Location
	for _, span := range referenceSpans(doc.Analysis, sym, params.Context.IncludeDeclaration) {
		r, ok := spanRange(doc.Buffer, span)
		if !ok {
			continue
		}
		locations = append(locations, protocol.Location{URI: uri, Range: r})
	}
	return locations, nil
}

func (s *Server) textDocumentRename(
	context *glsp.Context,
	params *protocol.RenameParams,
) (*protocol.WorkspaceEdit, error) {
	uri := params.TextDocument.URI
	if _, err := url.Parse(uri); err != nil {
		return nil, nil
	}
	doc, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	offset, ok := positionOffset(doc.Buffer, params.Position)
	if !ok {
		return nil, nil
	}
	sym, ok := doc.Analysis.SymbolAt(offset)
	if !ok {
		return nil, nil
	}

	// The edit set is all or nothing: one untranslatable span drops the
	// whole rename, never a partial set.
	spans := referenceSpans(doc.Analysis, sym, true)
	if len(spans) == 0 {
		return nil, nil
	}
	edits := make([]protocol.TextEdit, 0, len(spans))
	for _, span := range spans {
		r, ok := spanRange(doc.Buffer, span)
		if !ok {
			return nil, nil
		}
		edits = append(edits, protocol.TextEdit{Range: r, NewText: params.NewName})
	}

	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
	}, nil
}

// referenceSpans lists the defining span (when asked for) followed by every
// use-site span of the symbol, in the order references were recorded.
func referenceSpans(
	analysis *lang.Analysis,
	sym lang.SymbolID,
	includeDeclaration bool,
) []lang.Span {
	var spans []lang.Span
	if includeDeclaration {
		if span, ok := analysis.SymbolSpan(sym); ok {
			spans = append(spans, span)
		}
	}
	for _, ref := range analysis.SymbolReferences(sym) {
		if span, ok := analysis.ReferenceSpan(ref); ok {
			spans = append(spans, span)
		}
	}
	return spans
}

func (s *Server) workspaceSymbol(
	context *glsp.Context,
	params *protocol.WorkspaceSymbolParams,
) ([]protocol.SymbolInformation, error) {
	maxResults := 128
	query := params.Query

	var candidates []protocol.SymbolInformation
	s.docs.Each(func(uri string, doc *session.Document) {
		for id, sym := range doc.Analysis.Symbols {
			span, ok := doc.Analysis.SymbolSpan(lang.SymbolID(id))
			if !ok {
				continue
			}
			r, ok := spanRange(doc.Buffer, span)
			if !ok {
				continue
			}
			candidates = append(candidates, protocol.SymbolInformation{
				Name:     sym.Name,
				Kind:     workspaceSymbolKind(sym.Kind),
				Location: protocol.Location{URI: uri, Range: r},
			})
		}
	})

	k := 2 // tolerate up to 2 typos
	return filterByBitapFuzzyParallel(query, candidates, k, maxResults), nil
}

func workspaceSymbolKind(kind lang.SymbolKind) protocol.SymbolKind {
	switch kind {
	case lang.SymbolFunction:
		return protocol.SymbolKindFunction
	case lang.SymbolStruct:
		return protocol.SymbolKindStruct
	case lang.SymbolField:
		return protocol.SymbolKindField
	default:
		return protocol.SymbolKindVariable
	}
}

// filterByBitapFuzzyParallel keeps the candidates whose name approximately
// matches the pattern with at most k errors, checking names in parallel.
func filterByBitapFuzzyParallel(
	pattern string,
	candidates []protocol.SymbolInformation,
	k, maxHits int,
) []protocol.SymbolInformation {
	if utf8.RuneCountInString(pattern) == 0 {
		return nil
	}

	patternRunes := []rune(pattern)
	m := len(patternRunes)
	if m > 63 {
		patternRunes = patternRunes[:63]
		m = 63
	}

	var masks [128]uint64
	for i, r := range patternRunes {
		if r < 128 {
			masks[r] |= 1 << uint(i)
		}
	}

	highest := uint64(1) << uint(m-1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan protocol.SymbolInformation, maxHits)
	var hitCount int32

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))

	for _, c := range candidates {
		if atomic.LoadInt32(&hitCount) >= int32(maxHits) || ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(candidate protocol.SymbolInformation) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			if bitapFuzzyMatch(candidate.Name, masks, highest, k) {
				count := atomic.AddInt32(&hitCount, 1)
				if count <= int32(maxHits) {
					results <- candidate
					if count == int32(maxHits) {
						cancel()
					}
				}
			}
		}(c)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var filtered []protocol.SymbolInformation
	for c := range results {
		filtered = append(filtered, c)
	}
	return filtered
}

// bitapFuzzyMatch returns true if the pattern behind masks appears in name
// with at most k errors (substitutions, insertions, or deletions). Runes
// outside ASCII never match the pattern masks.
func bitapFuzzyMatch(name string, masks [128]uint64, highest uint64, k int) bool {
	r := make([]uint64, k+1)

	for _, cr := range name {
		var charMask uint64
		if cr < 128 {
			charMask = masks[cr]
		}

		// Update R[0]: exact matching only.
		prevOld := r[0]
		r[0] = ((r[0] << 1) | 1) & charMask

		// Update R[d] from level d-1: one more tolerated error per level.
		for d := 1; d <= k; d++ {
			old := r[d]

			match := ((old << 1) | 1) & charMask
			substitute := (prevOld << 1) | 1
			insert := prevOld
			del := (r[d-1] << 1) | 1

			r[d] = match | substitute | insert | del
			prevOld = old
		}

		// If any R[d] has bit (m-1) set, match within d errors
		for d := 0; d <= k; d++ {
			if (r[d] & highest) != 0 {
				return true
			}
		}
	}
	return false
}
