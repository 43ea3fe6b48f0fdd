package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ell/internal/lang"
	"ell/internal/text"
)

// positionOffset maps a protocol position onto a byte offset. Columns beyond
// the line end clamp; a line beyond the buffer reports false.
func positionOffset(buffer *text.Buffer, pos protocol.Position) (int, bool) {
	return buffer.OffsetFor(int(pos.Line), int(pos.Character))
}

// offsetPosition maps a byte offset onto a protocol position.
func offsetPosition(buffer *text.Buffer, offset int) (protocol.Position, bool) {
	line, col, ok := buffer.PositionFor(offset)
	if !ok {
		return protocol.Position{}, false
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(col),
	}, true
}

// spanRange maps a byte span onto a protocol range. Either end falling
// outside the buffer reports false.
func spanRange(buffer *text.Buffer, span lang.Span) (protocol.Range, bool) {
	start, ok := offsetPosition(buffer, span.Start)
	if !ok {
		return protocol.Range{}, false
	}
	end, ok := offsetPosition(buffer, span.End)
	if !ok {
		return protocol.Range{}, false
	}
	return protocol.Range{Start: start, End: end}, true
}
