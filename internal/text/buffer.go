// Package text holds document content and translates between the byte
// offsets the analysis works in and the line/column positions the protocol
// speaks. Columns count UTF-16 code units, matching how editors address
// characters on a line.
package text

import (
	"sort"
	"unicode/utf8"
)

// Buffer is one document's text plus a table of line start offsets.
type Buffer struct {
	text       string
	lineStarts []int
}

// NewBuffer indexes the given text. A text ending in a newline has a final
// empty line, the same way editors show one.
func NewBuffer(text string) *Buffer {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Buffer{text: text, lineStarts: starts}
}

// Text returns the full document content.
func (b *Buffer) Text() string { return b.text }

// Len returns the content length in bytes.
func (b *Buffer) Len() int { return len(b.text) }

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int { return len(b.lineStarts) }

// PositionFor translates a byte offset into a line and UTF-16 column. The
// end of the text is a valid position; anything past it is not.
func (b *Buffer) PositionFor(offset int) (line, col int, ok bool) {
	if offset < 0 || offset > len(b.text) {
		return 0, 0, false
	}
	line = sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1
	col = utf16Len(b.text[b.lineStarts[line]:offset])
	return line, col, true
}

// OffsetFor translates a line and UTF-16 column into a byte offset. The
// column is clamped to the line's content, never crossing the line break; a
// column landing inside a surrogate pair floors to the rune start. A line
// outside the document fails.
func (b *Buffer) OffsetFor(line, col int) (int, bool) {
	if line < 0 || line >= len(b.lineStarts) {
		return 0, false
	}
	if col < 0 {
		col = 0
	}
	offset := b.lineStarts[line]
	units := 0
	for offset < len(b.text) {
		r, size := utf8.DecodeRuneInString(b.text[offset:])
		if r == '\n' || r == '\r' {
			break
		}
		w := 1
		if r > 0xFFFF {
			w = 2
		}
		if units+w > col {
			break
		}
		units += w
		offset += size
	}
	return offset, true
}

// EndPosition is the position of the very end of the text.
func (b *Buffer) EndPosition() (line, col int) {
	line, col, _ = b.PositionFor(len(b.text))
	return line, col
}

// Slice returns the text of a non-degenerate byte range, or false when the
// range is inverted, empty, or out of bounds.
func (b *Buffer) Slice(start, end int) (string, bool) {
	if start < 0 || end > len(b.text) || start >= end {
		return "", false
	}
	return b.text[start:end], true
}

// U16Len counts the UTF-16 code units between two byte offsets, clamped to
// the text.
func (b *Buffer) U16Len(start, end int) int {
	if start < 0 {
		start = 0
	}
	if end > len(b.text) {
		end = len(b.text)
	}
	if start >= end {
		return 0
	}
	return utf16Len(b.text[start:end])
}

func utf16Len(s string) int {
	units := 0
	for _, r := range s {
		units++
		if r > 0xFFFF {
			units++
		}
	}
	return units
}
