package text_test

import (
	"ell/internal/text"
	"strings"
	"testing"
	"unicode/utf8"
)

// 𝛽 is four bytes of UTF-8 and two UTF-16 code units, so byte, rune, and
// code-unit counts all disagree on the second line.
const sample = "let a = 1;\nlet 𝛽 = 2;\nlet s = \"héllo\";\n"

func TestBuffer(t *testing.T) {
	b := text.NewBuffer(sample)

	t.Run("Line Count", func(t *testing.T) {
		if b.LineCount() != 4 {
			t.Errorf("Expected 4 lines, got %d", b.LineCount())
		}
	})

	t.Run("Round Trip", func(t *testing.T) {
		for offset := 0; offset <= len(sample); offset++ {
			if offset < len(sample) && !utf8.RuneStart(sample[offset]) {
				continue
			}
			line, col, ok := b.PositionFor(offset)
			if !ok {
				t.Fatalf("PositionFor(%d) failed", offset)
			}
			back, ok := b.OffsetFor(line, col)
			if !ok {
				t.Fatalf("OffsetFor(%d, %d) failed", line, col)
			}
			if back != offset {
				t.Errorf("Offset %d: round trip gave %d (line %d, col %d)", offset, back, line, col)
			}
		}
	})

	t.Run("UTF-16 Columns", func(t *testing.T) {
		offset := strings.Index(sample, "= 2")
		_, col, ok := b.PositionFor(offset)
		if !ok {
			t.Fatal("Expected a position for the offset")
		}
		// "let 𝛽 " is 4 + 2 + 1 code units.
		if col != 7 {
			t.Errorf("Expected column 7, got %d", col)
		}
	})

	t.Run("End Of Text", func(t *testing.T) {
		line, col, ok := b.PositionFor(len(sample))
		if !ok {
			t.Fatal("Expected the end of text to be a valid position")
		}
		if line != 3 || col != 0 {
			t.Errorf("Expected (3, 0), got (%d, %d)", line, col)
		}
		if _, _, ok := b.PositionFor(len(sample) + 1); ok {
			t.Error("Expected failure past the end")
		}
		if _, _, ok := b.PositionFor(-1); ok {
			t.Error("Expected failure on a negative offset")
		}
	})

	t.Run("Column Clamping", func(t *testing.T) {
		got, ok := b.OffsetFor(0, 999)
		if !ok {
			t.Fatal("Expected the column to clamp, not fail")
		}
		if want := strings.Index(sample, "\n"); got != want {
			t.Errorf("Expected clamp to %d, got %d", want, got)
		}
	})

	t.Run("Bad Line Fails", func(t *testing.T) {
		if _, ok := b.OffsetFor(4, 0); ok {
			t.Error("Expected failure on a line past the end")
		}
		if _, ok := b.OffsetFor(-1, 0); ok {
			t.Error("Expected failure on a negative line")
		}
	})

	t.Run("Surrogate Pair Floors", func(t *testing.T) {
		// Column 5 on line 1 lands between the two code units of 𝛽.
		got, ok := b.OffsetFor(1, 5)
		if !ok {
			t.Fatal("Expected an offset")
		}
		if want := strings.Index(sample, "𝛽"); got != want {
			t.Errorf("Expected the rune start %d, got %d", want, got)
		}
	})
}

func TestBufferEdgeShapes(t *testing.T) {
	t.Run("CRLF", func(t *testing.T) {
		b := text.NewBuffer("a\r\nb")
		if b.LineCount() != 2 {
			t.Fatalf("Expected 2 lines, got %d", b.LineCount())
		}
		line, col, ok := b.PositionFor(3)
		if !ok || line != 1 || col != 0 {
			t.Errorf("Expected (1, 0), got (%d, %d) ok=%v", line, col, ok)
		}
		// The clamp stops before the carriage return.
		got, ok := b.OffsetFor(0, 99)
		if !ok || got != 1 {
			t.Errorf("Expected clamp to 1, got %d ok=%v", got, ok)
		}
	})

	t.Run("Empty Buffer", func(t *testing.T) {
		b := text.NewBuffer("")
		if b.LineCount() != 1 {
			t.Errorf("Expected 1 line, got %d", b.LineCount())
		}
		line, col, ok := b.PositionFor(0)
		if !ok || line != 0 || col != 0 {
			t.Errorf("Expected (0, 0), got (%d, %d) ok=%v", line, col, ok)
		}
		got, ok := b.OffsetFor(0, 10)
		if !ok || got != 0 {
			t.Errorf("Expected offset 0, got %d ok=%v", got, ok)
		}
	})

	t.Run("No Trailing Newline", func(t *testing.T) {
		b := text.NewBuffer("ab")
		line, col := b.EndPosition()
		if line != 0 || col != 2 {
			t.Errorf("Expected (0, 2), got (%d, %d)", line, col)
		}
		got, ok := b.OffsetFor(0, 99)
		if !ok || got != 2 {
			t.Errorf("Expected clamp to 2, got %d ok=%v", got, ok)
		}
	})
}

func TestSlice(t *testing.T) {
	b := text.NewBuffer("hello world")

	if got, ok := b.Slice(0, 5); !ok || got != "hello" {
		t.Errorf("Expected %q, got %q ok=%v", "hello", got, ok)
	}
	if _, ok := b.Slice(5, 5); ok {
		t.Error("Expected a degenerate range to fail")
	}
	if _, ok := b.Slice(7, 3); ok {
		t.Error("Expected an inverted range to fail")
	}
	if _, ok := b.Slice(0, 100); ok {
		t.Error("Expected an out-of-bounds range to fail")
	}
	if _, ok := b.Slice(-1, 4); ok {
		t.Error("Expected a negative start to fail")
	}
}

func TestU16Len(t *testing.T) {
	b := text.NewBuffer("a𝛽c")

	if got := b.U16Len(0, len("a𝛽c")); got != 4 {
		t.Errorf("Expected 4 code units, got %d", got)
	}
	if got := b.U16Len(1, 5); got != 2 {
		t.Errorf("Expected 2 code units for the surrogate pair, got %d", got)
	}
	if got := b.U16Len(-5, 100); got != 4 {
		t.Errorf("Expected the range to clamp, got %d", got)
	}
	if got := b.U16Len(3, 1); got != 0 {
		t.Errorf("Expected 0 for an inverted range, got %d", got)
	}
}
