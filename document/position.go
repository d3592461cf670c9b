package document

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// OffsetAt converts an LSP Position (line, UTF-16 character offset) to a byte
// offset in the document text.
func OffsetAt(text string, pos protocol.Position) int {
	line := int(pos.Line)
	char := int(pos.Character)

	offset := 0
	for l := 0; l < line; l++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}

	lineStart := offset
	nl := strings.IndexByte(text[lineStart:], '\n')
	var lineText string
	if nl < 0 {
		lineText = text[lineStart:]
	} else {
		lineText = text[lineStart : lineStart+nl]
	}

	return lineStart + utf16OffsetToBytes(lineText, char)
}

// PositionAt converts a byte offset to an LSP Position.
func PositionAt(text string, offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	line := uint32(0)
	lineStart := 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	lineText := text[lineStart:offset]
	char := bytesToUTF16Offset(lineText)

	return protocol.Position{Line: line, Character: uint32(char)}
}

// SpanOf translates an LSP range into a byte span for the given snapshot.
func SpanOf(text string, r protocol.Range) Span {
	return Span{Start: OffsetAt(text, r.Start), End: OffsetAt(text, r.End)}
}

// RangeOf translates a byte span back into an LSP range for the given snapshot.
func RangeOf(text string, s Span) protocol.Range {
	return protocol.Range{Start: PositionAt(text, s.Start), End: PositionAt(text, s.End)}
}

// UnionSpan reduces a set of visible ranges to one covering byte span via
// pairwise union. The range set must be non-empty; an empty set is a caller
// contract violation, not a handled condition.
func UnionSpan(text string, ranges []protocol.Range) Span {
	span := SpanOf(text, ranges[0])
	for _, r := range ranges[1:] {
		span = Union(span, SpanOf(text, r))
	}
	return span
}

// utf16OffsetToBytes converts a UTF-16 character offset within a line to a byte offset.
func utf16OffsetToBytes(line string, utf16Offset int) int {
	u16 := 0
	byteOffset := 0
	for byteOffset < len(line) && u16 < utf16Offset {
		r, size := utf8.DecodeRuneInString(line[byteOffset:])
		if r == utf8.RuneError && size == 1 {
			u16++
			byteOffset++
			continue
		}
		u16len := utf16.RuneLen(r)
		if u16len < 0 {
			u16len = 1
		}
		u16 += u16len
		byteOffset += size
	}
	return byteOffset
}

// bytesToUTF16Offset converts a byte-length string to its UTF-16 length.
func bytesToUTF16Offset(s string) int {
	u16 := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			u16++
			i++
			continue
		}
		u16len := utf16.RuneLen(r)
		if u16len < 0 {
			u16len = 1
		}
		u16 += u16len
		i += size
	}
	return u16
}
