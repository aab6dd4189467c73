// Package document defines the narrow editing surface the annotator needs
// from a note and an in-memory line buffer implementing it.
package document

import (
	"strings"
)

// Position addresses a location inside a document. Ch is a byte offset
// within the line.
type Position struct {
	Line int
	Ch   int
}

// IO is the editing surface consumed by the annotator.
type IO interface {
	// Line returns line n without its line terminator, or "" when out of range.
	Line(n int) string
	// LineCount returns the number of lines. An empty document has one line.
	LineCount() int
	// ReplaceRange replaces the text between from and to with text. A nil
	// to inserts text at from.
	ReplaceRange(text string, from Position, to *Position)
	// Value returns the whole document text.
	Value() string
}

// Buffer is an in-memory document backed by a slice of lines.
type Buffer struct {
	lines []string
	eol   string // terminator Value joins lines with
	edits int
}

var _ IO = (*Buffer)(nil)

// NewBuffer splits text into lines. A text terminated by "\r\n" throughout
// keeps that terminator in Value; mixed endings are normalised to "\n".
func NewBuffer(text string) *Buffer {
	eol := "\n"
	if crlf := strings.Count(text, "\r\n"); crlf > 0 && crlf == strings.Count(text, "\n") {
		eol = "\r\n"
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Buffer{lines: strings.Split(text, "\n"), eol: eol}
}

// Line implements IO.
func (b *Buffer) Line(n int) string {
	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return b.lines[n]
}

// LineCount implements IO.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Value implements IO.
func (b *Buffer) Value() string {
	return strings.Join(b.lines, b.eol)
}

func (b *Buffer) text() string {
	return strings.Join(b.lines, "\n")
}

// Edits returns how many times ReplaceRange mutated the buffer.
func (b *Buffer) Edits() int {
	return b.edits
}

// ReplaceRange implements IO. Positions are clamped to the document.
func (b *Buffer) ReplaceRange(text string, from Position, to *Position) {
	end := from
	if to != nil {
		end = *to
	}

	start := b.offset(from)
	stop := b.offset(end)
	if stop < start {
		start, stop = stop, start
	}

	value := b.text()
	value = value[:start] + strings.ReplaceAll(text, "\r\n", "\n") + value[stop:]
	b.lines = strings.Split(value, "\n")
	b.edits++
}

func (b *Buffer) offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(b.lines) {
		return len(b.text())
	}

	offset := 0
	for i := 0; i < pos.Line; i++ {
		offset += len(b.lines[i]) + 1
	}

	ch := pos.Ch
	if ch < 0 {
		ch = 0
	}
	if ch > len(b.lines[pos.Line]) {
		ch = len(b.lines[pos.Line])
	}
	return offset + ch
}
