package annotate

import (
	"fmt"

	"codeberg.org/snonux/vocabaudio/internal/document"
	"codeberg.org/snonux/vocabaudio/internal/matcher"
)

// Insertion describes the outcome of annotating one word marker.
type Insertion struct {
	Word     string
	Inserted bool
	// Line is the first line of the new block when Inserted is true.
	Line int
}

// Result summarises a whole-document annotation run.
type Result struct {
	Inserted []string // words that received a block, in document order
	Present  []string // words that already had one
}

// Changed reports whether the document was modified.
func (r Result) Changed() bool {
	return len(r.Inserted) > 0
}

// InsertAtLine adds a block for the word marker on line, unless the line
// holds no marker or the word already has a block within the horizon.
// The block is placed right below the first answer divider following the
// word, or right below the word line when no divider is found. A blank
// target line is replaced by the block.
func InsertAtLine(doc document.IO, line int, m *matcher.Matcher) (Insertion, error) {
	if m == nil {
		return Insertion{}, fmt.Errorf("annotate: matcher is nil")
	}
	if line < 0 || line >= doc.LineCount() {
		return Insertion{}, fmt.Errorf("annotate: line %d out of range [0,%d)", line, doc.LineCount())
	}

	match, ok := m.MatchLine(doc.Line(line))
	if !ok {
		return Insertion{}, nil
	}

	scan := Detect(doc, line, match.Word, m)
	if scan.Present {
		return Insertion{Word: match.Word}, nil
	}

	target := line + 1
	if scan.DividerLine >= 0 {
		target = scan.DividerLine + 1
	}

	return Insertion{Word: match.Word, Inserted: true, Line: place(doc, target, match.Word)}, nil
}

// place writes the block for word at target with a single edit and returns
// the line the block starts on.
func place(doc document.IO, target int, word string) int {
	text := BlockText(word)

	if target >= doc.LineCount() {
		last := doc.LineCount() - 1
		doc.ReplaceRange("\n"+text, document.Position{Line: last, Ch: len(doc.Line(last))}, nil)
		return last + 1
	}

	current := doc.Line(target)
	// The last line is empty when the text ends with a newline; keep that
	// terminator instead of consuming it.
	if isBlank(current) && target < doc.LineCount()-1 {
		doc.ReplaceRange(text,
			document.Position{Line: target},
			&document.Position{Line: target, Ch: len(current)})
		return target
	}

	doc.ReplaceRange(text+"\n", document.Position{Line: target}, nil)
	return target
}

// AnnotateDocument walks every word marker in doc in order and inserts the
// missing blocks. Each distinct word is handled once per run; later
// occurrences of a word already seen are skipped.
func AnnotateDocument(doc document.IO, m *matcher.Matcher) (Result, error) {
	var result Result
	if m == nil {
		return result, fmt.Errorf("annotate: matcher is nil")
	}

	processed := make(map[string]bool)
	for i := 0; i < doc.LineCount(); i++ {
		match, ok := m.MatchLine(doc.Line(i))
		if !ok || processed[match.Word] {
			continue
		}
		processed[match.Word] = true

		ins, err := InsertAtLine(doc, i, m)
		if err != nil {
			return result, err
		}
		if !ins.Inserted {
			result.Present = append(result.Present, match.Word)
			continue
		}

		result.Inserted = append(result.Inserted, match.Word)
		// Resume below the new block; nothing between the marker and the
		// block can be another marker since detection stops at one.
		i = ins.Line + len(Block(match.Word)) - 1
	}

	return result, nil
}
