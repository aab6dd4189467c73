package annotate

import (
	"strings"

	"codeberg.org/snonux/vocabaudio/internal/document"
	"codeberg.org/snonux/vocabaudio/internal/matcher"
)

// Scan is the outcome of searching below a word marker.
type Scan struct {
	// Present is true when a block for the word sits within the horizon.
	Present bool
	// BlockLine is the line of the matching open marker, -1 if absent.
	BlockLine int
	// DividerLine is the first answer divider seen before the scan stopped,
	// -1 if none.
	DividerLine int
	// StopLine is the line that ended the scan early (section divider or
	// another word marker), -1 when the scan ran to the horizon.
	StopLine int
}

// Detect searches the Horizon lines below wordLine for a block whose body
// holds word. The search stops at a section divider or at the next word
// marker. A block opened inside the horizon is read up to its close marker
// even when the body runs past the horizon, for at most another Horizon
// lines; blocks opened past it count as absent. An unclosed block also ends
// at a section divider or word marker.
func Detect(doc document.IO, wordLine int, word string, m *matcher.Matcher) Scan {
	scan := Scan{BlockLine: -1, DividerLine: -1, StopLine: -1}

	last := wordLine + Horizon
	count := doc.LineCount()

	openLine := -1
	for i := wordLine + 1; i < count && (i <= last || (openLine >= 0 && i <= openLine+Horizon)); i++ {
		line := doc.Line(i)

		if openLine >= 0 {
			switch {
			case isCloseMarker(line):
				openLine = -1
			case strings.TrimSpace(line) == word:
				scan.Present = true
				scan.BlockLine = openLine
				return scan
			case strings.TrimSpace(line) == SectionDivider, m != nil && isWordLine(m, line):
				scan.StopLine = i
				return scan
			}
			continue
		}

		switch {
		case isOpenMarker(line):
			openLine = i
		case strings.TrimSpace(line) == SectionDivider:
			scan.StopLine = i
			return scan
		case m != nil && isWordLine(m, line):
			scan.StopLine = i
			return scan
		case strings.TrimSpace(line) == AnswerDivider && scan.DividerLine < 0:
			scan.DividerLine = i
		}
	}

	return scan
}

func isWordLine(m *matcher.Matcher, line string) bool {
	_, ok := m.MatchLine(line)
	return ok
}
