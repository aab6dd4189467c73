package annotate

import (
	"strings"
)

const (
	// Fence opens and closes a block.
	Fence = "```"
	// Language is the fence tag identifying pronunciation blocks.
	Language = "pronounce"
	// OpenMarker is the first line of every block.
	OpenMarker = Fence + Language

	// AnswerDivider separates the front and back of a flashcard note. A new
	// block goes right below the first divider following the word.
	AnswerDivider = "?"
	// SectionDivider ends the region searched below a word.
	SectionDivider = "---"

	// Horizon is how many lines below a word marker are searched.
	Horizon = 20
	// BlockLines is the height of a block.
	BlockLines = 3
)

// Block returns the lines of the block for word.
func Block(word string) []string {
	return []string{OpenMarker, word, Fence}
}

// BlockText returns the block for word joined with newlines, without a
// trailing newline.
func BlockText(word string) string {
	return strings.Join(Block(word), "\n")
}

func isOpenMarker(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, OpenMarker) {
		return false
	}
	rest := trimmed[len(OpenMarker):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

func isCloseMarker(line string) bool {
	return strings.TrimSpace(line) == Fence
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
