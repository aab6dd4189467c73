package audio

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidWord is wrapped by every ValidateWord failure.
var ErrInvalidWord = errors.New("invalid word")

// ValidateWord checks that word can be used verbatim as a cache file stem.
func ValidateWord(word string) error {
	if strings.TrimSpace(word) == "" {
		return fmt.Errorf("%w: word cannot be empty", ErrInvalidWord)
	}
	if word != strings.TrimSpace(word) {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidWord, word)
	}
	if word == "." || word == ".." {
		return fmt.Errorf("%w: %q is not a valid file name", ErrInvalidWord, word)
	}
	if strings.ContainsAny(word, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidWord, word)
	}
	for _, r := range word {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains control characters", ErrInvalidWord, word)
		}
	}
	return nil
}
