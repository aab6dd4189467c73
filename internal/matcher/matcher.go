package matcher

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// ErrInvalidPattern is returned when a word pattern cannot be used for scanning.
var ErrInvalidPattern = errors.New("invalid word pattern")

// Match is one word marker found in a text.
type Match struct {
	Word   string // captured word, trimmed
	Line   int    // zero-based line number
	Offset int    // byte offset of the match in the scanned text
	Raw    string // full matched text
}

// Matcher applies a compiled word pattern to lines and documents.
type Matcher struct {
	pattern string
	re      *regexp.Regexp // anchored at the line start
	global  *regexp.Regexp // multiline, as written
}

// New compiles pattern and checks that it captures exactly one group.
// Single lines are matched with the pattern anchored at the line start;
// whole documents are scanned with the pattern as written.
func New(pattern string) (*Matcher, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: pattern is empty", ErrInvalidPattern)
	}

	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if n := re.NumSubexp(); n != 1 {
		return nil, fmt.Errorf("%w: expected exactly one capture group, got %d", ErrInvalidPattern, n)
	}

	global, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	return &Matcher{pattern: pattern, re: re, global: global}, nil
}

// MustNew is like New but panics on an invalid pattern. Intended for
// patterns known at compile time.
func MustNew(pattern string) *Matcher {
	m, err := New(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Pattern returns the pattern the matcher was built from.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Expr returns the line-anchored expression used for matching, without the
// multiline flag. It is meant for embedding into larger expressions.
func (m *Matcher) Expr() string {
	return m.re.String()
}

// MatchLine reports the word marker at the start of line, if any.
func (m *Matcher) MatchLine(line string) (Match, bool) {
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return Match{}, false
	}
	word := strings.TrimSpace(sub[1])
	if word == "" {
		return Match{}, false
	}
	return Match{Word: word, Raw: sub[0]}, true
}

// All yields every word marker in text in document order. Matches do not
// overlap and may start anywhere in a line unless the pattern is anchored.
func (m *Matcher) All(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		lineNo, scanned := 0, 0
		for _, loc := range m.global.FindAllStringSubmatchIndex(text, -1) {
			if loc[2] < 0 {
				continue
			}
			word := strings.TrimSpace(text[loc[2]:loc[3]])
			if word == "" {
				continue
			}

			lineNo += strings.Count(text[scanned:loc[0]], "\n")
			scanned = loc[0]

			match := Match{Word: word, Line: lineNo, Offset: loc[0], Raw: text[loc[0]:loc[1]]}
			if !yield(match) {
				return
			}
		}
	}
}

// Collect returns the distinct words found across texts, in first-seen order.
func (m *Matcher) Collect(texts ...string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, text := range texts {
		for match := range m.All(text) {
			if seen[match.Word] {
				continue
			}
			seen[match.Word] = true
			words = append(words, match.Word)
		}
	}
	return words
}
