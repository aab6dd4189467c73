// Package batch reads word-list files for bulk cache synchronization.
package batch

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// WordEntry is one line of a word list.
type WordEntry struct {
	Word string
	// Note is the text after '=', usually a translation. It is kept for
	// display only.
	Note string
}

// ReadWordList reads words from a file.
// Supports formats:
// - Word only: "wisdom"
// - With a note: "wisdom = мъдрост"
// Lines without a word ("= note"), blank lines and lines starting with '#'
// are ignored.
func ReadWordList(filename string) ([]WordEntry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	defer f.Close()

	var entries []WordEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, note, _ := strings.Cut(line, "=")
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		entries = append(entries, WordEntry{Word: word, Note: strings.TrimSpace(note)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	return entries, nil
}

// Words returns the distinct words of entries in file order.
func Words(entries []WordEntry) []string {
	seen := make(map[string]bool, len(entries))
	var words []string
	for _, e := range entries {
		if seen[e.Word] {
			continue
		}
		seen[e.Word] = true
		words = append(words, e.Word)
	}
	return words
}
