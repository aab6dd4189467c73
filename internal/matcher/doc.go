// Package matcher extracts vocabulary words from note text using a
// configurable regular expression with exactly one capture group. Line
// scans anchor the pattern at the start of the line; document scans apply
// it to every line and can collapse the result into a word set.
package matcher
