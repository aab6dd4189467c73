// Package annotate inserts pronunciation blocks under vocabulary word
// markers in notes. A block is a fenced region tagged "pronounce" whose
// body is the word itself:
//
//	```pronounce
//	wisdom
//	```
//
// Insertion is idempotent: a word whose block already sits within the scan
// horizon below its marker is left alone, so annotating a note twice yields
// the same text as annotating it once.
package annotate
