package diagnostic

import "sort"

// LineIndex provides efficient byte offset to line/column conversion.
// It pre-computes line start positions for O(log n) lookups.
type LineIndex struct {
	source     string
	lineStarts []int // byte offset of each line start
}

// NewLineIndex creates a LineIndex for the given source.
func NewLineIndex(source string) *LineIndex {
	idx := &LineIndex{
		source:     source,
		lineStarts: []int{0}, // First line starts at offset 0
	}

	for i := 0; i < len(source); i++ {
		c := source[i]
		if c == '\n' {
			// LF - next line starts after this (unless at end of source)
			if i+1 < len(source) {
				idx.lineStarts = append(idx.lineStarts, i+1)
			}
		} else if c == '\r' {
			if i+1 < len(source) && source[i+1] == '\n' {
				// CRLF is handled by the LF branch on the next iteration
				continue
			}
			if i+1 < len(source) {
				idx.lineStarts = append(idx.lineStarts, i+1)
			}
		}
	}

	return idx
}

// LineCount returns the number of lines in the source.
func (idx *LineIndex) LineCount() int {
	return len(idx.lineStarts)
}

// ByteOffsetToLineColumn converts a byte offset to 0-indexed line and column.
// The column is in bytes.
func (idx *LineIndex) ByteOffsetToLineColumn(offset int) (line, col int) {
	if offset < 0 {
		return 0, 0
	}
	if offset > len(idx.source) {
		offset = len(idx.source)
	}

	// Binary search for the line containing this offset
	line = sort.Search(len(idx.lineStarts), func(i int) bool {
		return idx.lineStarts[i] > offset
	}) - 1

	if line < 0 {
		line = 0
	}

	return line, offset - idx.lineStarts[line]
}
