package parser

import (
	"bytes"
	"sort"
)

// BuildLineIndex returns the byte offset at which each line of content starts.
// The first entry is always 0.
func BuildLineIndex(content []byte) []int {
	lines := make([]int, 1, bytes.Count(content, []byte{'\n'})+1)

	for i, b := range content {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}

// OffsetToLineCol converts a byte offset to a 1-based line and column using an
// index built by BuildLineIndex.
func OffsetToLineCol(lines []int, offset int) (line, col int) {
	if len(lines) == 0 || offset < 0 {
		return 1, 1
	}

	// First line starting after offset; the offset is on the line before it.
	i := sort.SearchInts(lines, offset+1)
	if i == 0 {
		return 1, offset + 1
	}
	return i, offset - lines[i-1] + 1
}

// LineColToOffset converts a 1-based line and column back to a byte offset.
// Out-of-range lines clamp to the first or last line.
func LineColToOffset(lines []int, line, col int) int {
	if len(lines) == 0 {
		return 0
	}
	line = min(max(line, 1), len(lines))
	return lines[line-1] + max(col, 1) - 1
}
