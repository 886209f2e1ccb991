package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetLineAndColumn converts a src index into 1-based line and column.
func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range src {
		if i == pos {
			break
		}
		if char == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}

// OffsetOf is the inverse of GetLineAndColumn. Out of range positions clamp to len(src).
func OffsetOf(src string, line, column int) int {
	l, c := 1, 1
	for i, char := range src {
		if l == line && c == column {
			return i
		}
		if char == '\n' {
			if l == line {
				return i
			}
			l++
			c = 1
		} else {
			c++
		}
	}
	return len(src)
}

// GetContextLines extracts and formats context lines around an error position,
// with a caret under the error column followed by note.
func GetContextLines(src string, errorLine, errorCol int, note string) string {
	var result bytes.Buffer

	lines := strings.Split(src, "\n")

	// Show 2 lines before the error line (if available)
	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i <= errorLine && i <= len(lines); i++ {
		lineContent := lines[i-1]

		if i == errorLine {
			margin := fmt.Sprintf("  >  %3d | ", i)
			result.WriteString(fmt.Sprintf("%s%s\n", margin, lineContent))
			prefix := lineContent
			if errorCol-1 < len(prefix) {
				prefix = prefix[:errorCol-1]
			}
			result.WriteString(fmt.Sprintf("%s^ %s\n",
				replaceVisibleWithSpaces(margin+prefix), note))
		} else {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lineContent))
		}
	}

	return result.String()
}

// replaceVisibleWithSpaces replaces all non-whitespace characters with spaces
// while preserving tabs for correct alignment.
func replaceVisibleWithSpaces(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
