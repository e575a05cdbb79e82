package util

import (
	"bytes"
	"fmt"
	"strings"
)

// LineAndColumn converts a byte offset into a 1-based line and a 1-based
// column counted in runes.
func LineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range src {
		if i >= pos {
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

// ContextLines renders up to two lines before the one holding pos and marks
// the column with a caret followed by note.
func ContextLines(src string, pos int, note string) string {
	var result bytes.Buffer

	line, col := LineAndColumn(src, pos)
	lines := strings.Split(src, "\n")

	startLine := max(line-2, 1)
	for i := startLine; i <= line && i <= len(lines); i++ {
		content := lines[i-1]
		if i != line {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, content))
			continue
		}
		margin := fmt.Sprintf("  >  %3d | ", i)
		result.WriteString(fmt.Sprintf("%s%s\n", margin, content))
		runes := []rune(content)
		prefix := string(runes[:min(col-1, len(runes))])
		result.WriteString(fmt.Sprintf("%s^ %s", blankVisible(margin+prefix), note))
	}

	return result.String()
}

// blankVisible replaces everything but tabs with spaces so the caret lines
// up under tab-indented source.
func blankVisible(s string) string {
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
