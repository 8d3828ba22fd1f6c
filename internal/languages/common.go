package languages

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/codetree-dev/codetree/internal/parser"
)

// lineIndex holds the byte offset at which every line starts.
type lineIndex []int

func newLineIndex(text string) lineIndex {
	starts := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineAt returns the 1-based line containing offset.
func (li lineIndex) lineAt(offset int) int {
	return sort.Search(len(li), func(i int) bool { return li[i] > offset })
}

// matchLine returns the line of the first non-space byte of a match. Patterns
// with leading \s* would otherwise report the line before the declaration.
func (li lineIndex) matchLine(text string, start, end int) int {
	for start < end && unicode.IsSpace(rune(text[start])) {
		start++
	}
	return li.lineAt(start)
}

// group returns submatch i of loc, or "" when it did not participate.
func group(text string, loc []int, i int) string {
	if 2*i+1 >= len(loc) || loc[2*i] < 0 {
		return ""
	}
	return text[loc[2*i]:loc[2*i+1]]
}

// matchAll runs re over text and invokes fn for every match in source order.
func matchAll(re *regexp.Regexp, text string, fn func(loc []int)) {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		fn(loc)
	}
}

// entity builds a single-line entity at the match position.
func entity(li lineIndex, text string, loc []int, name string, kind parser.EntityKind) parser.CodeEntity {
	line := li.matchLine(text, loc[0], loc[1])
	return parser.CodeEntity{
		Name:      name,
		Kind:      kind,
		StartLine: line,
		EndLine:   line,
	}
}

// collectLines returns every match of re, trimmed, in source order.
func collectLines(re *regexp.Regexp, text string) []string {
	matches := re.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// nonEmptyLines splits block on newlines and keeps trimmed, non-empty lines.
func nonEmptyLines(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
