package parser

import "strings"

// EntityKind represents the type of an extracted code entity
type EntityKind string

const (
	KindFunction EntityKind = "function"
	KindMethod   EntityKind = "method"
	KindClass    EntityKind = "class"
)

// CodeEntity is one structural element found in a source file.
type CodeEntity struct {
	Name       string
	Kind       EntityKind
	StartLine  int
	EndLine    int
	Signature  string
	Docstring  string
	Decorators []string
	Parent     string
}

// FileInfo holds everything extracted from one source file.
type FileInfo struct {
	Language  string
	Imports   []string
	Functions []CodeEntity
	Classes   []CodeEntity
	Variables []string
	LineCount int
}

// Empty reports whether no entities were found.
func (f FileInfo) Empty() bool {
	return len(f.Imports) == 0 && len(f.Functions) == 0 && len(f.Classes) == 0 && len(f.Variables) == 0
}

// CountLines returns the number of newline-separated lines in text. Empty text
// has zero lines and a trailing newline does not start a new one.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
