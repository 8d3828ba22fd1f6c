package languages

import (
	"regexp"
	"strings"

	"github.com/codetree-dev/codetree/internal/parser"
)

var (
	javaImportPattern = regexp.MustCompile(`(?m)^import\s+.+;`)
	javaClassPattern  = regexp.MustCompile(`((?:@\w+(?:\([^)]*\))?\s+)*)(?:public\s+)?(?:abstract\s+)?class\s+(\w+)(?:\s+extends\s+(\w+))?`)
	javaMethodPattern = regexp.MustCompile(`((?:@\w+(?:\([^)]*\))?\s+)*)(?:public|private|protected)?\s*(?:static\s+)?(\w+)\s+(\w+)\s*\(([^)]*)\)`)
)

// Control-flow keywords look like method headers to the method pattern.
var javaKeywords = map[string]struct{}{
	"if":     {},
	"while":  {},
	"for":    {},
	"switch": {},
	"catch":  {},
}

// Statements such as "return foo(x)" or "new Foo(x)" are not declarations.
var javaStatementWords = map[string]struct{}{
	"return": {},
	"new":    {},
	"throw":  {},
	"else":   {},
}

// JavaExtractor finds imports, classes and methods in Java source.
type JavaExtractor struct{}

func NewJavaExtractor() *JavaExtractor {
	return &JavaExtractor{}
}

func (j *JavaExtractor) Language() string {
	return "java"
}

func (j *JavaExtractor) Extract(text string) parser.FileInfo {
	li := newLineIndex(text)
	info := parser.FileInfo{
		Imports: collectLines(javaImportPattern, text),
	}

	matchAll(javaClassPattern, text, func(loc []int) {
		name := group(text, loc, 2)
		e := entity(li, text, loc, name, parser.KindClass)
		e.Signature = "class " + name
		if base := group(text, loc, 3); base != "" {
			e.Signature += " extends " + base
		}
		e.Decorators = annotations(group(text, loc, 1))
		info.Classes = append(info.Classes, e)
	})

	matchAll(javaMethodPattern, text, func(loc []int) {
		name := group(text, loc, 3)
		if _, skip := javaKeywords[name]; skip {
			return
		}
		if _, skip := javaStatementWords[group(text, loc, 2)]; skip {
			return
		}
		e := entity(li, text, loc, name, parser.KindMethod)
		e.Signature = group(text, loc, 2) + " " + name + "(" + group(text, loc, 4) + ")"
		e.Decorators = annotations(group(text, loc, 1))
		info.Functions = append(info.Functions, e)
	})

	return info
}

// annotations splits a run of annotations into one entry per annotation.
func annotations(block string) []string {
	var out []string
	for _, line := range nonEmptyLines(block) {
		out = append(out, splitAnnotations(line)...)
	}
	return out
}

// splitAnnotations separates "@A @B(x)" written on one line.
func splitAnnotations(line string) []string {
	var out []string
	start := -1
	depth := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '@':
			if depth == 0 {
				if start >= 0 {
					out = append(out, strings.TrimSpace(line[start:i]))
				}
				start = i
			}
		}
	}
	if start >= 0 {
		out = append(out, strings.TrimSpace(line[start:]))
	}
	return out
}
