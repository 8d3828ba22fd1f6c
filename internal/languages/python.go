package languages

import (
	"regexp"
	"strings"

	"github.com/codetree-dev/codetree/internal/parser"
)

var (
	pyImportPattern   = regexp.MustCompile(`(?m)^(?:from\s+[\w.]+\s+)?import\s+.+`)
	pyFunctionPattern = regexp.MustCompile(`(?m)^((?:@[\w.]+(?:\([^)]*\))?\s*\n)*)(async\s+)?def\s+(\w+)\s*\(([^)]*)\)`)
	pyClassPattern    = regexp.MustCompile(`(?m)^((?:@[\w.]+(?:\([^)]*\))?\s*\n)*)class\s+(\w+)(?:\(([^)]*)\))?:`)
	pyConstantPattern = regexp.MustCompile(`(?m)^([A-Z][A-Z_0-9]*)\s*=`)
	pyDocstring       = regexp.MustCompile(`^\s*:?\s*\n\s*(?:"""((?s:.+?))"""|'''((?s:.+?))''')`)
)

const (
	docstringWindow = 500
	docstringMax    = 200
)

// PythonExtractor finds module-level definitions in Python source.
type PythonExtractor struct{}

// NewPythonExtractor creates a new Python extraction strategy
func NewPythonExtractor() *PythonExtractor {
	return &PythonExtractor{}
}

func (p *PythonExtractor) Language() string {
	return "python"
}

func (p *PythonExtractor) Extract(text string) parser.FileInfo {
	li := newLineIndex(text)
	info := parser.FileInfo{
		Imports: collectLines(pyImportPattern, text),
	}

	matchAll(pyFunctionPattern, text, func(loc []int) {
		name := group(text, loc, 3)
		prefix := ""
		if group(text, loc, 2) != "" {
			prefix = "async "
		}
		e := entity(li, text, loc, name, parser.KindFunction)
		e.Signature = prefix + "def " + name + "(" + group(text, loc, 4) + ")"
		e.Decorators = nonEmptyLines(group(text, loc, 1))
		e.Docstring = pythonDocstring(text, loc[1])
		info.Functions = append(info.Functions, e)
	})

	matchAll(pyClassPattern, text, func(loc []int) {
		name := group(text, loc, 2)
		e := entity(li, text, loc, name, parser.KindClass)
		e.Signature = "class " + name
		if bases := group(text, loc, 3); bases != "" {
			e.Signature += "(" + bases + ")"
		}
		e.Decorators = nonEmptyLines(group(text, loc, 1))
		e.Docstring = pythonDocstring(text, loc[1])
		info.Classes = append(info.Classes, e)
	})

	matchAll(pyConstantPattern, text, func(loc []int) {
		info.Variables = append(info.Variables, group(text, loc, 1))
	})

	return info
}

// pythonDocstring reads a triple-quoted string that immediately follows a
// definition header ending at pos.
func pythonDocstring(text string, pos int) string {
	end := pos + docstringWindow
	if end > len(text) {
		end = len(text)
	}
	m := pyDocstring.FindStringSubmatch(text[pos:end])
	if m == nil {
		return ""
	}
	doc := m[1]
	if doc == "" {
		doc = m[2]
	}
	doc = strings.TrimSpace(doc)
	if len(doc) > docstringMax {
		doc = truncateUTF8(doc, docstringMax)
	}
	return doc
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
