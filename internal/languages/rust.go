package languages

import (
	"regexp"

	"github.com/codetree-dev/codetree/internal/parser"
)

var (
	rustUsePattern      = regexp.MustCompile(`(?m)^use\s+.+;`)
	rustFunctionPattern = regexp.MustCompile(`(?:pub\s+)?(async\s+)?fn\s+(\w+)\s*(?:<[^>]+>)?\s*\(([^)]*)\)`)
)

// RustExtractor finds use declarations and functions in Rust source.
type RustExtractor struct{}

func NewRustExtractor() *RustExtractor {
	return &RustExtractor{}
}

func (r *RustExtractor) Language() string {
	return "rust"
}

func (r *RustExtractor) Extract(text string) parser.FileInfo {
	li := newLineIndex(text)
	info := parser.FileInfo{
		Imports: collectLines(rustUsePattern, text),
	}

	matchAll(rustFunctionPattern, text, func(loc []int) {
		name := group(text, loc, 2)
		e := entity(li, text, loc, name, parser.KindFunction)
		prefix := ""
		if group(text, loc, 1) != "" {
			prefix = "async "
		}
		e.Signature = prefix + "fn " + name + "(" + group(text, loc, 3) + ")"
		info.Functions = append(info.Functions, e)
	})

	return info
}
