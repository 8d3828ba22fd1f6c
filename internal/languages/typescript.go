package languages

import (
	"regexp"

	"github.com/codetree-dev/codetree/internal/parser"
)

var (
	scriptImportPattern   = regexp.MustCompile(`(?m)^(?:import|export)\s+.+?['"];?$`)
	scriptFunctionPattern = regexp.MustCompile(`(?:export\s+)?(?:async\s+)?function\s+(\w+)\s*\(([^)]*)\)`)
	scriptArrowPattern    = regexp.MustCompile(`(?:export\s+)?const\s+(\w+)\s*=\s*(?:async\s+)?\(([^)]*)\)\s*=>`)
	scriptClassPattern    = regexp.MustCompile(`(?:export\s+)?class\s+(\w+)(?:\s+extends\s+(\w+))?`)
)

// ScriptExtractor handles JavaScript and TypeScript, which share one set of
// declaration patterns.
type ScriptExtractor struct {
	language string
}

// NewJavaScriptExtractor creates the JavaScript extraction strategy
func NewJavaScriptExtractor() *ScriptExtractor {
	return &ScriptExtractor{language: "javascript"}
}

// NewTypeScriptExtractor creates the TypeScript extraction strategy
func NewTypeScriptExtractor() *ScriptExtractor {
	return &ScriptExtractor{language: "typescript"}
}

func (s *ScriptExtractor) Language() string {
	return s.language
}

func (s *ScriptExtractor) Extract(text string) parser.FileInfo {
	li := newLineIndex(text)
	info := parser.FileInfo{
		Imports: collectLines(scriptImportPattern, text),
	}

	matchAll(scriptFunctionPattern, text, func(loc []int) {
		name := group(text, loc, 1)
		e := entity(li, text, loc, name, parser.KindFunction)
		e.Signature = "function " + name + "(" + group(text, loc, 2) + ")"
		info.Functions = append(info.Functions, e)
	})

	matchAll(scriptArrowPattern, text, func(loc []int) {
		name := group(text, loc, 1)
		e := entity(li, text, loc, name, parser.KindFunction)
		e.Signature = "const " + name + " = (" + group(text, loc, 2) + ") =>"
		info.Functions = append(info.Functions, e)
	})

	matchAll(scriptClassPattern, text, func(loc []int) {
		name := group(text, loc, 1)
		e := entity(li, text, loc, name, parser.KindClass)
		e.Signature = "class " + name
		if base := group(text, loc, 2); base != "" {
			e.Signature += " extends " + base
		}
		info.Classes = append(info.Classes, e)
	})

	return info
}
