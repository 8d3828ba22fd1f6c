package languages

import "github.com/codetree-dev/codetree/internal/parser"

// Extensions lists the file extensions recognized for each language.
var Extensions = map[string][]string{
	"python":     {".py", ".pyi"},
	"javascript": {".js", ".jsx", ".mjs"},
	"typescript": {".ts", ".tsx"},
	"go":         {".go"},
	"rust":       {".rs"},
	"java":       {".java"},
	"c":          {".c", ".h"},
	"cpp":        {".cpp", ".hpp", ".cc", ".cxx"},
}

// NewDefaultRegistry creates a registry with all supported languages and
// extraction strategies. C and C++ are classified but have no strategy.
func NewDefaultRegistry() *parser.Registry {
	r := parser.NewRegistry()

	for lang, exts := range Extensions {
		r.RegisterLanguage(lang, exts...)
	}

	r.Register(NewPythonExtractor())
	r.Register(NewJavaScriptExtractor())
	r.Register(NewTypeScriptExtractor())
	r.Register(NewGoExtractor())
	r.Register(NewRustExtractor())
	r.Register(NewJavaExtractor())

	return r
}
