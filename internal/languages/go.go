package languages

import (
	"regexp"
	"strings"

	"github.com/codetree-dev/codetree/internal/parser"
)

var (
	goImportPattern   = regexp.MustCompile(`import\s+(?:\(\s*([^)]+)\s*\)|"([^"]+)")`)
	goFunctionPattern = regexp.MustCompile(`func\s+(\([^)]+\)\s+)?(\w+)\s*\(([^)]*)\)`)
)

// GoExtractor finds imports and function declarations in Go source.
type GoExtractor struct{}

// NewGoExtractor creates a new Go extraction strategy
func NewGoExtractor() *GoExtractor {
	return &GoExtractor{}
}

func (g *GoExtractor) Language() string {
	return "go"
}

func (g *GoExtractor) Extract(text string) parser.FileInfo {
	li := newLineIndex(text)
	info := parser.FileInfo{}

	matchAll(goImportPattern, text, func(loc []int) {
		if block := group(text, loc, 1); block != "" {
			for _, line := range nonEmptyLines(block) {
				if path := goImportPath(line); path != "" {
					info.Imports = append(info.Imports, path)
				}
			}
			return
		}
		if single := group(text, loc, 2); single != "" {
			info.Imports = append(info.Imports, single)
		}
	})

	matchAll(goFunctionPattern, text, func(loc []int) {
		name := group(text, loc, 2)
		kind := parser.KindFunction
		receiver := strings.TrimSpace(group(text, loc, 1))
		if receiver != "" {
			kind = parser.KindMethod
		}
		e := entity(li, text, loc, name, kind)
		e.Signature = "func " + name + "(" + group(text, loc, 3) + ")"
		e.Parent = receiverType(receiver)
		info.Functions = append(info.Functions, e)
	})

	return info
}

// goImportPath returns the quoted path of one import spec line, dropping any
// alias and trailing comment.
func goImportPath(line string) string {
	if strings.HasPrefix(line, "//") {
		return ""
	}
	if i := strings.IndexByte(line, '"'); i != -1 {
		rest := line[i+1:]
		if j := strings.IndexByte(rest, '"'); j != -1 {
			return rest[:j]
		}
	}
	return strings.Trim(line, "\"`")
}

// receiverType turns "(s *Server)" into "Server".
func receiverType(receiver string) string {
	receiver = strings.TrimSuffix(strings.TrimPrefix(receiver, "("), ")")
	fields := strings.Fields(receiver)
	if len(fields) == 0 {
		return ""
	}
	typ := strings.TrimPrefix(fields[len(fields)-1], "*")
	if i := strings.Index(typ, "["); i != -1 {
		typ = typ[:i]
	}
	return typ
}
