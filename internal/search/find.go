package search

import (
	"strings"

	"github.com/codetree-dev/codetree/internal/index"
)

// Kind classifies a symbol reference.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
	KindImport   Kind = "import"
)

// Reference is one place a symbol name occurs in the index.
type Reference struct {
	Kind      Kind   `json:"type"`
	File      string `json:"file"`
	Name      string `json:"name,omitempty"`
	Parent    string `json:"parent,omitempty"`
	Line      int    `json:"line,omitempty"`
	Statement string `json:"statement,omitempty"`
}

// Find returns every function, class and import whose text contains symbol,
// compared case-insensitively. Files are visited in tree order and each
// file contributes functions, then classes, then imports.
func Find(idx *index.CodeIndex, symbol string) []Reference {
	if idx == nil {
		return nil
	}
	needle := strings.ToLower(symbol)

	var refs []Reference
	index.Walk(idx.Root, func(n *index.Node) bool {
		if n.IsDir() {
			return true
		}
		for _, fn := range n.Functions {
			if contains(fn.Name, needle) {
				refs = append(refs, Reference{Kind: KindFunction, File: n.Path, Name: fn.Name, Parent: fn.Parent, Line: fn.Line})
			}
		}
		for _, cls := range n.Classes {
			if contains(cls.Name, needle) {
				refs = append(refs, Reference{Kind: KindClass, File: n.Path, Name: cls.Name, Line: cls.Line})
			}
		}
		for _, imp := range n.Imports {
			if contains(imp, needle) {
				refs = append(refs, Reference{Kind: KindImport, File: n.Path, Statement: imp})
			}
		}
		return true
	})
	return refs
}

func contains(text, needle string) bool {
	return strings.Contains(strings.ToLower(text), needle)
}
