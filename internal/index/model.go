package index

import (
	"sort"
)

// SchemaVersion is written into every index document.
const SchemaVersion = "0.1.0"

// NodeType distinguishes files from directories in the tree.
type NodeType string

const (
	NodeFile      NodeType = "file"
	NodeDirectory NodeType = "directory"
)

// Symbol is a function or class summary stored on a file node. Parent names
// the receiver type of a Go method.
type Symbol struct {
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
	Docstring string `json:"docstring,omitempty"`
	Parent    string `json:"parent,omitempty"`
	Line      int    `json:"line"`
}

// Node is a file or directory in the index tree. Paths are relative to the
// repository root and use "/" separators. The root directory has path "".
type Node struct {
	Name string   `json:"name"`
	Type NodeType `json:"type"`
	Path string   `json:"path"`

	// file nodes
	Language  string   `json:"language,omitempty"`
	Imports   []string `json:"imports,omitempty"`
	Functions []Symbol `json:"functions,omitempty"`
	Classes   []Symbol `json:"classes,omitempty"`
	Variables []string `json:"variables,omitempty"`
	LineCount int      `json:"line_count,omitempty"`

	// directory nodes
	Children  []*Node `json:"children,omitempty"`
	FileCount int     `json:"file_count,omitempty"`
}

// IsDir reports whether n is a directory node.
func (n *Node) IsDir() bool {
	return n.Type == NodeDirectory
}

// CodeIndex is the complete structural index of one repository.
type CodeIndex struct {
	Version    string
	RepoPath   string
	CreatedAt  string
	TotalFiles int
	TotalLines int
	Languages  map[string]int
	Root       *Node
}

// Walk visits every node below and including root in tree order. Returning
// false from fn skips the node's children.
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for _, child := range root.Children {
		Walk(child, fn)
	}
}

// Files returns every file node in tree order.
func (idx *CodeIndex) Files() []*Node {
	var files []*Node
	Walk(idx.Root, func(n *Node) bool {
		if !n.IsDir() {
			files = append(files, n)
		}
		return true
	})
	return files
}

// Stats summarizes an index without its tree.
type Stats struct {
	RepoPath   string         `json:"repo_path"`
	TotalFiles int            `json:"total_files"`
	TotalLines int            `json:"total_lines"`
	Languages  map[string]int `json:"languages"`
	CreatedAt  string         `json:"created_at"`
}

// Stats returns the index summary.
func (idx *CodeIndex) Stats() Stats {
	langs := make(map[string]int, len(idx.Languages))
	for k, v := range idx.Languages {
		langs[k] = v
	}
	return Stats{
		RepoPath:   idx.RepoPath,
		TotalFiles: idx.TotalFiles,
		TotalLines: idx.TotalLines,
		Languages:  langs,
		CreatedAt:  idx.CreatedAt,
	}
}

// LanguageCount is one entry of a language histogram.
type LanguageCount struct {
	Language string
	Files    int
}

// SortedLanguages returns the language histogram ordered by descending file
// count, then by name.
func (s Stats) SortedLanguages() []LanguageCount {
	out := make([]LanguageCount, 0, len(s.Languages))
	for lang, n := range s.Languages {
		out = append(out, LanguageCount{Language: lang, Files: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Files != out[j].Files {
			return out[i].Files > out[j].Files
		}
		return out[i].Language < out[j].Language
	})
	return out
}
