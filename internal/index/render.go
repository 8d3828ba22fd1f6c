package index

import (
	"fmt"
	"strings"
)

const (
	maxRenderedFunctions = 5
	maxRenderedClasses   = 5
)

// RenderCompact renders the tree as indented text for use as reasoning
// context. Directories end in "/", files carry a "[language]" tag and list up
// to five function and five class names. Nodes deeper than maxDepth are
// omitted; the root is depth 0.
func RenderCompact(idx *CodeIndex, maxDepth int) string {
	if idx == nil || idx.Root == nil {
		return ""
	}
	var lines []string
	renderNode(&lines, idx.Root, 0, maxDepth)
	return strings.Join(lines, "\n")
}

func renderNode(lines *[]string, n *Node, depth, maxDepth int) {
	if depth > maxDepth {
		return
	}
	indent := strings.Repeat("  ", depth)

	if n.IsDir() {
		*lines = append(*lines, indent+n.Name+"/")
		for _, child := range n.Children {
			renderNode(lines, child, depth+1, maxDepth)
		}
		return
	}

	line := indent + n.Name
	if n.Language != "" {
		line += " [" + n.Language + "]"
	}
	*lines = append(*lines, line)

	if len(n.Functions) > 0 {
		*lines = append(*lines, indent+"  → functions: "+summarizeSymbols(n.Functions, maxRenderedFunctions))
	}
	if len(n.Classes) > 0 {
		*lines = append(*lines, indent+"  → classes: "+summarizeSymbols(n.Classes, maxRenderedClasses))
	}
}

// summarizeSymbols joins up to limit names and notes how many were left out.
func summarizeSymbols(symbols []Symbol, limit int) string {
	shown := symbols
	if len(shown) > limit {
		shown = shown[:limit]
	}
	names := make([]string, 0, len(shown))
	for _, s := range shown {
		names = append(names, s.Name)
	}
	out := strings.Join(names, ", ")
	if extra := len(symbols) - len(shown); extra > 0 {
		out += fmt.Sprintf(" (+%d more)", extra)
	}
	return out
}
