package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/codetree-dev/codetree/internal/fileutil"
	"github.com/codetree-dev/codetree/internal/index"
	"github.com/codetree-dev/codetree/internal/search"
)

type IndexSummary struct {
	RepoPath   string         `json:"repo_path"`
	IndexPath  string         `json:"index_path"`
	Files      int            `json:"files"`
	Lines      int            `json:"lines"`
	Languages  map[string]int `json:"languages"`
	DurationMS int64          `json:"duration_ms"`
}

func PrintIndexSummary(w io.Writer, summary IndexSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, summary)
	}

	stats := index.Stats{Languages: summary.Languages}
	fmt.Fprintf(w, "index complete in %dms\n", summary.DurationMS)
	fmt.Fprintf(w, "files: %d\n", summary.Files)
	fmt.Fprintf(w, "lines: %s\n", index.FormatCount(summary.Lines))
	fmt.Fprintf(w, "languages: %s\n", stats.LanguageSummary())
	fmt.Fprintf(w, "index saved to: %s\n", summary.IndexPath)
	return nil
}

func PrintStats(w io.Writer, stats index.Stats, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(w, stats)
	}

	fmt.Fprintf(w, "Repository: %s\n", filepath.Base(stats.RepoPath))
	fmt.Fprintf(w, "Path: %s\n\n", stats.RepoPath)
	fmt.Fprintf(w, "Files: %d\n", stats.TotalFiles)
	fmt.Fprintf(w, "Lines: %s\n\n", index.FormatCount(stats.TotalLines))
	fmt.Fprintln(w, "Languages:")
	for _, lc := range stats.SortedLanguages() {
		fmt.Fprintf(w, "  - %s: %d files\n", lc.Language, lc.Files)
	}
	fmt.Fprintf(w, "\nIndexed at: %s\n", stats.CreatedAt)
	return nil
}

func PrintReferences(w io.Writer, symbol string, refs []search.Reference, asJSON bool) error {
	if asJSON {
		if refs == nil {
			refs = []search.Reference{}
		}
		return fileutil.PrintJSON(w, refs)
	}

	if len(refs) == 0 {
		fmt.Fprintf(w, "No references found for '%s'\n", symbol)
		return nil
	}
	fmt.Fprintf(w, "Found %d references to '%s':\n\n", len(refs), symbol)
	for _, ref := range refs {
		fmt.Fprintln(w, FormatReference(ref))
	}
	return nil
}

// FormatReference renders one search hit on a single line.
func FormatReference(ref search.Reference) string {
	if ref.Kind == search.KindImport {
		return fmt.Sprintf("  %-8s %s: %s", ref.Kind, ref.File, ref.Statement)
	}
	location := ref.File
	if ref.Line > 0 {
		location += ":" + strconv.Itoa(ref.Line)
	}
	return fmt.Sprintf("  %-8s %s → %s", ref.Kind, location, ref.Name)
}
