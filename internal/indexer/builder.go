package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/codetree-dev/codetree/internal/ignore"
	"github.com/codetree-dev/codetree/internal/index"
	"github.com/codetree-dev/codetree/internal/parser"
)

// ErrRepositoryNotFound is returned when the root path is missing or is not
// a directory.
var ErrRepositoryNotFound = errors.New("repository not found")

// Per-file caps applied when summarizing extraction results into the tree.
const (
	maxImports   = 20
	maxFunctions = 50
	maxClasses   = 20
	maxVariables = 10
)

// Options controls which files the builder admits.
type Options struct {
	// Languages restricts indexing to these names. Empty admits every
	// language the registry recognizes.
	Languages []string
	// Exclude holds name, prefix and glob exclusion patterns.
	Exclude []string
	// AllowHidden lists dot-prefixed names that are still walked.
	AllowHidden []string
	// MaxFileSize skips files larger than this many bytes when positive.
	MaxFileSize int64
	// MaxFiles stops admitting files once this many were indexed when positive.
	MaxFiles int
	// OnFile is called with the relative path of every admitted file.
	OnFile func(relPath string)
}

// Builder walks a repository and produces a CodeIndex.
type Builder struct {
	registry *parser.Registry
	matcher  *ignore.Matcher
	allowed  map[string]struct{}
	opts     Options
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewBuilder creates a builder. A nil logger discards output.
func NewBuilder(registry *parser.Registry, opts Options, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	allowed := make(map[string]struct{}, len(opts.Languages))
	for _, lang := range opts.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			allowed[lang] = struct{}{}
		}
	}
	return &Builder{
		registry: registry,
		matcher:  ignore.NewMatcher(opts.Exclude, opts.AllowHidden),
		allowed:  allowed,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// buildStats accumulates totals for a single Build call.
type buildStats struct {
	files     int
	lines     int
	languages map[string]int
}

// Build indexes the repository rooted at repoRoot. Counters are scoped to the
// call, so building twice over an unchanged tree yields identical results.
func (b *Builder) Build(ctx context.Context, repoRoot string) (*index.CodeIndex, error) {
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", repoRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, abs)
	}

	stats := &buildStats{languages: make(map[string]int)}
	root, err := b.buildDirectory(ctx, abs, "", stats)
	if err != nil {
		return nil, err
	}
	if root == nil {
		root = &index.Node{Type: index.NodeDirectory}
	}
	root.Name = filepath.Base(abs)
	root.Path = ""

	b.logger.WithFields(logrus.Fields{
		"repo":  abs,
		"files": stats.files,
		"lines": stats.lines,
	}).Debug("index built")

	return &index.CodeIndex{
		Version:    index.SchemaVersion,
		RepoPath:   abs,
		CreatedAt:  b.now().UTC().Format(time.RFC3339),
		TotalFiles: stats.files,
		TotalLines: stats.lines,
		Languages:  stats.languages,
		Root:       root,
	}, nil
}

// buildDirectory returns the node for dir, or nil when nothing beneath it
// was admitted. The root is always returned.
func (b *Builder) buildDirectory(ctx context.Context, dir, relPath string, stats *buildStats) (*index.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		b.logger.WithError(err).WithField("path", relPath).Debug("skipping unreadable directory")
		entries = nil
	}

	children := sortEntries(dir, entries)
	node := &index.Node{
		Name: filepath.Base(dir),
		Type: index.NodeDirectory,
		Path: relPath,
	}

	for _, entry := range children {
		childRel := joinRel(relPath, entry.name)
		if b.matcher.Excluded(entry.name, childRel) {
			continue
		}

		if entry.isDir {
			child, err := b.buildDirectory(ctx, filepath.Join(dir, entry.name), childRel, stats)
			if err != nil {
				return nil, err
			}
			if child != nil {
				node.Children = append(node.Children, child)
				node.FileCount += child.FileCount
			}
			continue
		}

		child := b.buildFile(filepath.Join(dir, entry.name), childRel, entry.size, stats)
		if child != nil {
			node.Children = append(node.Children, child)
			node.FileCount++
		}
	}

	if relPath != "" && len(node.Children) == 0 {
		return nil, nil
	}
	return node, nil
}

// buildFile admits one file, returning nil when it is skipped.
func (b *Builder) buildFile(path, relPath string, size int64, stats *buildStats) *index.Node {
	if b.opts.MaxFiles > 0 && stats.files >= b.opts.MaxFiles {
		return nil
	}
	lang, ok := b.registry.DetectLanguage(path)
	if !ok {
		return nil
	}
	if len(b.allowed) > 0 {
		if _, ok := b.allowed[lang]; !ok {
			return nil
		}
	}
	if b.opts.MaxFileSize > 0 && size > b.opts.MaxFileSize {
		b.logger.WithField("path", relPath).Debug("skipping oversized file")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		b.logger.WithError(err).WithField("path", relPath).Debug("skipping unreadable file")
		return nil
	}
	if !utf8.Valid(data) {
		b.logger.WithField("path", relPath).Debug("skipping non-UTF-8 file")
		return nil
	}

	info := b.registry.Extract(lang, string(data))

	stats.files++
	stats.lines += info.LineCount
	stats.languages[lang]++
	if b.opts.OnFile != nil {
		b.opts.OnFile(relPath)
	}

	return &index.Node{
		Name:      filepath.Base(path),
		Type:      index.NodeFile,
		Path:      relPath,
		Language:  lang,
		Imports:   truncateStrings(info.Imports, maxImports),
		Functions: symbols(info.Functions, maxFunctions),
		Classes:   symbols(info.Classes, maxClasses),
		Variables: truncateStrings(info.Variables, maxVariables),
		LineCount: info.LineCount,
	}
}

type dirEntry struct {
	name  string
	isDir bool
	size  int64
}

// sortEntries resolves entry kinds and orders directories before files, then
// by case-insensitive name. Symlinked directories are skipped.
func sortEntries(dir string, entries []os.DirEntry) []dirEntry {
	out := make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil || target.IsDir() {
				continue
			}
			info = target
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			continue
		}
		out = append(out, dirEntry{name: e.Name(), isDir: info.IsDir(), size: info.Size()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].isDir != out[j].isDir {
			return out[i].isDir
		}
		li, lj := strings.ToLower(out[i].name), strings.ToLower(out[j].name)
		if li != lj {
			return li < lj
		}
		return out[i].name < out[j].name
	})
	return out
}

func joinRel(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func truncateStrings(items []string, limit int) []string {
	if len(items) == 0 {
		return nil
	}
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}

func symbols(entities []parser.CodeEntity, limit int) []index.Symbol {
	if len(entities) == 0 {
		return nil
	}
	if len(entities) > limit {
		entities = entities[:limit]
	}
	out := make([]index.Symbol, 0, len(entities))
	for _, e := range entities {
		out = append(out, index.Symbol{
			Name:      e.Name,
			Signature: e.Signature,
			Docstring: e.Docstring,
			Parent:    e.Parent,
			Line:      e.StartLine,
		})
	}
	return out
}
