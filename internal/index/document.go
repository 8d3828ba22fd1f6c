package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codetree-dev/codetree/internal/fileutil"
)

const (
	// Dir is the per-repository directory holding codetree artifacts.
	Dir = ".codetree"
	// FileName is the default index document name inside Dir.
	FileName = "index.json"
)

// ErrMalformedDocument is returned when an index document cannot be decoded
// or lacks a required field.
var ErrMalformedDocument = errors.New("malformed index document")

// document is the persisted JSON shape of a CodeIndex.
type document struct {
	Version    string         `json:"version"`
	RepoPath   *string        `json:"repo_path"`
	CreatedAt  *string        `json:"created_at"`
	TotalFiles int            `json:"total_files"`
	TotalLines int            `json:"total_lines"`
	Languages  map[string]int `json:"languages"`
	Root       *Node          `json:"root"`
}

// DefaultPath returns the conventional index location for a repository.
func DefaultPath(repoRoot string) string {
	return filepath.Join(repoRoot, Dir, FileName)
}

// Encode serializes idx as an indented JSON document.
func Encode(idx *CodeIndex) ([]byte, error) {
	if idx == nil || idx.Root == nil {
		return nil, fmt.Errorf("%w: missing root", ErrMalformedDocument)
	}

	version := idx.Version
	if version == "" {
		version = SchemaVersion
	}
	languages := idx.Languages
	if languages == nil {
		languages = map[string]int{}
	}
	repoPath := idx.RepoPath
	createdAt := idx.CreatedAt

	doc := document{
		Version:    version,
		RepoPath:   &repoPath,
		CreatedAt:  &createdAt,
		TotalFiles: idx.TotalFiles,
		TotalLines: idx.TotalLines,
		Languages:  languages,
		Root:       idx.Root,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses an index document. Unknown fields are ignored and absent
// optional fields take their defaults. A missing root, repo_path or
// created_at yields ErrMalformedDocument.
func Decode(data []byte) (*CodeIndex, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedDocument)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	switch {
	case doc.Root == nil:
		return nil, fmt.Errorf("%w: missing root", ErrMalformedDocument)
	case doc.RepoPath == nil:
		return nil, fmt.Errorf("%w: missing repo_path", ErrMalformedDocument)
	case doc.CreatedAt == nil:
		return nil, fmt.Errorf("%w: missing created_at", ErrMalformedDocument)
	}

	if err := normalizeNode(doc.Root); err != nil {
		return nil, err
	}

	idx := &CodeIndex{
		Version:    doc.Version,
		RepoPath:   *doc.RepoPath,
		CreatedAt:  *doc.CreatedAt,
		TotalFiles: doc.TotalFiles,
		TotalLines: doc.TotalLines,
		Languages:  doc.Languages,
		Root:       doc.Root,
	}
	migrateIndex(idx)
	return idx, nil
}

// Save encodes idx and writes it to path, creating parent directories.
func Save(idx *CodeIndex, path string) error {
	data, err := Encode(idx)
	if err != nil {
		return err
	}
	if err := fileutil.WriteIfChanged(path, data); err != nil {
		return fmt.Errorf("failed to write index %s: %w", path, err)
	}
	return nil
}

// Load reads and decodes the index document at path. A missing file is
// reported with an error satisfying os.IsNotExist.
func Load(path string) (*CodeIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load index %s: %w", path, err)
	}
	return idx, nil
}

func migrateIndex(idx *CodeIndex) {
	if idx.Version == "" {
		idx.Version = SchemaVersion
	}
	if idx.Languages == nil {
		idx.Languages = make(map[string]int)
	}
}

// normalizeNode infers missing node types and drops null children.
func normalizeNode(n *Node) error {
	switch n.Type {
	case NodeFile, NodeDirectory:
	case "":
		if len(n.Children) > 0 || n.FileCount > 0 {
			n.Type = NodeDirectory
		} else {
			n.Type = NodeFile
		}
	default:
		return fmt.Errorf("%w: unknown node type %q at %q", ErrMalformedDocument, n.Type, n.Path)
	}

	if len(n.Children) == 0 {
		n.Children = nil
		return nil
	}
	kept := n.Children[:0]
	for _, child := range n.Children {
		if child == nil {
			continue
		}
		if err := normalizeNode(child); err != nil {
			return err
		}
		kept = append(kept, child)
	}
	n.Children = kept
	if len(n.Children) == 0 {
		n.Children = nil
	}
	return nil
}
