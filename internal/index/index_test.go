package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIndex() *CodeIndex {
	return &CodeIndex{
		Version:    SchemaVersion,
		RepoPath:   "/work/repo",
		CreatedAt:  "2024-05-01T10:00:00Z",
		TotalFiles: 2,
		TotalLines: 12,
		Languages:  map[string]int{"python": 1, "go": 1},
		Root: &Node{
			Name:      "repo",
			Type:      NodeDirectory,
			Path:      "",
			FileCount: 2,
			Children: []*Node{
				{
					Name:      "pkg",
					Type:      NodeDirectory,
					Path:      "pkg",
					FileCount: 1,
					Children: []*Node{
						{
							Name:      "server.go",
							Type:      NodeFile,
							Path:      "pkg/server.go",
							Language:  "go",
							Imports:   []string{"net/http"},
							Functions: []Symbol{{Name: "Serve", Signature: "func Serve(addr string)", Line: 5}},
							LineCount: 8,
						},
					},
				},
				{
					Name:      "app.py",
					Type:      NodeFile,
					Path:      "app.py",
					Language:  "python",
					Functions: []Symbol{{Name: "main", Signature: "def main()", Docstring: "Entry point.", Line: 1}},
					Classes:   []Symbol{{Name: "App", Signature: "class App", Line: 3}},
					Variables: []string{"DEBUG"},
					LineCount: 4,
				},
			},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	idx := sampleIndex()

	data, err := Encode(idx)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, idx, decoded)
}

func TestEncodeWritesDocumentShape(t *testing.T) {
	data, err := Encode(sampleIndex())
	require.NoError(t, err)

	text := string(data)
	for _, key := range []string{`"version": "0.1.0"`, `"repo_path"`, `"created_at"`, `"total_files": 2`, `"languages"`, `"root"`, `"path": ""`, `"file_count": 2`, `"line_count": 4`} {
		assert.Contains(t, text, key)
	}
	assert.NotContains(t, text, `"children": null`)
	assert.True(t, strings.HasSuffix(text, "}\n"))
}

func TestDecodeToleratesUnknownAndMissingOptionalFields(t *testing.T) {
	doc := `{
  "repo_path": "/r",
  "created_at": "2024-01-01T00:00:00",
  "summary": "ignored",
  "root": {
    "name": "r",
    "type": "directory",
    "path": "",
    "children": [
      {"name": "a.py", "path": "a.py", "language": "python", "functions": [{"name": "f", "line": 2}], "future": true},
      null
    ]
  }
}`
	idx, err := Decode([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, idx.Version)
	assert.Equal(t, 0, idx.TotalFiles)
	assert.NotNil(t, idx.Languages)
	require.Len(t, idx.Root.Children, 1)
	file := idx.Root.Children[0]
	assert.Equal(t, NodeFile, file.Type)
	assert.Equal(t, "f", file.Functions[0].Name)
	assert.Empty(t, file.Functions[0].Signature)
}

func TestDecodeRejectsMalformedDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"not json":     "{",
		"missing root": `{"repo_path": "/r", "created_at": "x"}`,
		"null root":    `{"repo_path": "/r", "created_at": "x", "root": null}`,
		"missing repo": `{"created_at": "x", "root": {"name": "r", "type": "directory", "path": ""}}`,
		"missing time": `{"repo_path": "/r", "root": {"name": "r", "type": "directory", "path": ""}}`,
		"bad type":     `{"repo_path": "/r", "created_at": "x", "root": {"name": "r", "type": "symlink", "path": ""}}`,
	}
	for name, doc := range cases {
		_, err := Decode([]byte(doc))
		assert.True(t, errors.Is(err, ErrMalformedDocument), name)
	}
}

func TestSaveLoad(t *testing.T) {
	path := DefaultPath(t.TempDir())
	idx := sampleIndex()

	require.NoError(t, Save(idx, path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, idx, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, os.WriteFile(path, []byte(`{"version": "0.1.0"}`), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestRenderCompact(t *testing.T) {
	got := RenderCompact(sampleIndex(), 4)
	want := strings.Join([]string{
		"repo/",
		"  pkg/",
		"    server.go [go]",
		"      → functions: Serve",
		"  app.py [python]",
		"    → functions: main",
		"    → classes: App",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderCompactDepthAndCaps(t *testing.T) {
	file := &Node{Name: "big.py", Type: NodeFile, Path: "a/big.py", Language: "python"}
	for i := 0; i < 7; i++ {
		file.Functions = append(file.Functions, Symbol{Name: string(rune('a' + i)), Line: i + 1})
	}
	for i := 0; i < 6; i++ {
		file.Classes = append(file.Classes, Symbol{Name: "C" + string(rune('0'+i)), Line: i + 1})
	}
	idx := &CodeIndex{Root: &Node{Name: "r", Type: NodeDirectory, Children: []*Node{
		{Name: "a", Type: NodeDirectory, Path: "a", Children: []*Node{file}},
	}}}

	full := RenderCompact(idx, 2)
	assert.Contains(t, full, "      → functions: a, b, c, d, e (+2 more)")
	assert.Contains(t, full, "      → classes: C0, C1, C2, C3, C4 (+1 more)")

	shallow := RenderCompact(idx, 1)
	assert.Equal(t, "r/\n  a/", shallow)

	assert.Equal(t, "r/", RenderCompact(idx, 0))
	assert.Empty(t, RenderCompact(nil, 3))
}

func TestStats(t *testing.T) {
	stats := sampleIndex().Stats()
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 12, stats.TotalLines)
	assert.Equal(t, []LanguageCount{{Language: "go", Files: 1}, {Language: "python", Files: 1}}, stats.SortedLanguages())
}

func TestFilesWalksInTreeOrder(t *testing.T) {
	files := sampleIndex().Files()
	require.Len(t, files, 2)
	assert.Equal(t, "pkg/server.go", files[0].Path)
	assert.Equal(t, "app.py", files[1].Path)
}
