package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetree-dev/codetree/internal/config"
	"github.com/codetree-dev/codetree/internal/index"
	"github.com/codetree-dev/codetree/internal/llm"
	"github.com/codetree-dev/codetree/internal/retrieval"
	"github.com/codetree-dev/codetree/internal/search"
)

type fakeReasoner struct {
	mu      sync.Mutex
	replies []string
	calls   int
}

func (f *fakeReasoner) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls > len(f.replies) {
		return "", errors.New("no scripted reply")
	}
	return f.replies[f.calls-1], nil
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newRepo(t *testing.T) string {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "auth", "login.py"), "def authenticate(user):\n    return True\n")
	mustWriteFile(t, filepath.Join(root, "main.go"), "package main\n\nfunc main() {}\n")
	return root
}

func TestOperationsRequireIndex(t *testing.T) {
	ws, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	assert.False(t, ws.HasIndex())

	_, err = ws.FindSymbol("x")
	assert.ErrorIs(t, err, ErrNoIndex)
	_, err = ws.RenderTree(3)
	assert.ErrorIs(t, err, ErrNoIndex)
	_, err = ws.Stats()
	assert.ErrorIs(t, err, ErrNoIndex)
	_, err = ws.Query(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestBuildIndexPersistsAndReloads(t *testing.T) {
	root := newRepo(t)
	ws, err := New(root, config.Default())
	require.NoError(t, err)

	idx, err := ws.BuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, idx.TotalFiles)
	assert.FileExists(t, filepath.Join(root, ".codetree", "index.json"))

	fresh, err := New(root, config.Default())
	require.NoError(t, err)
	assert.True(t, fresh.HasIndex())

	stats, err := fresh.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, map[string]int{"go": 1, "python": 1}, stats.Languages)

	refs, err := fresh.FindSymbol("authenticate")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, search.Reference{Kind: search.KindFunction, File: "auth/login.py", Name: "authenticate", Line: 1}, refs[0])

	tree, err := fresh.RenderTree(1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root)+"/\n  auth/\n  main.go [go]\n    → functions: main", tree)
}

func TestRebuildSkipsIndexDirectory(t *testing.T) {
	root := newRepo(t)
	ws, err := New(root, config.Default())
	require.NoError(t, err)

	first, err := ws.BuildIndex(context.Background())
	require.NoError(t, err)
	second, err := ws.BuildIndex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.TotalFiles, second.TotalFiles)
	assert.Equal(t, first.Root, second.Root)
}

func TestEnsureIndexBuildsOnce(t *testing.T) {
	root := newRepo(t)
	var indexed []string
	ws, err := New(root, config.Default(), WithProgress(func(rel string) { indexed = append(indexed, rel) }))
	require.NoError(t, err)

	_, err = ws.EnsureIndex(context.Background())
	require.NoError(t, err)
	_, err = ws.EnsureIndex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"auth/login.py", "main.go"}, indexed)
}

func TestCustomIndexPath(t *testing.T) {
	root := newRepo(t)
	out := filepath.Join(t.TempDir(), "custom.json")
	ws, err := New(root, nil, WithIndexPath(out))
	require.NoError(t, err)

	_, err = ws.BuildIndex(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, out)
	assert.NoFileExists(t, index.DefaultPath(root))
	assert.Equal(t, out, ws.IndexPath())
}

func TestQueryUsesReasonerFactory(t *testing.T) {
	root := newRepo(t)
	reasoner := &fakeReasoner{replies: []string{
		`{"relevant_files": [{"path": "auth/login.py"}]}`,
		"It returns True.",
		`{"relevant_files": []}`,
	}}
	created := 0
	ws, err := New(root, config.Default(), WithReasonerFactory(func(ctx context.Context) (llm.Reasoner, error) {
		created++
		return reasoner, nil
	}))
	require.NoError(t, err)
	_, err = ws.BuildIndex(context.Background())
	require.NoError(t, err)

	answer, err := ws.Query(context.Background(), "What does authenticate return?")
	require.NoError(t, err)
	assert.Equal(t, "It returns True.", answer)

	answer, err = ws.Query(context.Background(), "Unrelated?")
	require.NoError(t, err)
	assert.Equal(t, retrieval.NoFilesAnswer, answer)

	assert.Equal(t, 3, reasoner.calls)
	assert.Equal(t, 1, created)
}

func TestQueryReportsReasonerConstructionErrors(t *testing.T) {
	root := newRepo(t)
	cfg := config.Default()
	cfg.LLM.Provider = "watson"
	ws, err := New(root, cfg)
	require.NoError(t, err)
	_, err = ws.BuildIndex(context.Background())
	require.NoError(t, err)

	_, err = ws.Query(context.Background(), "q")
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)
}

func TestMalformedIndexIsReported(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, index.DefaultPath(root), `{"version": "0.1.0"}`)
	ws, err := New(root, nil)
	require.NoError(t, err)

	_, err = ws.Stats()
	assert.ErrorIs(t, err, index.ErrMalformedDocument)
}

func TestConcurrentReads(t *testing.T) {
	root := newRepo(t)
	ws, err := New(root, nil)
	require.NoError(t, err)
	_, err = ws.BuildIndex(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ws.FindSymbol("main")
			_, _ = ws.RenderTree(2)
			_, _ = ws.Stats()
		}()
	}
	wg.Wait()
}
