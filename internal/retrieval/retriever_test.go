package retrieval

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetree-dev/codetree/internal/index"
	"github.com/codetree-dev/codetree/internal/llm"
)

// scriptedReasoner replays canned replies and records every conversation.
type scriptedReasoner struct {
	replies []string
	err     error
	calls   [][]llm.Message
}

func (s *scriptedReasoner) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return "", s.err
	}
	if len(s.calls) > len(s.replies) {
		return "", fmt.Errorf("unexpected call %d", len(s.calls))
	}
	return s.replies[len(s.calls)-1], nil
}

func newRepo(t *testing.T, files map[string]string) *index.CodeIndex {
	t.Helper()
	root := t.TempDir()
	children := make([]*index.Node, 0, len(files))
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		children = append(children, &index.Node{Name: filepath.Base(rel), Type: index.NodeFile, Path: rel, Language: "python"})
	}
	return &index.CodeIndex{
		RepoPath: root,
		Root:     &index.Node{Name: filepath.Base(root), Type: index.NodeDirectory, Children: children},
	}
}

func TestQueryNoSelectionSkipsSecondCall(t *testing.T) {
	idx := newRepo(t, map[string]string{"auth/login.py": "def authenticate(): pass\n"})

	for _, reply := range []string{
		"I have no idea",
		`{"reasoning": "nothing", "relevant_files": []}`,
		`{"reasoning": "missing key"}`,
		`{"relevant_files": [broken`,
	} {
		reasoner := &scriptedReasoner{replies: []string{reply}}
		answer, err := New(idx, reasoner, Options{}, nil).Query(context.Background(), "Where is login?")
		require.NoError(t, err)
		assert.Equal(t, NoFilesAnswer, answer, reply)
		assert.Len(t, reasoner.calls, 1, reply)
	}
}

func TestQueryAnswersFromSelectedFiles(t *testing.T) {
	idx := newRepo(t, map[string]string{
		"auth/login.py": "def authenticate(user):\n    return True\n",
		"main.py":       "print('hi')\n",
	})
	reasoner := &scriptedReasoner{replies: []string{
		"Sure! ```json\n{\"reasoning\": \"auth lives in auth/\", \"relevant_files\": [{\"path\": \"auth/login.py\", \"relevance\": \"login\", \"focus\": [\"authenticate\"]}]}\n```",
		"authenticate() in auth/login.py handles it.",
	}}

	answer, err := New(idx, reasoner, Options{}, nil).Query(context.Background(), "How does auth work?")
	require.NoError(t, err)
	assert.Equal(t, "authenticate() in auth/login.py handles it.", answer)

	require.Len(t, reasoner.calls, 2)
	selection := reasoner.calls[0]
	assert.Equal(t, llm.RoleSystem, selection[0].Role)
	assert.Contains(t, selection[1].Content, "## Repository Structure\n\n"+index.RenderCompact(idx, DefaultTreeDepth))

	stage2 := reasoner.calls[1][1].Content
	assert.True(t, strings.HasPrefix(stage2, "## Relevant Code\n\n## File: auth/login.py\n\n```\ndef authenticate(user):\n    return True\n\n```"))
	assert.True(t, strings.HasSuffix(stage2, "## Question\nHow does auth work?\n\nPlease answer the question based on the code provided above."))
	assert.NotContains(t, stage2, "main.py")
}

func TestQueryUnreadableSelectionSkipsSecondCall(t *testing.T) {
	idx := newRepo(t, map[string]string{"empty.py": ""})
	outside := filepath.Join(filepath.Dir(idx.RepoPath), "secret.py")
	require.NoError(t, os.WriteFile(outside, []byte("TOKEN = 1\n"), 0644))

	reasoner := &scriptedReasoner{replies: []string{
		`{"relevant_files": [{"path": "missing.py"}, {"path": "empty.py"}, {"path": "../secret.py"}, {"path": ""}]}`,
	}}

	answer, err := New(idx, reasoner, Options{}, nil).Query(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, NoContentAnswer, answer)
	assert.Len(t, reasoner.calls, 1)
}

func TestRetrieveCapsSelection(t *testing.T) {
	idx := newRepo(t, map[string]string{"a.py": "x"})
	var entries []string
	for i := 0; i < 8; i++ {
		entries = append(entries, fmt.Sprintf(`{"path": "f%d.py"}`, i))
	}
	reasoner := &scriptedReasoner{replies: []string{`{"relevant_files": [` + strings.Join(entries, ",") + `]}`}}

	selected, err := New(idx, reasoner, Options{MaxFiles: 3}, nil).Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []FileSelection{{Path: "f0.py"}, {Path: "f1.py"}, {Path: "f2.py"}}, selected)

	reasoner = &scriptedReasoner{replies: []string{`{"relevant_files": [` + strings.Join(entries, ",") + `]}`}}
	selected, err = New(idx, reasoner, Options{}, nil).Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, selected, DefaultMaxFiles)
}

func TestQueryTruncatesLongFiles(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 250; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	idx := newRepo(t, map[string]string{"long.py": b.String()})
	reasoner := &scriptedReasoner{replies: []string{`{"relevant_files": [{"path": "long.py"}]}`, "ok"}}

	_, err := New(idx, reasoner, Options{}, nil).Query(context.Background(), "q")
	require.NoError(t, err)

	stage2 := reasoner.calls[1][1].Content
	assert.Contains(t, stage2, "line 200\n\n... (51 more lines)\n```")
	assert.NotContains(t, stage2, "line 201")
}

func TestQueryPropagatesReasonerErrors(t *testing.T) {
	idx := newRepo(t, map[string]string{"a.py": "x"})
	boom := errors.New("connection refused")

	_, err := New(idx, &scriptedReasoner{err: boom}, Options{}, nil).Query(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
}

func TestTruncateLines(t *testing.T) {
	assert.Equal(t, "a\nb", truncateLines("a\nb", 2))
	assert.Equal(t, "a\n\n... (2 more lines)", truncateLines("a\nb\nc", 1))
}
