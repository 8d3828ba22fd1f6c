package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/codetree-dev/codetree/internal/index"
	"github.com/codetree-dev/codetree/internal/llm"
)

// Fixed answers returned without a second reasoner call.
const (
	NoFilesAnswer   = "I couldn't identify any relevant files for your question. Please try rephrasing or being more specific."
	NoContentAnswer = "I found relevant files but couldn't read their contents."
)

const (
	DefaultMaxFiles  = 5
	DefaultTreeDepth = 4
	DefaultMaxLines  = 200
)

// FileSelection is one file the reasoner chose in the first stage.
type FileSelection struct {
	Path      string   `json:"path"`
	Relevance string   `json:"relevance,omitempty"`
	Focus     []string `json:"focus,omitempty"`
}

// Options tunes a Retriever. Zero values take the defaults.
type Options struct {
	MaxFiles  int
	TreeDepth int
	MaxLines  int
}

// Retriever answers questions about an indexed repository in two reasoner
// calls: one to select files from the compact tree, one to answer from their
// contents.
type Retriever struct {
	idx      *index.CodeIndex
	reasoner llm.Reasoner
	repoRoot string
	opts     Options
	logger   logrus.FieldLogger
}

// New creates a retriever over idx. Files are read relative to idx.RepoPath.
func New(idx *index.CodeIndex, reasoner llm.Reasoner, opts Options, logger logrus.FieldLogger) *Retriever {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if opts.TreeDepth <= 0 {
		opts.TreeDepth = DefaultTreeDepth
	}
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Retriever{
		idx:      idx,
		reasoner: reasoner,
		repoRoot: idx.RepoPath,
		opts:     opts,
		logger:   logger,
	}
}

// Retrieve asks the reasoner which files answer question. Unparseable
// replies yield an empty selection; reasoner errors are returned.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]FileSelection, error) {
	tree := index.RenderCompact(r.idx, r.opts.TreeDepth)

	reply, err := r.reasoner.Chat(ctx, llm.BuildSelectionMessages(tree, question))
	if err != nil {
		return nil, fmt.Errorf("file selection failed: %w", err)
	}

	selected := parseSelection(reply, r.opts.MaxFiles)
	if selected == nil {
		r.logger.WithField("reply_length", len(reply)).Debug("no file selection in reasoner reply")
	}
	return selected, nil
}

// Query answers question from the files the reasoner selects.
func (r *Retriever) Query(ctx context.Context, question string) (string, error) {
	selected, err := r.Retrieve(ctx, question)
	if err != nil {
		return "", err
	}
	if len(selected) == 0 {
		return NoFilesAnswer, nil
	}

	code := r.assembleContext(selected)
	if code == "" {
		return NoContentAnswer, nil
	}

	answer, err := r.reasoner.Chat(ctx, llm.BuildAnswerMessages(code, question))
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}
	return answer, nil
}

// parseSelection decodes the JSON object spanning the first "{" to the last
// "}" of reply. It returns nil when there is nothing usable.
func parseSelection(reply string, maxFiles int) []FileSelection {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil
	}

	var doc struct {
		RelevantFiles []json.RawMessage `json:"relevant_files"`
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &doc); err != nil {
		return nil
	}

	raw := doc.RelevantFiles
	if len(raw) > maxFiles {
		raw = raw[:maxFiles]
	}
	var out []FileSelection
	for _, entry := range raw {
		var sel FileSelection
		if err := json.Unmarshal(entry, &sel); err != nil {
			continue
		}
		out = append(out, sel)
	}
	return out
}

// assembleContext reads each selected file and joins the readable ones into
// "## File:" sections.
func (r *Retriever) assembleContext(selected []FileSelection) string {
	sections := make([]string, 0, len(selected))
	for _, sel := range selected {
		content, ok := r.readFile(sel.Path)
		if !ok || content == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("## File: %s\n\n```\n%s\n```", sel.Path, content))
	}
	return strings.Join(sections, "\n\n")
}

// readFile returns the first MaxLines lines of a repository file. Paths that
// leave the repository, do not exist, or are not UTF-8 text are skipped.
func (r *Retriever) readFile(relPath string) (string, bool) {
	if strings.TrimSpace(relPath) == "" {
		return "", false
	}
	full := filepath.Join(r.repoRoot, filepath.FromSlash(relPath))
	rel, err := filepath.Rel(r.repoRoot, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		r.logger.WithField("path", relPath).Debug("skipping path outside repository")
		return "", false
	}

	data, err := os.ReadFile(full)
	if err != nil {
		r.logger.WithError(err).WithField("path", relPath).Debug("skipping unreadable file")
		return "", false
	}
	if !utf8.Valid(data) {
		r.logger.WithField("path", relPath).Debug("skipping non-UTF-8 file")
		return "", false
	}

	return truncateLines(string(data), r.opts.MaxLines), true
}

// truncateLines keeps the first max lines and notes how many were dropped.
func truncateLines(text string, max int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= max {
		return text
	}
	return strings.Join(lines[:max], "\n") + fmt.Sprintf("\n\n... (%d more lines)", len(lines)-max)
}
