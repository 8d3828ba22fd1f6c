package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/codetree-dev/codetree/internal/config"
	"github.com/codetree-dev/codetree/internal/index"
	"github.com/codetree-dev/codetree/internal/indexer"
	"github.com/codetree-dev/codetree/internal/languages"
	"github.com/codetree-dev/codetree/internal/llm"
	"github.com/codetree-dev/codetree/internal/retrieval"
	"github.com/codetree-dev/codetree/internal/search"
)

// ErrNoIndex is returned by operations that need an index when none has been
// built or persisted.
var ErrNoIndex = errors.New("no index available; run `codetree index` first")

// ReasonerFactory creates the reasoner used for queries.
type ReasonerFactory func(ctx context.Context) (llm.Reasoner, error)

// Option customizes a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger used by the workspace and the components it
// creates.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// WithIndexPath stores the index document somewhere other than
// <repo>/.codetree/index.json.
func WithIndexPath(path string) Option {
	return func(w *Workspace) {
		w.indexPath = path
	}
}

// WithReasonerFactory replaces the config-driven reasoner construction.
func WithReasonerFactory(factory ReasonerFactory) Option {
	return func(w *Workspace) {
		w.newReasoner = factory
	}
}

// WithProgress registers a callback invoked for each file indexed.
func WithProgress(fn func(relPath string)) Option {
	return func(w *Workspace) {
		w.onFile = fn
	}
}

// Workspace is the entry point for one repository: it builds, persists and
// loads the index and answers questions about it. It is safe for concurrent
// use.
type Workspace struct {
	root        string
	cfg         *config.Config
	indexPath   string
	logger      logrus.FieldLogger
	newReasoner ReasonerFactory
	onFile      func(relPath string)

	mu       sync.Mutex
	idx      *index.CodeIndex
	reasoner llm.Reasoner
}

// New creates a workspace for the repository at root.
func New(root string, cfg *config.Config, opts ...Option) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	if cfg == nil {
		cfg = config.Default()
	}

	w := &Workspace{
		root: abs,
		cfg:  cfg,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		w.logger = l
	}
	if w.indexPath == "" {
		w.indexPath = index.DefaultPath(abs)
	}
	if w.newReasoner == nil {
		w.newReasoner = func(ctx context.Context) (llm.Reasoner, error) {
			return llm.NewReasoner(ctx, w.cfg.LLM, w.logger)
		}
	}
	return w, nil
}

// Root returns the absolute repository path.
func (w *Workspace) Root() string {
	return w.root
}

// IndexPath returns where the index document is stored.
func (w *Workspace) IndexPath() string {
	return w.indexPath
}

// BuildIndex indexes the repository, persists the document and makes it the
// current index.
func (w *Workspace) BuildIndex(ctx context.Context) (*index.CodeIndex, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buildLocked(ctx)
}

func (w *Workspace) buildLocked(ctx context.Context) (*index.CodeIndex, error) {
	builder := indexer.NewBuilder(languages.NewDefaultRegistry(), indexer.Options{
		Languages:   w.cfg.Index.Languages,
		Exclude:     w.cfg.Index.Exclude,
		AllowHidden: w.cfg.Index.AllowHidden,
		MaxFileSize: w.cfg.Index.MaxFileSize,
		MaxFiles:    w.cfg.Index.MaxFiles,
		OnFile:      w.onFile,
	}, w.logger)

	idx, err := builder.Build(ctx, w.root)
	if err != nil {
		return nil, err
	}
	if err := index.Save(idx, w.indexPath); err != nil {
		return nil, err
	}

	w.logger.WithFields(logrus.Fields{
		"files": idx.TotalFiles,
		"path":  w.indexPath,
	}).Info("index saved")

	w.idx = idx
	return idx, nil
}

// HasIndex reports whether an index is loaded or persisted.
func (w *Workspace) HasIndex() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.idx != nil {
		return true
	}
	_, err := os.Stat(w.indexPath)
	return err == nil
}

// Index returns the current index, loading the persisted document on first
// use.
func (w *Workspace) Index() (*index.CodeIndex, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexLocked()
}

func (w *Workspace) indexLocked() (*index.CodeIndex, error) {
	if w.idx != nil {
		return w.idx, nil
	}
	idx, err := index.Load(w.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoIndex
		}
		return nil, err
	}
	w.idx = idx
	return idx, nil
}

// EnsureIndex returns the current index, building it when none exists.
func (w *Workspace) EnsureIndex(ctx context.Context) (*index.CodeIndex, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx, err := w.indexLocked()
	if errors.Is(err, ErrNoIndex) {
		return w.buildLocked(ctx)
	}
	return idx, err
}

// Query answers a natural-language question about the repository.
func (w *Workspace) Query(ctx context.Context, question string) (string, error) {
	idx, err := w.Index()
	if err != nil {
		return "", err
	}
	reasoner, err := w.getReasoner(ctx)
	if err != nil {
		return "", err
	}

	r := retrieval.New(idx, reasoner, retrieval.Options{
		MaxFiles: w.cfg.Index.MaxSelectedFiles,
	}, w.logger)
	return r.Query(ctx, question)
}

func (w *Workspace) getReasoner(ctx context.Context) (llm.Reasoner, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.reasoner != nil {
		return w.reasoner, nil
	}
	reasoner, err := w.newReasoner(ctx)
	if err != nil {
		return nil, err
	}
	w.reasoner = reasoner
	return reasoner, nil
}

// FindSymbol lists functions, classes and imports whose text contains
// symbol.
func (w *Workspace) FindSymbol(symbol string) ([]search.Reference, error) {
	idx, err := w.Index()
	if err != nil {
		return nil, err
	}
	return search.Find(idx, symbol), nil
}

// RenderTree renders the compact tree down to maxDepth.
func (w *Workspace) RenderTree(maxDepth int) (string, error) {
	idx, err := w.Index()
	if err != nil {
		return "", err
	}
	return index.RenderCompact(idx, maxDepth), nil
}

// Stats summarizes the current index.
func (w *Workspace) Stats() (index.Stats, error) {
	idx, err := w.Index()
	if err != nil {
		return index.Stats{}, err
	}
	return idx.Stats(), nil
}
