package parser

import (
	"path/filepath"
	"strings"
)

// Extractor defines the interface each language strategy must implement
type Extractor interface {
	// Language returns the language name (e.g., "go", "python")
	Language() string

	// Extract pulls structural entities out of source text
	Extract(text string) FileInfo
}

// Registry maps file extensions to languages and languages to extractors.
// A language may be recognized without having an extractor.
type Registry struct {
	extractors map[string]Extractor // language name -> extractor
	extToLang  map[string]string    // extension -> language name
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]Extractor),
		extToLang:  make(map[string]string),
	}
}

// RegisterLanguage associates extensions with a language name. Extensions are
// matched case-insensitively and a later registration wins.
func (r *Registry) RegisterLanguage(language string, extensions ...string) {
	for _, ext := range extensions {
		r.extToLang[strings.ToLower(ext)] = language
	}
}

// Register adds an extraction strategy for its language.
func (r *Registry) Register(e Extractor) {
	r.extractors[e.Language()] = e
}

// DetectLanguage classifies a file name by its final extension.
func (r *Registry) DetectLanguage(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", false
	}
	lang, ok := r.extToLang[ext]
	return lang, ok
}

// HasExtractor reports whether a strategy is registered for language.
func (r *Registry) HasExtractor(language string) bool {
	_, ok := r.extractors[language]
	return ok
}

// Extract dispatches text to the strategy registered for language. Languages
// without a strategy yield a FileInfo carrying only the language and line count.
func (r *Registry) Extract(language, text string) FileInfo {
	info := FileInfo{}
	if e, ok := r.extractors[language]; ok {
		info = e.Extract(text)
	}
	info.Language = language
	info.LineCount = CountLines(text)
	return info
}
