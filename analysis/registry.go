package analysis

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_yaml "github.com/tree-sitter-grammars/tree-sitter-yaml/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Registry maps file extensions and language IDs to tree-sitter languages.
type Registry struct {
	mu        sync.RWMutex
	languages map[string]*tree_sitter.Language // ext -> language
	ids       map[string]string                // language ID -> ext
}

// NewRegistry creates an empty language registry.
func NewRegistry() *Registry {
	return &Registry{
		languages: make(map[string]*tree_sitter.Language),
		ids:       make(map[string]string),
	}
}

// DefaultRegistry returns a registry with the built-in grammar set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".go", "go", tree_sitter.NewLanguage(unsafe.Pointer(tree_sitter_go.Language())))
	r.Register(".json", "json", tree_sitter.NewLanguage(unsafe.Pointer(tree_sitter_json.Language())))
	r.Register(".py", "python", tree_sitter.NewLanguage(unsafe.Pointer(tree_sitter_python.Language())))
	r.Register(".yaml", "yaml", tree_sitter.NewLanguage(unsafe.Pointer(tree_sitter_yaml.Language())))
	r.Register(".yml", "yaml", tree_sitter.NewLanguage(unsafe.Pointer(tree_sitter_yaml.Language())))
	return r
}

// Register adds a language for a given file extension and language ID.
func (r *Registry) Register(ext, languageID string, lang *tree_sitter.Language) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.languages[ext] = lang
	if languageID != "" {
		if _, ok := r.ids[languageID]; !ok {
			r.ids[languageID] = ext
		}
	}
}

// LanguageFor returns the tree-sitter language for a given URI or filename,
// by extension lookup.
func (r *Registry) LanguageFor(file string) (*tree_sitter.Language, error) {
	ext := strings.ToLower(path.Ext(file))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if lang, ok := r.languages[ext]; ok {
		return lang, nil
	}
	return nil, fmt.Errorf("no language registered for %q", ext)
}

// Extensions returns all registered file extensions.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.languages))
	for ext := range r.languages {
		exts = append(exts, ext)
	}
	return exts
}

// LanguageIDs returns all registered LSP language identifiers.
func (r *Registry) LanguageIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.ids))
	for id := range r.ids {
		ids = append(ids, id)
	}
	return ids
}
