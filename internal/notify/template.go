package notify

import (
	"fmt"
	"os"

	"github.com/cbroglie/mustache"
)

// Engine renders a template with the given substitution variables.
// Implementations are registered in an EngineRegistry under a string key and
// selected via configuration.
type Engine interface {
	Render(template []byte, vars map[string]any) ([]byte, error)
}

// MustacheEngine renders mustache templates.
type MustacheEngine struct{}

// Render implements the Engine interface.
func (MustacheEngine) Render(template []byte, vars map[string]any) ([]byte, error) {
	out, err := mustache.Render(string(template), vars)
	if err != nil {
		return nil, fmt.Errorf("render mustache template: %w", err)
	}
	return []byte(out), nil
}

// EngineRegistry holds template engines keyed by name.
type EngineRegistry struct {
	engines map[string]Engine
}

// NewEngineRegistry creates a registry with the mustache engine registered.
func NewEngineRegistry() *EngineRegistry {
	r := &EngineRegistry{engines: make(map[string]Engine)}
	r.Register("mustache", MustacheEngine{})
	return r
}

// Register adds or replaces an engine under the given key.
func (r *EngineRegistry) Register(key string, engine Engine) {
	r.engines[key] = engine
}

// Get returns the engine registered under the given key.
func (r *EngineRegistry) Get(key string) (Engine, bool) {
	engine, ok := r.engines[key]
	return engine, ok
}

// Source loads named template resources for notification bodies.
type Source interface {
	// Load returns the template bytes for the given resource path.
	Load(path string) ([]byte, error)
}

// FileSource loads template resources from the local filesystem.
type FileSource struct{}

// Load implements the Source interface.
func (FileSource) Load(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", path, err)
	}
	return content, nil
}
