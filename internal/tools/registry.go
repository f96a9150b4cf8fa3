package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownTool = errors.New("tool is not registered")
	ErrBadArgs     = errors.New("invalid tool arguments")
)

// Tool is a named, schema-described function the model may invoke.
//
// A feedback tool's result is appended to the conversation and fed back to
// the model for further reasoning. A terminal tool's result is the final
// answer and short-circuits the loop.
type Tool interface {
	Name() string
	// Definition returns the JSON-schema function definition advertised
	// to the completion endpoint.
	Definition() json.RawMessage
	Feedback() bool
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry stores tools by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry(initial ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(initial))}
	for _, t := range initial {
		r.tools[t.Name()] = t
	}
	return r
}

func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Lookup returns the named tool or ErrUnknownTool.
func (r *Registry) Lookup(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t, nil
}

// Definitions returns the schema definitions of every registered tool, for
// inclusion in completion requests.
func (r *Registry) Definitions() []json.RawMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.tools) == 0 {
		return nil
	}
	defs := make([]json.RawMessage, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	return defs
}
