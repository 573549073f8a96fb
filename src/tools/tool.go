// Package tools implements the fixed registry of named analytic operations.
// Every operation takes a structured argument mapping plus the active row set
// and returns a result mapping; failures come back as {"error": ...} result
// maps that enumerate the available columns so the calling model can
// self-correct, never as Go errors that would abort the turn.
package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/datalens-ai/datalens/src/dataset"
)

// Spec declares an operation to the language-model service. The schema is a
// JSON-schema-like map, the same shape the model providers expect for
// function declarations.
type Spec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Request carries one invocation's inputs. Rows are read-only for every
// operation; Images holds attached image bytes for image synthesis.
type Request struct {
	SessionID string
	Args      map[string]any
	Dataset   *dataset.Dataset
	Images    []ImageInput
}

// ImageInput is an attached reference image.
type ImageInput struct {
	MIME string
	Data []byte
}

// Tool is one named analytic operation.
type Tool interface {
	Spec() Spec
	Invoke(ctx context.Context, req Request) map[string]any
}

// Registry is the fixed operation catalog: lower-cased keys, registration
// order preserved, safe for concurrent lookup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	specs map[string]Spec
	order []string
}

// NewRegistry builds a registry seeded with the provided tools. Invalid
// entries are skipped.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools: make(map[string]Tool),
		specs: make(map[string]Spec),
	}
	for _, t := range tools {
		_ = r.Register(t)
	}
	return r
}

// Register adds a tool. Duplicate names return an error.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	spec := t.Spec()
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[key]; exists {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}
	r.tools[key] = t
	r.specs[key] = spec
	r.order = append(r.order, key)
	return nil
}

// Lookup returns the tool and its spec if present.
func (r *Registry) Lookup(name string) (Tool, Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	t, ok := r.tools[key]
	if !ok {
		return nil, Spec{}, false
	}
	return t, r.specs[key], true
}

// Specs returns the operation specs in registration order.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.order))
	for _, key := range r.order {
		specs = append(specs, r.specs[key])
	}
	return specs
}

// Execute routes one named invocation. Unknown names come back as an error
// map listing the registered operations.
func (r *Registry) Execute(ctx context.Context, name string, req Request) map[string]any {
	t, _, ok := r.Lookup(name)
	if !ok {
		r.mu.RLock()
		names := append([]string(nil), r.order...)
		r.mu.RUnlock()
		return map[string]any{
			"error": fmt.Sprintf("unknown operation %q; available operations: %s", name, strings.Join(names, ", ")),
		}
	}
	return t.Invoke(ctx, req)
}

// errorResult builds the standard column-enumerating error map.
func errorResult(msg string, headers []string) map[string]any {
	if len(headers) == 0 {
		return map[string]any{"error": msg + ". No dataset is loaded"}
	}
	return map[string]any{
		"error": fmt.Sprintf("%s. Available columns: %s", msg, strings.Join(headers, ", ")),
	}
}

// resolveColumnArg pulls a string argument and resolves it against the header
// set. The error string already enumerates the headers.
func resolveColumnArg(req Request, key string) (string, string, bool) {
	raw, ok := req.Args[key]
	if !ok || strings.TrimSpace(fmt.Sprint(raw)) == "" {
		return "", fmt.Sprintf("missing %q argument", key), false
	}
	if req.Dataset.Empty() {
		return "", "no dataset is loaded", false
	}
	header, err := dataset.ResolveColumn(req.Dataset.Headers, fmt.Sprint(raw))
	if err != nil {
		return "", err.Error(), false
	}
	return header, "", true
}

// intArg reads an integer argument with a default; JSON numbers arrive as
// float64.
func intArg(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	if f, ok := dataset.ParseNumber(v); ok {
		return int(f)
	}
	return def
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func integerProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func booleanProp(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}
