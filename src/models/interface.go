package models

import "context"

// File is a lightweight in-memory attachment.
// Name is used for display; MIME should be best-effort (e.g., "text/csv").
type File struct {
	Name string
	MIME string
	Data []byte
}

// Agent is the language-model service boundary used for narrative turns.
type Agent interface {
	Generate(context.Context, string) (any, error)
	GenerateWithFiles(context.Context, string, []File) (any, error)
}

// ToolDecl declares one analytic operation to the model: name, description
// and a JSON-schema-like argument spec. Descriptions should instruct the
// model to use column names verbatim.
type ToolDecl struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ToolCall is one named operation the model asked to run.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolRunner executes a requested call and returns its result mapping.
// Result-level failures come back as {"error": ...} maps, which lets the
// model inspect the message and issue a corrected call.
type ToolRunner func(ctx context.Context, call ToolCall) map[string]any

// ToolAgent is implemented by providers that support native function calling.
type ToolAgent interface {
	Agent
	// GenerateWithTools runs a tool-augmented turn: the model may request
	// any sequence of declared operations, each routed through run, before
	// producing its final narrative text.
	GenerateWithTools(ctx context.Context, prompt string, decls []ToolDecl, run ToolRunner) (string, error)
}
